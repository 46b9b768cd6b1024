// Copyright 2026 The go-rmdx8 Authors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rmdx8

import (
	"errors"
	"fmt"
)

// Driver error taxonomy. The driver performs no retries, no logging and no
// recovery; every failure is returned to the caller as one of these kinds.
var (
	// ErrNotReady is returned when a command is attempted before a
	// transport has been attached to the Motor.
	ErrNotReady = errors.New("rmdx8: no transport attached")

	// ErrInvalidArgument is returned when the caller-supplied data has the
	// wrong length for the chosen command. Nothing is transmitted.
	ErrInvalidArgument = errors.New("rmdx8: wrong data length for command")

	// ErrNoReply is returned when the single receive attempt yields no
	// frame within the bound enforced by the transport.
	ErrNoReply = errors.New("rmdx8: no reply from motor")

	// ErrTransportClosed is returned by transports after Close.
	ErrTransportClosed = errors.New("rmdx8: transport is closed")
)

// TransportError wraps a failure of the underlying frame transport with the
// operation and device that produced it. It is surfaced verbatim to the
// caller, never retried or swallowed.
type TransportError struct {
	Err    error  // underlying error
	Op     string // operation that failed ("transmit", "receive", "open", "provision", ...)
	Device string // bus interface, serial port or SPI device name
}

func (e *TransportError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("rmdx8: %s %s: %v", e.Op, e.Device, e.Err)
	}
	return fmt.Sprintf("rmdx8: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err with operation and device context.
func NewTransportError(op, device string, err error) *TransportError {
	return &TransportError{Op: op, Device: device, Err: err}
}
