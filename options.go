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
	"fmt"
	"time"
)

// Option configures a Motor during New.
type Option func(*Motor) error

// WithTransport attaches a provisioned transport at construction time,
// equivalent to calling AttachTransport afterwards.
func WithTransport(t Transport) Option {
	return func(m *Motor) error {
		m.transport = t
		return nil
	}
}

// WithSettleTime overrides the delay between transmit and receive used by
// the named operations. The vendor default is DefaultSettleTime.
func WithSettleTime(d time.Duration) Option {
	return func(m *Motor) error {
		if d < 0 {
			return fmt.Errorf("%w: negative settle time %v", ErrInvalidArgument, d)
		}
		m.settle = d
		return nil
	}
}

// WithSleepFunc replaces the suspend primitive used during the settle
// window. Tests inject a fake clock here; production code has no reason to
// change it.
func WithSleepFunc(sleep func(time.Duration)) Option {
	return func(m *Motor) error {
		if sleep == nil {
			return fmt.Errorf("%w: nil sleep func", ErrInvalidArgument)
		}
		m.sleep = sleep
		return nil
	}
}
