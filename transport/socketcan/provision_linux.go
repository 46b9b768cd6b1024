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

package socketcan

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"golang.org/x/sys/unix"
)

// DefaultBitrate is the bus speed of the reference RMD-X8 deployment.
const DefaultBitrate = 1_000_000

// Provision configures a CAN network interface for the given bit rate and
// brings it up, using iproute2. Changing the bit rate requires the interface
// to be down, so the sequence is down, set type/bitrate, up.
//
// All failures (interface not found, missing CAP_NET_ADMIN, no iproute2)
// come back as a *rmdx8.TransportError; the driver stays usable once the
// condition is fixed and Provision is called again.
func Provision(iface string, bitrate uint32) error {
	if bitrate == 0 {
		return fmt.Errorf("%w: zero bitrate", rmdx8.ErrInvalidArgument)
	}
	steps := [][]string{
		{"link", "set", "dev", iface, "down"},
		{"link", "set", "dev", iface, "type", "can", "bitrate", strconv.FormatUint(uint64(bitrate), 10)},
		{"link", "set", "dev", iface, "up"},
	}
	for _, args := range steps {
		cmd := exec.Command("ip", args...)
		if out, err := cmd.CombinedOutput(); err != nil {
			if len(out) > 0 {
				err = fmt.Errorf("%w: %s", err, out)
			}
			return rmdx8.NewTransportError("provision", iface, requireNetAdmin(err))
		}
	}
	return nil
}

// requireNetAdmin maps EPERM to a clearer message advising on the missing
// capability.
func requireNetAdmin(err error) error {
	if errors.Is(err, unix.EPERM) {
		return fmt.Errorf("requires CAP_NET_ADMIN or root: %w", err)
	}
	return err
}
