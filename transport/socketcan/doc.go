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

// Package socketcan provides the Linux SocketCAN transport backend for
// go-rmdx8. It is Linux-only.
//
// Typical use on a Raspberry Pi with a PiCAN board:
//
//	if err := socketcan.Provision("can0", socketcan.DefaultBitrate); err != nil {
//		// not fatal: fix permissions or wiring and retry
//	}
//	t, err := socketcan.New("can0")
//	...
//	motor.AttachTransport(t)
package socketcan
