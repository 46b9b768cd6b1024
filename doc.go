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

// Package rmdx8 is a driver for the RMD-X8 geared servo actuator over a CAN
// bus.
//
// The motor speaks a fixed vendor protocol: every command is a single 8-byte
// CAN frame whose first byte selects the operation, sent on the motor's
// arbitration identifier, followed by a short settle delay and a single
// 8-byte reply frame. This package translates named motor operations
// (read encoder, set PID gains, command torque/speed/position, read status)
// into those frames and returns the raw reply unmodified.
//
// A Motor is bound to one arbitration identifier and communicates through a
// Transport, which abstracts the physical bus. Backends are provided under
// transport/ for Linux SocketCAN, Lawicel/SLCAN serial adapters, and the
// MCP2515 SPI CAN controller. Any bus provisioning (interface bring-up, bit
// rate) happens when the backend is constructed; a Motor is unusable until a
// provisioned Transport is attached.
//
// The protocol carries no sequence numbers, so replies are never correlated
// to the request that produced them: on a shared or multi-drop bus the next
// inbound frame may belong to an earlier stimulus. Callers that need strict
// request/reply pairing must serialize exchanges themselves.
package rmdx8
