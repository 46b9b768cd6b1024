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

import "fmt"

// FrameSize is the payload length of every RMD-X8 command and reply frame.
const FrameSize = 8

// MaxStandardID is the largest standard (11-bit) CAN arbitration identifier.
// The RMD-X8 protocol uses standard addressing only.
const MaxStandardID = 0x7FF

// Frame is a single 8-byte CAN payload exchanged with the motor. Byte 0 of a
// command frame is the opcode; the remaining bytes are opcode-specific and
// zero where unused. Reply frames are opaque to this package.
type Frame [FrameSize]byte

// Opcode returns the operation selector byte of the frame.
func (f Frame) Opcode() byte {
	return f[0]
}

// Bytes returns a copy of the frame payload as a slice.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

// String renders the frame as space-separated hex bytes.
func (f Frame) String() string {
	return fmt.Sprintf("% X", f[:])
}
