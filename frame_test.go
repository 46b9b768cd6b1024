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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrame_Opcode(t *testing.T) {
	t.Parallel()

	f := Frame{0x91, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34}
	assert.Equal(t, byte(0x91), f.Opcode())
}

func TestFrame_BytesIsACopy(t *testing.T) {
	t.Parallel()

	f := Frame{0x30}
	b := f.Bytes()
	assert.Len(t, b, FrameSize)
	b[0] = 0xFF
	assert.Equal(t, byte(0x30), f.Opcode(), "mutating the slice must not touch the frame")
}

func TestFrame_String(t *testing.T) {
	t.Parallel()

	f := Frame{0xA5, 0xAA, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00}
	assert.Equal(t, "A5 AA 00 00 01 02 00 00", f.String())
}
