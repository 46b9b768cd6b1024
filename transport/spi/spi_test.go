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

package spi

import (
	"testing"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCnfForBitrate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    [3]byte
		bitrate uint32
		wantErr bool
	}{
		{name: "1Mbps", bitrate: 1_000_000, want: [3]byte{0x00, 0xD0, 0x82}},
		{name: "500kbps", bitrate: 500_000, want: [3]byte{0x00, 0xF0, 0x86}},
		{name: "250kbps", bitrate: 250_000, want: [3]byte{0x41, 0xF1, 0x85}},
		{name: "125kbps", bitrate: 125_000, want: [3]byte{0x03, 0xF0, 0x86}},
		{name: "Unsupported", bitrate: 333_333, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cnf, err := cnfForBitrate(tt.bitrate)
			if tt.wantErr {
				require.ErrorIs(t, err, rmdx8.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cnf)
		})
	}
}

func TestTxBufferImage(t *testing.T) {
	t.Parallel()

	payload := rmdx8.Frame{0x91, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34}
	img := txBufferImage(0x141, payload)

	// 0x141 = 0b010_1000_0001: SIDH carries bits 10..3, SIDL bits 2..0
	// left-aligned.
	assert.Equal(t, byte(0x28), img[0])
	assert.Equal(t, byte(0x20), img[1])
	assert.Equal(t, byte(0x00), img[2], "EID8 stays zero for standard frames")
	assert.Equal(t, byte(0x00), img[3], "EID0 stays zero for standard frames")
	assert.Equal(t, byte(rmdx8.FrameSize), img[4])
	assert.Equal(t, payload[:], img[5:])
}

func TestTxBufferImage_MaxIdentifier(t *testing.T) {
	t.Parallel()

	img := txBufferImage(0x7FF, rmdx8.Frame{})
	assert.Equal(t, byte(0xFF), img[0])
	assert.Equal(t, byte(0xE0), img[1])
}
