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

package slcan

import (
	"testing"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrame(t *testing.T) {
	t.Parallel()

	payload := rmdx8.Frame{0x91, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34}
	line := encodeFrame(0x141, payload)
	assert.Equal(t, "t14189100000000001234\r", string(line))
}

func TestParseFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    rmdx8.Frame
		wantID  uint16
		wantErr bool
	}{
		{
			name:   "Full_Data_Frame",
			line:   "t14189100000000001234",
			wantID: 0x141,
			want:   rmdx8.Frame{0x91, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34},
		},
		{
			name:   "Short_DLC_ZeroFilled",
			line:   "t1234AABBCCDD",
			wantID: 0x123,
			want:   rmdx8.Frame{0xAA, 0xBB, 0xCC, 0xDD, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:   "Lowercase_Hex",
			line:   "t1418a5aa000001020000",
			wantID: 0x141,
			want:   rmdx8.Frame{0xA5, 0xAA, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00},
		},
		{name: "Extended_Frame_Rejected", line: "T0000014180011223344556677", wantErr: true},
		{name: "Status_Reply_Rejected", line: "z", wantErr: true},
		{name: "Empty_Line", line: "", wantErr: true},
		{name: "Bad_DLC", line: "t141900", wantErr: true},
		{name: "Truncated_Data", line: "t141891", wantErr: true},
		{name: "Bad_Hex", line: "t1412ZZZZ", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, payload, err := parseFrame([]byte(tt.line))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.want, payload)
		})
	}
}

func TestEncodeParse_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := rmdx8.Frame{0xA2, 0x00, 0x00, 0x00, 0xA0, 0x86, 0x01, 0x00}
	line := encodeFrame(0x7FF, payload)
	id, got, err := parseFrame(line[:len(line)-1]) // strip CR, as Receive does
	require.NoError(t, err)
	assert.Equal(t, uint16(0x7FF), id)
	assert.Equal(t, payload, got)
}

func TestCutLine(t *testing.T) {
	t.Parallel()

	line, rest, found := cutLine([]byte("t1230\rz\r"))
	require.True(t, found)
	assert.Equal(t, "t1230", string(line))
	assert.Equal(t, "z\r", string(rest))

	_, rest, found = cutLine([]byte("t123"))
	assert.False(t, found)
	assert.Equal(t, "t123", string(rest))
}

func TestNew_UnsupportedBitrate(t *testing.T) {
	t.Parallel()

	_, err := New("/dev/null", 333_333)
	require.ErrorIs(t, err, rmdx8.ErrInvalidArgument)
}

func TestBitrateCodes_CoverReferenceDeployment(t *testing.T) {
	t.Parallel()

	// The RMD-X8 reference deployment runs at 1 Mbit/s.
	code, ok := bitrateCodes[1_000_000]
	require.True(t, ok)
	assert.Equal(t, byte('8'), code)
}
