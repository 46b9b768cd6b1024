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

// RMD-X8 command opcodes
const (
	cmdReadPID              = 0x30
	cmdWritePIDRAM          = 0x31
	cmdWritePIDROM          = 0x32
	cmdReadAcceleration     = 0x33
	cmdWriteAccelerationRAM = 0x34
	cmdWriteMotorZeroROM    = 0x19
	cmdReadEncoder          = 0x90
	cmdWriteEncoderOffset   = 0x91
	cmdReadMultiTurnsAngle  = 0x92
	cmdReadSingleTurnAngle  = 0x94
	cmdMotorOff             = 0x80
	cmdMotorStop            = 0x81
	cmdMotorRun             = 0x88
	cmdReadMotorStatus1     = 0x9A
	cmdClearMotorErrorFlag  = 0x9B
	cmdReadMotorStatus2     = 0x9C
	cmdReadMotorStatus3     = 0x9D
	cmdTorqueClosedLoop     = 0xA1
	cmdSpeedClosedLoop      = 0xA2
	cmdPositionClosedLoop1  = 0xA3
	cmdPositionClosedLoop2  = 0xA4
	cmdPositionClosedLoop3  = 0xA5
	cmdPositionClosedLoop4  = 0xA6
)

// commandSpec describes the fixed wire layout of one command: offsets[i] is
// the frame index that receives caller data byte i. Commands with no payload
// have an empty offset list. The opcode always occupies byte 0 and every
// unlisted byte stays zero.
type commandSpec struct {
	name    string
	offsets []int
}

// commandTable is the complete encoding table of the vendor protocol. The
// byte placements are firmware-defined and must not be changed.
var commandTable = map[byte]commandSpec{
	cmdReadPID:              {name: "ReadPID"},
	cmdWritePIDRAM:          {name: "WritePIDRAM", offsets: []int{2, 3, 4, 5, 6, 7}},
	cmdWritePIDROM:          {name: "WritePIDROM", offsets: []int{2, 3, 4, 5, 6, 7}},
	cmdReadAcceleration:     {name: "ReadAcceleration"},
	cmdWriteAccelerationRAM: {name: "WriteAccelerationRAM", offsets: []int{4, 5, 6, 7}},
	cmdWriteMotorZeroROM:    {name: "WriteMotorZeroROM"},
	cmdReadEncoder:          {name: "ReadEncoder"},
	cmdWriteEncoderOffset:   {name: "WriteEncoderOffset", offsets: []int{6, 7}},
	cmdReadMultiTurnsAngle:  {name: "ReadMultiTurnsAngle"},
	cmdReadSingleTurnAngle:  {name: "ReadSingleTurnAngle"},
	cmdMotorOff:             {name: "MotorOff"},
	cmdMotorStop:            {name: "MotorStop"},
	cmdMotorRun:             {name: "MotorRun"},
	cmdReadMotorStatus1:     {name: "ReadMotorStatus1"},
	cmdClearMotorErrorFlag:  {name: "ClearMotorErrorFlag"},
	cmdReadMotorStatus2:     {name: "ReadMotorStatus2"},
	cmdReadMotorStatus3:     {name: "ReadMotorStatus3"},
	cmdTorqueClosedLoop:     {name: "TorqueClosedLoop", offsets: []int{4, 5}},
	cmdSpeedClosedLoop:      {name: "SpeedClosedLoop", offsets: []int{4, 5, 6, 7}},
	cmdPositionClosedLoop1:  {name: "PositionClosedLoop1", offsets: []int{4, 5, 6, 7}},
	cmdPositionClosedLoop2:  {name: "PositionClosedLoop2", offsets: []int{2, 3, 4, 5, 6, 7}},
	cmdPositionClosedLoop3:  {name: "PositionClosedLoop3", offsets: []int{1, 4, 5}},
	cmdPositionClosedLoop4:  {name: "PositionClosedLoop4", offsets: []int{1, 2, 3, 4}},
}

// buildFrame assembles the 8-byte command frame for opcode, placing the
// caller-supplied data bytes at their table-defined offsets. The data length
// must match the command's layout exactly; a mismatch is reported as
// ErrInvalidArgument before anything touches the bus.
func buildFrame(opcode byte, data []byte) (Frame, error) {
	spec, ok := commandTable[opcode]
	if !ok {
		return Frame{}, fmt.Errorf("rmdx8: unknown opcode 0x%02X", opcode)
	}
	if len(data) != len(spec.offsets) {
		return Frame{}, fmt.Errorf("%w: %s needs %d data bytes, got %d",
			ErrInvalidArgument, spec.name, len(spec.offsets), len(data))
	}
	var f Frame
	f[0] = opcode
	for i, off := range spec.offsets {
		f[off] = data[i]
	}
	return f, nil
}
