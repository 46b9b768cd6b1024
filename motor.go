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

// DefaultSettleTime is the delay between transmitting a command and reading
// its reply, compensating for motor processing latency. The vendor protocol
// uses 10 ms for every command.
const DefaultSettleTime = 10 * time.Millisecond

// Motor is a link to one RMD-X8 servo on a CAN bus, bound to its arbitration
// identifier. It is stateless between calls: every operation is an
// independent request/reply exchange.
//
// Thread Safety: Motor is NOT thread-safe. Interleaved exchanges on one
// identifier corrupt request/reply pairing because the protocol has no
// sequence numbers, so concurrent callers must keep at most one exchange in
// flight, either by external locking or by calling from a single goroutine.
type Motor struct {
	transport Transport
	sleep     func(time.Duration)
	id        uint16
	settle    time.Duration
}

// New creates a Motor for the given standard (11-bit) arbitration
// identifier. The motor has no transport until AttachTransport is called.
func New(id uint16, opts ...Option) (*Motor, error) {
	if id > MaxStandardID {
		return nil, fmt.Errorf("%w: identifier 0x%X exceeds standard 11-bit range", ErrInvalidArgument, id)
	}
	m := &Motor{
		id:     id,
		settle: DefaultSettleTime,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ID returns the motor's arbitration identifier.
func (m *Motor) ID() uint16 {
	return m.id
}

// Transport returns the attached transport, or nil if none is attached.
func (m *Motor) Transport() Transport {
	return m.transport
}

// AttachTransport binds a provisioned transport to the motor. It must be
// called before any command.
func (m *Motor) AttachTransport(t Transport) {
	m.transport = t
}

// SendCommand transmits frame on the motor's arbitration identifier,
// suspends the calling goroutine for settle, then performs exactly one
// blocking receive and returns whatever frame arrives.
//
// Exactly one frame is sent and at most one receive attempt is made per
// call: no retry, and no correlation between the sent opcode and the reply.
// On a shared bus the returned frame may belong to an earlier stimulus.
// An exhausted receive bound surfaces as ErrNoReply.
func (m *Motor) SendCommand(frame Frame, settle time.Duration) (Frame, error) {
	if m.transport == nil {
		return Frame{}, ErrNotReady
	}
	Debugf("motor 0x%03X -> %s", m.id, frame)
	if err := m.transport.Transmit(m.id, frame); err != nil {
		return Frame{}, err
	}
	if settle > 0 {
		m.sleep(settle)
	}
	reply, err := m.transport.Receive()
	if err != nil {
		return Frame{}, err
	}
	Debugf("motor 0x%03X <- %s", m.id, reply)
	return reply, nil
}

// command encodes opcode+data through the command table and performs one
// exchange with the motor's settle time.
func (m *Motor) command(opcode byte, data []byte) (Frame, error) {
	frame, err := buildFrame(opcode, data)
	if err != nil {
		return Frame{}, err
	}
	return m.SendCommand(frame, m.settle)
}

// ReadPID reads the motor's current PID parameters.
func (m *Motor) ReadPID() (Frame, error) {
	return m.command(cmdReadPID, nil)
}

// WritePIDRAM writes PID parameters to RAM. It takes six data bytes: the
// position, speed and torque loop KP/KI pairs.
func (m *Motor) WritePIDRAM(data []byte) (Frame, error) {
	return m.command(cmdWritePIDRAM, data)
}

// WritePIDROM writes PID parameters to ROM, persisting across power cycles.
// It takes the same six data bytes as WritePIDRAM.
func (m *Motor) WritePIDROM(data []byte) (Frame, error) {
	return m.command(cmdWritePIDROM, data)
}

// ReadAcceleration reads the motor's acceleration data.
func (m *Motor) ReadAcceleration() (Frame, error) {
	return m.command(cmdReadAcceleration, nil)
}

// WriteAccelerationRAM writes the acceleration setting (four bytes,
// little-endian int32) to RAM.
func (m *Motor) WriteAccelerationRAM(data []byte) (Frame, error) {
	return m.command(cmdWriteAccelerationRAM, data)
}

// ReadEncoder reads the current encoder position.
func (m *Motor) ReadEncoder() (Frame, error) {
	return m.command(cmdReadEncoder, nil)
}

// WriteEncoderOffset sets the motor's encoder offset (two bytes).
func (m *Motor) WriteEncoderOffset(data []byte) (Frame, error) {
	return m.command(cmdWriteEncoderOffset, data)
}

// WriteMotorZeroROM stores the current position to ROM as the motor's zero
// position.
func (m *Motor) WriteMotorZeroROM() (Frame, error) {
	return m.command(cmdWriteMotorZeroROM, nil)
}

// ReadMultiTurnsAngle reads the multi-turn angle of the motor.
func (m *Motor) ReadMultiTurnsAngle() (Frame, error) {
	return m.command(cmdReadMultiTurnsAngle, nil)
}

// ReadSingleTurnAngle reads the single circle angle of the motor.
func (m *Motor) ReadSingleTurnAngle() (Frame, error) {
	return m.command(cmdReadSingleTurnAngle, nil)
}

// MotorOff turns the motor off, clearing its operating status and any
// previously received control commands.
func (m *Motor) MotorOff() (Frame, error) {
	return m.command(cmdMotorOff, nil)
}

// MotorStop stops the motor without clearing the operating state or
// previously received control commands.
func (m *Motor) MotorStop() (Frame, error) {
	return m.command(cmdMotorStop, nil)
}

// MotorRun resumes operation after a MotorStop.
func (m *Motor) MotorRun() (Frame, error) {
	return m.command(cmdMotorRun, nil)
}

// ReadMotorStatus1 reads error status, voltage and temperature.
func (m *Motor) ReadMotorStatus1() (Frame, error) {
	return m.command(cmdReadMotorStatus1, nil)
}

// ReadMotorStatus2 reads temperature, voltage, speed and encoder position.
func (m *Motor) ReadMotorStatus2() (Frame, error) {
	return m.command(cmdReadMotorStatus2, nil)
}

// ReadMotorStatus3 reads the phase current status data.
func (m *Motor) ReadMotorStatus3() (Frame, error) {
	return m.command(cmdReadMotorStatus3, nil)
}

// ClearMotorErrorFlag clears the motor's error status.
func (m *Motor) ClearMotorErrorFlag() (Frame, error) {
	return m.command(cmdClearMotorErrorFlag, nil)
}

// TorqueClosedLoop commands the torque current output (two bytes,
// little-endian int16 in units of 32/2000 A).
func (m *Motor) TorqueClosedLoop(data []byte) (Frame, error) {
	return m.command(cmdTorqueClosedLoop, data)
}

// SpeedClosedLoop commands the motor speed (four bytes, little-endian int32
// in units of 0.01 dps).
func (m *Motor) SpeedClosedLoop(data []byte) (Frame, error) {
	return m.command(cmdSpeedClosedLoop, data)
}

// PositionClosedLoop1 commands a multi-turn target angle (four bytes).
func (m *Motor) PositionClosedLoop1(data []byte) (Frame, error) {
	return m.command(cmdPositionClosedLoop1, data)
}

// PositionClosedLoop2 commands a multi-turn target angle with a speed limit
// (six bytes).
func (m *Motor) PositionClosedLoop2(data []byte) (Frame, error) {
	return m.command(cmdPositionClosedLoop2, data)
}

// PositionClosedLoop3 commands a single-turn target angle: one direction
// byte followed by the two angle bytes.
func (m *Motor) PositionClosedLoop3(data []byte) (Frame, error) {
	return m.command(cmdPositionClosedLoop3, data)
}

// PositionClosedLoop4 commands a single-turn target angle with a speed
// limit: direction byte, two speed-limit bytes, then the low angle byte.
func (m *Motor) PositionClosedLoop4(data []byte) (Frame, error) {
	return m.command(cmdPositionClosedLoop4, data)
}
