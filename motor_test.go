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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracingTransport wraps a MockTransport and records the order of transport
// calls alongside the injected sleeps, so tests can verify the
// transmit/settle/receive discipline.
type tracingTransport struct {
	*MockTransport
	events *[]string
}

func (t *tracingTransport) Transmit(id uint16, payload Frame) error {
	*t.events = append(*t.events, "transmit")
	return t.MockTransport.Transmit(id, payload)
}

func (t *tracingTransport) Receive() (Frame, error) {
	*t.events = append(*t.events, "receive")
	return t.MockTransport.Receive()
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      uint16
		wantErr bool
	}{
		{name: "Typical_Identifier", id: 0x141},
		{name: "Zero_Identifier", id: 0x000},
		{name: "Max_Standard_Identifier", id: 0x7FF},
		{name: "Beyond_Standard_Range", id: 0x800, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			motor, err := New(tt.id)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidArgument)
				assert.Nil(t, motor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, motor.ID())
			assert.Nil(t, motor.Transport())
		})
	}
}

func TestMotor_NotReadyBeforeAttach(t *testing.T) {
	t.Parallel()

	motor, err := New(0x141)
	require.NoError(t, err)

	_, err = motor.ReadEncoder()
	require.ErrorIs(t, err, ErrNotReady)

	_, err = motor.SendCommand(Frame{0x90}, DefaultSettleTime)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestMotor_AttachTransport(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReply(Frame{0x90, 0x01})

	motor, err := New(0x141)
	require.NoError(t, err)
	motor.AttachTransport(mock)
	assert.Equal(t, Transport(mock), motor.Transport())

	reply, err := motor.ReadEncoder()
	require.NoError(t, err)
	assert.Equal(t, Frame{0x90, 0x01}, reply)
}

func TestMotor_SendCommand_Discipline(t *testing.T) {
	t.Parallel()

	var events []string
	var slept []time.Duration

	mock := NewMockTransport()
	mock.QueueReply(Frame{0xA1})
	tracing := &tracingTransport{MockTransport: mock, events: &events}

	motor, err := New(0x141,
		WithTransport(tracing),
		WithSleepFunc(func(d time.Duration) {
			events = append(events, "sleep")
			slept = append(slept, d)
		}),
	)
	require.NoError(t, err)

	settle := 25 * time.Millisecond
	reply, err := motor.SendCommand(Frame{0xA1, 0, 0, 0, 0x10, 0x27}, settle)
	require.NoError(t, err)
	assert.Equal(t, Frame{0xA1}, reply)

	// Exactly one transmit, the full settle suspend, then one receive.
	assert.Equal(t, []string{"transmit", "sleep", "receive"}, events)
	assert.Equal(t, []time.Duration{settle}, slept)
	assert.Equal(t, 1, mock.TransmitCount())
	assert.Equal(t, 1, mock.ReceiveCount())

	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, uint16(0x141), sent[0].ID)
	assert.Equal(t, Frame{0xA1, 0, 0, 0, 0x10, 0x27}, sent[0].Payload)
}

func TestMotor_SendCommand_ZeroSettleSkipsSleep(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReply(Frame{})

	motor, err := New(0x141,
		WithTransport(mock),
		WithSleepFunc(func(time.Duration) {
			t.Error("sleep called for zero settle time")
		}),
	)
	require.NoError(t, err)

	_, err = motor.SendCommand(Frame{0x9A}, 0)
	require.NoError(t, err)
}

func TestMotor_SendCommand_NoReply(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	motor, err := New(0x141, WithTransport(mock), WithSleepFunc(func(time.Duration) {}))
	require.NoError(t, err)

	_, err = motor.ReadMotorStatus1()
	require.ErrorIs(t, err, ErrNoReply)
	assert.Equal(t, 1, mock.TransmitCount(), "the command must still be transmitted")
	assert.Equal(t, 1, mock.ReceiveCount(), "exactly one receive attempt, no retry")
}

func TestMotor_SendCommand_TransmitErrorSurfaced(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	transportErr := NewTransportError("transmit", "can0", errors.New("bus off"))
	mock.SetTransmitError(transportErr)

	motor, err := New(0x141, WithTransport(mock), WithSleepFunc(func(time.Duration) {
		t.Error("slept after failed transmit")
	}))
	require.NoError(t, err)

	_, err = motor.MotorRun()
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "can0", te.Device)
	assert.Equal(t, 0, mock.ReceiveCount(), "no receive after failed transmit")
}

func TestMotor_InvalidArgument_NothingTransmitted(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	motor, err := New(0x141, WithTransport(mock))
	require.NoError(t, err)

	tests := []struct {
		call func() (Frame, error)
		name string
	}{
		{name: "WritePIDRAM_Short", call: func() (Frame, error) { return motor.WritePIDRAM([]byte{0x01}) }},
		{name: "WriteEncoderOffset_Short", call: func() (Frame, error) { return motor.WriteEncoderOffset(nil) }},
		{name: "TorqueClosedLoop_Long", call: func() (Frame, error) { return motor.TorqueClosedLoop([]byte{1, 2, 3}) }},
		{name: "PositionClosedLoop4_Short", call: func() (Frame, error) { return motor.PositionClosedLoop4([]byte{1, 2}) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, 0, mock.TransmitCount())
		})
	}
}

func TestMotor_OperationsUseTableEncoding(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	motor, err := New(0x145, WithTransport(mock), WithSleepFunc(func(time.Duration) {}))
	require.NoError(t, err)

	tests := []struct {
		call func() (Frame, error)
		name string
		want Frame
	}{
		{
			name: "ReadPID",
			call: motor.ReadPID,
			want: Frame{0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name: "WriteEncoderOffset",
			call: func() (Frame, error) { return motor.WriteEncoderOffset([]byte{0x12, 0x34}) },
			want: Frame{0x91, 0x00, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34},
		},
		{
			name: "SpeedClosedLoop",
			call: func() (Frame, error) { return motor.SpeedClosedLoop([]byte{0xA0, 0x86, 0x01, 0x00}) },
			want: Frame{0xA2, 0x00, 0x00, 0x00, 0xA0, 0x86, 0x01, 0x00},
		},
		{
			name: "PositionClosedLoop3",
			call: func() (Frame, error) { return motor.PositionClosedLoop3([]byte{0xAA, 0x01, 0x02}) },
			want: Frame{0xA5, 0xAA, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00},
		},
		{
			name: "MotorOff",
			call: motor.MotorOff,
			want: Frame{0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			mock.Reset()
			mock.QueueReply(tt.want) // motor echoes the command frame

			reply, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply, "reply is returned unmodified")

			sent := mock.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, uint16(0x145), sent[0].ID)
			assert.Equal(t, tt.want, sent[0].Payload)
		})
	}
}

func TestMotor_Options(t *testing.T) {
	t.Parallel()

	t.Run("WithSettleTime", func(t *testing.T) {
		t.Parallel()

		var slept []time.Duration
		mock := NewMockTransport()
		mock.QueueReply(Frame{})

		motor, err := New(0x141,
			WithTransport(mock),
			WithSettleTime(3*time.Millisecond),
			WithSleepFunc(func(d time.Duration) { slept = append(slept, d) }),
		)
		require.NoError(t, err)

		_, err = motor.ReadEncoder()
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{3 * time.Millisecond}, slept)
	})

	t.Run("WithSettleTime_Negative", func(t *testing.T) {
		t.Parallel()

		_, err := New(0x141, WithSettleTime(-time.Millisecond))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("WithSleepFunc_Nil", func(t *testing.T) {
		t.Parallel()

		_, err := New(0x141, WithSleepFunc(nil))
		require.ErrorIs(t, err, ErrInvalidArgument)
	})
}
