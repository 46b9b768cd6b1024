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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport_RepliesInFIFOOrder(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReply(Frame{0x01})
	mock.QueueReply(Frame{0x02})

	first, err := mock.Receive()
	require.NoError(t, err)
	second, err := mock.Receive()
	require.NoError(t, err)
	assert.Equal(t, Frame{0x01}, first)
	assert.Equal(t, Frame{0x02}, second)
}

func TestMockTransport_EmptyQueueYieldsNoReply(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	_, err := mock.Receive()
	require.ErrorIs(t, err, ErrNoReply)
	assert.Equal(t, 1, mock.ReceiveCount(), "failed attempts still count")
}

func TestMockTransport_RecordsTransmits(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.Transmit(0x141, Frame{0x9C}))
	require.NoError(t, mock.Transmit(0x142, Frame{0x9D}))

	sent := mock.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, SentFrame{ID: 0x141, Payload: Frame{0x9C}}, sent[0])
	assert.Equal(t, SentFrame{ID: 0x142, Payload: Frame{0x9D}}, sent[1])
	assert.Equal(t, 2, mock.TransmitCount())
}

func TestMockTransport_ErrorInjection(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	txErr := errors.New("tx failed")
	rxErr := errors.New("rx failed")
	mock.SetTransmitError(txErr)
	mock.SetReceiveError(rxErr)

	require.ErrorIs(t, mock.Transmit(0x141, Frame{}), txErr)
	_, err := mock.Receive()
	require.ErrorIs(t, err, rxErr)
	assert.Equal(t, 0, mock.TransmitCount(), "failed transmits are not recorded")
}

func TestMockTransport_ClosedRejectsEverything(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	require.NoError(t, mock.Close())

	require.ErrorIs(t, mock.Transmit(0x141, Frame{}), ErrTransportClosed)
	_, err := mock.Receive()
	require.ErrorIs(t, err, ErrTransportClosed)
}

func TestMockTransport_Reset(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReply(Frame{0x01})
	mock.SetTransmitError(errors.New("boom"))
	require.NoError(t, mock.Close())

	mock.Reset()
	require.NoError(t, mock.Transmit(0x141, Frame{}))
	assert.Equal(t, 1, mock.TransmitCount())
	_, err := mock.Receive()
	require.ErrorIs(t, err, ErrNoReply, "queued replies are cleared")
	assert.Equal(t, TransportMock, mock.Type())
}
