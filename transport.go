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
	"github.com/openactuator/go-rmdx8/internal/syncutil"
)

// Transport is the frame send/receive capability over one physical CAN bus.
// Implementations are provided by the transport/socketcan, transport/slcan
// and transport/spi packages; any bus provisioning (interface bring-up, bit
// rate) happens before the Transport is handed to a Motor.
type Transport interface {
	// Transmit sends one 8-byte payload tagged with a standard (11-bit)
	// arbitration identifier.
	Transmit(id uint16, payload Frame) error

	// Receive blocks for the next inbound frame. Implementations enforce
	// their own receive bound and report an exhausted bound as ErrNoReply
	// rather than blocking forever.
	Receive() (Frame, error)

	// Close releases the underlying bus handle.
	Close() error

	// Type returns the transport type.
	Type() TransportType
}

// TransportType identifies a transport backend.
type TransportType string

const (
	// TransportSocketCAN is the Linux SocketCAN backend.
	TransportSocketCAN TransportType = "socketcan"
	// TransportSLCAN is the Lawicel/SLCAN ASCII serial backend.
	TransportSLCAN TransportType = "slcan"
	// TransportSPI is the MCP2515 SPI CAN controller backend.
	TransportSPI TransportType = "spi"
	// TransportMock is the in-memory test transport.
	TransportMock TransportType = "mock"
)

// SentFrame records one transmitted frame on a MockTransport.
type SentFrame struct {
	ID      uint16
	Payload Frame
}

// MockTransport is an in-memory Transport for tests. Replies are served from
// a queue in FIFO order; an empty queue yields ErrNoReply, mirroring a bus
// where the motor never answered.
type MockTransport struct {
	transmitErr error
	receiveErr  error
	sent        []SentFrame
	replies     []Frame
	receives    int
	mu          syncutil.RWMutex
	closed      bool
}

// NewMockTransport creates an open mock transport with no queued replies.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Transmit implements Transport. The frame is recorded and can be inspected
// with Sent.
func (m *MockTransport) Transmit(id uint16, payload Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrTransportClosed
	}
	if m.transmitErr != nil {
		return m.transmitErr
	}
	m.sent = append(m.sent, SentFrame{ID: id, Payload: payload})
	return nil
}

// Receive implements Transport.
func (m *MockTransport) Receive() (Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Frame{}, ErrTransportClosed
	}
	m.receives++
	if m.receiveErr != nil {
		return Frame{}, m.receiveErr
	}
	if len(m.replies) == 0 {
		return Frame{}, ErrNoReply
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

// Close implements Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Type implements Transport.
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// QueueReply appends a frame to the reply queue.
func (m *MockTransport) QueueReply(f Frame) {
	m.mu.Lock()
	m.replies = append(m.replies, f)
	m.mu.Unlock()
}

// SetTransmitError makes every subsequent Transmit fail with err.
func (m *MockTransport) SetTransmitError(err error) {
	m.mu.Lock()
	m.transmitErr = err
	m.mu.Unlock()
}

// SetReceiveError makes every subsequent Receive fail with err.
func (m *MockTransport) SetReceiveError(err error) {
	m.mu.Lock()
	m.receiveErr = err
	m.mu.Unlock()
}

// Sent returns a copy of all frames transmitted so far.
func (m *MockTransport) Sent() []SentFrame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SentFrame, len(m.sent))
	copy(out, m.sent)
	return out
}

// TransmitCount returns how many frames were transmitted.
func (m *MockTransport) TransmitCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sent)
}

// ReceiveCount returns how many receive attempts were made, including ones
// that yielded no reply.
func (m *MockTransport) ReceiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.receives
}

// Reset clears recorded frames, queued replies and injected errors.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.replies = nil
	m.transmitErr = nil
	m.receiveErr = nil
	m.receives = 0
	m.closed = false
	m.mu.Unlock()
}

// Ensure MockTransport implements Transport
var _ Transport = (*MockTransport)(nil)
