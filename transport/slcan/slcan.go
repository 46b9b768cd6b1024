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

// Package slcan provides a transport backend for Lawicel/SLCAN ASCII serial
// CAN adapters (CANUSB, CANable with slcan firmware, USBtin and similar).
package slcan

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"github.com/openactuator/go-rmdx8/internal/syncutil"
	"go.bug.st/serial"
)

const (
	// cr terminates every SLCAN command; bell is the adapter's error reply.
	cr   = '\r'
	bell = 0x07

	// portReadTimeout is the per-read bound on the serial port; Receive
	// applies its own overall deadline on top.
	portReadTimeout = 20 * time.Millisecond

	// defaultReceiveTimeout bounds a single Receive so a silent motor
	// surfaces as rmdx8.ErrNoReply.
	defaultReceiveTimeout = 1 * time.Second
)

// bitrateCodes maps CAN bit rates to the Lawicel "Sn" setup digit.
var bitrateCodes = map[uint32]byte{
	10_000:    '0',
	20_000:    '1',
	50_000:    '2',
	100_000:   '3',
	125_000:   '4',
	250_000:   '5',
	500_000:   '6',
	800_000:   '7',
	1_000_000: '8',
}

// Transport implements rmdx8.Transport over an SLCAN serial adapter.
type Transport struct {
	port     serial.Port
	portName string
	timeout  time.Duration
	mu       syncutil.Mutex
	pending  []byte
	closed   bool
}

// New opens the serial port, configures the requested CAN bit rate and opens
// the adapter's CAN channel. The adapter is provisioned and ready for
// exchanges when New returns without error.
func New(portName string, bitrate uint32) (*Transport, error) {
	code, ok := bitrateCodes[bitrate]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported SLCAN bitrate %d", rmdx8.ErrInvalidArgument, bitrate)
	}

	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, rmdx8.NewTransportError("open", portName, err)
	}
	if err := port.SetReadTimeout(portReadTimeout); err != nil {
		_ = port.Close()
		return nil, rmdx8.NewTransportError("open", portName, err)
	}

	t := &Transport{
		port:     port,
		portName: portName,
		timeout:  defaultReceiveTimeout,
	}

	// Terminate any half-typed command, close a possibly open channel,
	// then set the bit rate and open the channel.
	if _, err := port.Write([]byte{cr, cr, cr}); err != nil {
		_ = port.Close()
		return nil, rmdx8.NewTransportError("provision", portName, err)
	}
	_ = t.command([]byte{'C', cr}) // fails harmlessly when already closed
	if err := t.command([]byte{'S', code, cr}); err != nil {
		_ = port.Close()
		return nil, rmdx8.NewTransportError("provision", portName, err)
	}
	if err := t.command([]byte{'O', cr}); err != nil {
		_ = port.Close()
		return nil, rmdx8.NewTransportError("provision", portName, err)
	}
	_ = port.ResetInputBuffer()

	return t, nil
}

// command writes one setup command and waits for the adapter's CR/BEL
// verdict.
func (t *Transport) command(cmd []byte) error {
	if _, err := t.port.Write(cmd); err != nil {
		return err
	}
	deadline := time.Now().Add(200 * time.Millisecond)
	buf := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := t.port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		switch buf[0] {
		case cr, 'z', 'Z':
			return nil
		case bell:
			return fmt.Errorf("adapter rejected %q", cmd[:len(cmd)-1])
		}
	}
	return fmt.Errorf("no response to %q", cmd[:len(cmd)-1])
}

// SetReceiveTimeout bounds how long a single Receive waits for a complete
// frame line.
func (t *Transport) SetReceiveTimeout(d time.Duration) {
	t.mu.Lock()
	t.timeout = d
	t.mu.Unlock()
}

// Transmit sends one frame as a "tiiildd..dd" line.
func (t *Transport) Transmit(id uint16, payload rmdx8.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return rmdx8.ErrTransportClosed
	}
	if id > rmdx8.MaxStandardID {
		return fmt.Errorf("%w: identifier 0x%X exceeds standard 11-bit range", rmdx8.ErrInvalidArgument, id)
	}
	line := encodeFrame(id, payload)
	n, err := t.port.Write(line)
	if err != nil {
		return rmdx8.NewTransportError("transmit", t.portName, err)
	}
	if n != len(line) {
		return rmdx8.NewTransportError("transmit", t.portName, errors.New("short write"))
	}
	return nil
}

// Receive blocks for the next inbound data frame line, up to the receive
// timeout. Non-frame chatter (transmit acknowledgements, status characters)
// is skipped.
func (t *Transport) Receive() (rmdx8.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return rmdx8.Frame{}, rmdx8.ErrTransportClosed
	}

	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, 64)
	for time.Now().Before(deadline) {
		for {
			line, rest, found := cutLine(t.pending)
			if !found {
				break
			}
			t.pending = rest
			_, payload, err := parseFrame(line)
			if err != nil {
				continue // not a standard data frame, keep scanning
			}
			return payload, nil
		}
		n, err := t.port.Read(buf)
		if err != nil {
			return rmdx8.Frame{}, rmdx8.NewTransportError("receive", t.portName, err)
		}
		if n > 0 {
			t.pending = append(t.pending, buf[:n]...)
		}
	}
	return rmdx8.Frame{}, rmdx8.ErrNoReply
}

// Close closes the adapter's CAN channel and the serial port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	_, _ = t.port.Write([]byte{'C', cr})
	if err := t.port.Close(); err != nil {
		return rmdx8.NewTransportError("close", t.portName, err)
	}
	return nil
}

// Type implements rmdx8.Transport.
func (*Transport) Type() rmdx8.TransportType {
	return rmdx8.TransportSLCAN
}

// encodeFrame renders a standard data frame as an SLCAN transmit line:
// 't', three hex identifier digits, the DLC digit and two hex digits per
// data byte, terminated by CR.
func encodeFrame(id uint16, payload rmdx8.Frame) []byte {
	line := make([]byte, 0, 5+2*rmdx8.FrameSize+1)
	line = append(line, []byte(fmt.Sprintf("t%03X%d", id, rmdx8.FrameSize))...)
	line = append(line, []byte(fmt.Sprintf("%X", payload[:]))...)
	return append(line, cr)
}

// parseFrame decodes a standard data frame line produced by the adapter.
// Anything else (extended frames, RTR, status replies) is rejected.
func parseFrame(line []byte) (uint16, rmdx8.Frame, error) {
	if len(line) < 5 || line[0] != 't' {
		return 0, rmdx8.Frame{}, errors.New("slcan: not a standard data frame")
	}
	var id uint16
	if _, err := fmt.Sscanf(string(line[1:4]), "%3X", &id); err != nil {
		return 0, rmdx8.Frame{}, fmt.Errorf("slcan: bad identifier: %w", err)
	}
	dlc := int(line[4] - '0')
	if dlc < 0 || dlc > rmdx8.FrameSize {
		return 0, rmdx8.Frame{}, errors.New("slcan: bad DLC")
	}
	if len(line) < 5+2*dlc {
		return 0, rmdx8.Frame{}, errors.New("slcan: truncated data")
	}
	var payload rmdx8.Frame
	if _, err := hex.Decode(payload[:dlc], line[5:5+2*dlc]); err != nil {
		return 0, rmdx8.Frame{}, fmt.Errorf("slcan: bad data hex: %w", err)
	}
	return id, payload, nil
}

// cutLine splits buf at the first CR, dropping the CR itself.
func cutLine(buf []byte) (line, rest []byte, found bool) {
	for i, b := range buf {
		if b == cr {
			return buf[:i], buf[i+1:], true
		}
	}
	return nil, buf, false
}

// Ensure Transport implements rmdx8.Transport
var _ rmdx8.Transport = (*Transport)(nil)
