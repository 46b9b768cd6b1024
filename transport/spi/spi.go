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

// Package spi provides a transport backend for the MCP2515 stand-alone CAN
// controller attached over SPI, as found on PiCAN-style boards driven
// without a SocketCAN kernel driver. It assumes the common 16 MHz crystal.
package spi

import (
	"errors"
	"fmt"
	"time"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"github.com/openactuator/go-rmdx8/internal/syncutil"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MCP2515 SPI instruction set
const (
	insReset      = 0xC0
	insRead       = 0x03
	insWrite      = 0x02
	insReadRXB0   = 0x90 // read receive buffer 0 starting at RXB0SIDH
	insLoadTXB0   = 0x40 // load transmit buffer 0 starting at TXB0SIDH
	insRTSTXB0    = 0x81 // request-to-send transmit buffer 0
	insReadStatus = 0xA0
	insBitModify  = 0x05
)

// MCP2515 registers
const (
	regCANSTAT  = 0x0E
	regCANCTRL  = 0x0F
	regCNF3     = 0x28
	regCNF2     = 0x29
	regCNF1     = 0x2A
	regCANINTF  = 0x2C
	regTXB0CTRL = 0x30
	regRXB0CTRL = 0x60
)

const (
	modeNormal = 0x00
	modeConfig = 0x80
	modeMask   = 0xE0

	statusRX0IF  = 0x01 // ReadStatus bit: receive buffer 0 full
	txb0TXREQ    = 0x08 // TXB0CTRL bit: transmission pending
	rxb0RXMAny   = 0x60 // RXB0CTRL: receive any message, no filters
	canintfRX0IF = 0x01
)

const (
	defaultFreq = 10 * physic.MegaHertz
	mode        = spi.Mode0

	// defaultReceiveTimeout bounds a single Receive so a silent motor
	// surfaces as rmdx8.ErrNoReply.
	defaultReceiveTimeout = 1 * time.Second

	// transmitDeadline bounds the wait for TXREQ to clear after RTS.
	transmitDeadline = 50 * time.Millisecond
)

// txBufferLen is SIDH, SIDL, EID8, EID0, DLC plus eight data bytes.
const txBufferLen = 13

// cnfForBitrate returns the CNF1..CNF3 timing registers for the bit rate,
// assuming a 16 MHz crystal.
func cnfForBitrate(bitrate uint32) ([3]byte, error) {
	switch bitrate {
	case 1_000_000:
		return [3]byte{0x00, 0xD0, 0x82}, nil
	case 500_000:
		return [3]byte{0x00, 0xF0, 0x86}, nil
	case 250_000:
		return [3]byte{0x41, 0xF1, 0x85}, nil
	case 125_000:
		return [3]byte{0x03, 0xF0, 0x86}, nil
	default:
		return [3]byte{}, fmt.Errorf("%w: unsupported MCP2515 bitrate %d", rmdx8.ErrInvalidArgument, bitrate)
	}
}

// txBufferImage builds the TXB0 register image for a standard-identifier
// data frame: SIDH gets the high eight identifier bits, SIDL the low three
// in its top bits, the extended-identifier bytes stay zero.
func txBufferImage(id uint16, payload rmdx8.Frame) [txBufferLen]byte {
	var img [txBufferLen]byte
	img[0] = byte(id >> 3)
	img[1] = byte(id&0x07) << 5
	img[4] = rmdx8.FrameSize
	copy(img[5:], payload[:])
	return img
}

// Transport implements rmdx8.Transport over an MCP2515 CAN controller.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	portName string
	timeout  time.Duration
	mu       syncutil.Mutex
	closed   bool
}

// New opens the SPI port, resets the controller and provisions it for the
// given CAN bit rate, leaving it in normal mode ready for exchanges.
func New(portName string, bitrate uint32) (*Transport, error) {
	cnf, err := cnfForBitrate(bitrate)
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, rmdx8.NewTransportError("open", portName, err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, rmdx8.NewTransportError("open", portName, err)
	}
	conn, err := port.Connect(defaultFreq, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, rmdx8.NewTransportError("open", portName, err)
	}

	t := &Transport{
		port:     port,
		conn:     conn,
		portName: portName,
		timeout:  defaultReceiveTimeout,
	}
	if err := t.provision(cnf); err != nil {
		_ = port.Close()
		return nil, err
	}
	return t, nil
}

// provision resets the controller, programs the bit timing and switches to
// normal mode. A controller that never reaches the requested mode reads as
// board-not-found: wiring or chip-select is wrong.
func (t *Transport) provision(cnf [3]byte) error {
	if err := t.conn.Tx([]byte{insReset}, nil); err != nil {
		return rmdx8.NewTransportError("provision", t.portName, err)
	}
	time.Sleep(10 * time.Millisecond) // oscillator restart after reset

	if err := t.setMode(modeConfig); err != nil {
		return err
	}
	regs := map[byte]byte{
		regCNF1:     cnf[0],
		regCNF2:     cnf[1],
		regCNF3:     cnf[2],
		regRXB0CTRL: rxb0RXMAny,
	}
	for reg, val := range regs {
		if err := t.writeRegister(reg, val); err != nil {
			return err
		}
	}
	return t.setMode(modeNormal)
}

// setMode requests an operating mode and verifies CANSTAT reflects it.
func (t *Transport) setMode(m byte) error {
	if err := t.writeRegister(regCANCTRL, m); err != nil {
		return err
	}
	deadline := time.Now().Add(10 * time.Millisecond)
	for time.Now().Before(deadline) {
		stat, err := t.readRegister(regCANSTAT)
		if err != nil {
			return err
		}
		if stat&modeMask == m {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return rmdx8.NewTransportError("provision", t.portName,
		errors.New("controller did not enter requested mode, board not found?"))
}

func (t *Transport) readRegister(reg byte) (byte, error) {
	w := []byte{insRead, reg, 0x00}
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return 0, rmdx8.NewTransportError("read register", t.portName, err)
	}
	return r[2], nil
}

func (t *Transport) writeRegister(reg, val byte) error {
	if err := t.conn.Tx([]byte{insWrite, reg, val}, nil); err != nil {
		return rmdx8.NewTransportError("write register", t.portName, err)
	}
	return nil
}

func (t *Transport) readStatus() (byte, error) {
	w := []byte{insReadStatus, 0x00}
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return 0, rmdx8.NewTransportError("read status", t.portName, err)
	}
	return r[1], nil
}

// SetReceiveTimeout bounds how long a single Receive polls for an inbound
// frame.
func (t *Transport) SetReceiveTimeout(d time.Duration) {
	t.mu.Lock()
	t.timeout = d
	t.mu.Unlock()
}

// Transmit loads transmit buffer 0 and requests transmission, waiting until
// the controller has put the frame on the wire.
func (t *Transport) Transmit(id uint16, payload rmdx8.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return rmdx8.ErrTransportClosed
	}
	if id > rmdx8.MaxStandardID {
		return fmt.Errorf("%w: identifier 0x%X exceeds standard 11-bit range", rmdx8.ErrInvalidArgument, id)
	}

	img := txBufferImage(id, payload)
	if err := t.conn.Tx(append([]byte{insLoadTXB0}, img[:]...), nil); err != nil {
		return rmdx8.NewTransportError("transmit", t.portName, err)
	}
	if err := t.conn.Tx([]byte{insRTSTXB0}, nil); err != nil {
		return rmdx8.NewTransportError("transmit", t.portName, err)
	}

	deadline := time.Now().Add(transmitDeadline)
	for time.Now().Before(deadline) {
		ctrl, err := t.readRegister(regTXB0CTRL)
		if err != nil {
			return err
		}
		if ctrl&txb0TXREQ == 0 {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return rmdx8.NewTransportError("transmit", t.portName,
		errors.New("frame not sent, bus stuck or no other node?"))
}

// Receive polls receive buffer 0 until a frame arrives or the receive
// timeout expires.
func (t *Transport) Receive() (rmdx8.Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return rmdx8.Frame{}, rmdx8.ErrTransportClosed
	}

	deadline := time.Now().Add(t.timeout)
	for {
		status, err := t.readStatus()
		if err != nil {
			return rmdx8.Frame{}, err
		}
		if status&statusRX0IF != 0 {
			break
		}
		if !time.Now().Before(deadline) {
			return rmdx8.Frame{}, rmdx8.ErrNoReply
		}
		time.Sleep(time.Millisecond)
	}

	// SIDH, SIDL, EID8, EID0, DLC and eight data bytes.
	w := make([]byte, 1+txBufferLen)
	w[0] = insReadRXB0
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return rmdx8.Frame{}, rmdx8.NewTransportError("receive", t.portName, err)
	}

	// The read-RX-buffer instruction clears RX0IF when chip select rises,
	// but clear it explicitly in case the controller variant does not.
	if err := t.conn.Tx([]byte{insBitModify, regCANINTF, canintfRX0IF, 0x00}, nil); err != nil {
		return rmdx8.Frame{}, rmdx8.NewTransportError("receive", t.portName, err)
	}

	dlc := r[5] & 0x0F
	if dlc > rmdx8.FrameSize {
		dlc = rmdx8.FrameSize
	}
	var payload rmdx8.Frame
	copy(payload[:dlc], r[6:6+dlc])
	return payload, nil
}

// Close releases the SPI port. The controller is left in normal mode.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if err := t.port.Close(); err != nil {
		return rmdx8.NewTransportError("close", t.portName, err)
	}
	return nil
}

// Type implements rmdx8.Transport.
func (*Transport) Type() rmdx8.TransportType {
	return rmdx8.TransportSPI
}

// Ensure Transport implements rmdx8.Transport
var _ rmdx8.Transport = (*Transport)(nil)
