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

package socketcan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"golang.org/x/sys/unix"
)

// canFrameSize is the size of the Linux "struct can_frame" wire image for
// classical CAN: 4 bytes identifier, 1 byte DLC, 3 bytes padding, 8 data
// bytes, all little-endian.
const canFrameSize = 16

// defaultReadTimeout bounds a single Receive so a silent motor surfaces as
// rmdx8.ErrNoReply instead of blocking forever.
const defaultReadTimeout = 1 * time.Second

// Transport implements rmdx8.Transport over a raw Linux SocketCAN socket.
type Transport struct {
	iface  string
	fd     int
	closed bool
}

// New opens a raw CAN socket bound to the given network interface name
// (e.g. "can0"). The interface must already be up; use Provision to
// configure and bring it up first.
func New(iface string) (*Transport, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, rmdx8.NewTransportError("open", iface, err)
	}

	netIf, err := net.InterfaceByName(iface)
	if err != nil {
		_ = unix.Close(fd)
		return nil, rmdx8.NewTransportError("open", iface, err)
	}

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: netIf.Index}); err != nil {
		_ = unix.Close(fd)
		return nil, rmdx8.NewTransportError("bind", iface, err)
	}

	t := &Transport{fd: fd, iface: iface}
	if err := t.SetReadTimeout(defaultReadTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return t, nil
}

// SetReadTimeout bounds how long a single Receive blocks. An exhausted bound
// is reported as rmdx8.ErrNoReply.
func (t *Transport) SetReadTimeout(d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(t.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return rmdx8.NewTransportError("set timeout", t.iface, err)
	}
	return nil
}

// Transmit sends one frame with a standard (11-bit) identifier.
func (t *Transport) Transmit(id uint16, payload rmdx8.Frame) error {
	if t.closed {
		return rmdx8.ErrTransportClosed
	}
	if id > rmdx8.MaxStandardID {
		return fmt.Errorf("%w: identifier 0x%X exceeds standard 11-bit range", rmdx8.ErrInvalidArgument, id)
	}
	buf := marshalFrame(id, payload)
	n, err := unix.Write(t.fd, buf[:])
	if err != nil {
		return rmdx8.NewTransportError("transmit", t.iface, err)
	}
	if n != canFrameSize {
		return rmdx8.NewTransportError("transmit", t.iface, errors.New("short write"))
	}
	return nil
}

// Receive blocks for the next inbound frame, up to the configured read
// timeout.
func (t *Transport) Receive() (rmdx8.Frame, error) {
	if t.closed {
		return rmdx8.Frame{}, rmdx8.ErrTransportClosed
	}
	var buf [canFrameSize]byte
	n, err := unix.Read(t.fd, buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return rmdx8.Frame{}, rmdx8.ErrNoReply
		}
		return rmdx8.Frame{}, rmdx8.NewTransportError("receive", t.iface, err)
	}
	if n != canFrameSize {
		return rmdx8.Frame{}, rmdx8.NewTransportError("receive", t.iface, errors.New("short read"))
	}
	_, payload := unmarshalFrame(buf)
	return payload, nil
}

// Close releases the socket.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if err := unix.Close(t.fd); err != nil {
		return rmdx8.NewTransportError("close", t.iface, err)
	}
	return nil
}

// Type implements rmdx8.Transport.
func (*Transport) Type() rmdx8.TransportType {
	return rmdx8.TransportSocketCAN
}

// marshalFrame encodes a standard-identifier data frame into the can_frame
// wire layout.
func marshalFrame(id uint16, payload rmdx8.Frame) [canFrameSize]byte {
	var buf [canFrameSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(id))
	buf[4] = rmdx8.FrameSize
	copy(buf[8:], payload[:])
	return buf
}

// unmarshalFrame decodes a can_frame wire image. Flag bits (EFF/RTR/ERR) in
// the identifier word are masked off; payload bytes beyond the DLC stay
// zero.
func unmarshalFrame(buf [canFrameSize]byte) (uint16, rmdx8.Frame) {
	const canStdMask = 0x7FF
	id := uint16(binary.LittleEndian.Uint32(buf[0:4]) & canStdMask)
	dlc := buf[4]
	if dlc > rmdx8.FrameSize {
		dlc = rmdx8.FrameSize
	}
	var payload rmdx8.Frame
	copy(payload[:dlc], buf[8:8+dlc])
	return id, payload
}

// Ensure Transport implements rmdx8.Transport
var _ rmdx8.Transport = (*Transport)(nil)
