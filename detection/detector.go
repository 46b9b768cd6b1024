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

// Package detection enumerates CAN adapters a motor could be reached
// through: SocketCAN network interfaces and USB-serial SLCAN dongles. It
// only inspects descriptors, it never opens or probes a device, so it is
// safe to call on a live bus.
package detection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// DeviceInfo describes one candidate CAN adapter.
type DeviceInfo struct {
	// Path is what the matching transport constructor takes: a network
	// interface name for socketcan, a serial port path for slcan.
	Path string
	// Name is a human-readable adapter name.
	Name string
	// Transport is the backend to use: "socketcan" or "slcan".
	Transport string
}

// String returns a human-readable representation of the device.
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s adapter %q at %s", d.Transport, d.Name, d.Path)
}

// Options configures which adapter classes Detect looks for.
type Options struct {
	// SkipSocketCAN disables scanning for CAN network interfaces.
	SkipSocketCAN bool
	// SkipSerial disables scanning for USB-serial SLCAN dongles.
	SkipSerial bool
}

// ErrNoAdaptersFound indicates no CAN adapters were detected.
var ErrNoAdaptersFound = errors.New("detection: no CAN adapters found")

// knownSerialAdapters maps USB VID:PID pairs (upper-case hex) of common
// SLCAN-speaking dongles to their product names.
var knownSerialAdapters = map[string]string{
	"0403:6001": "Lawicel CANUSB",
	"AD50:60C4": "CANable (slcan firmware)",
	"04D8:000A": "USBtin",
	"1D50:606F": "CANtact",
}

// Detect returns all candidate adapters. A nil opts scans everything. An
// empty result is reported as ErrNoAdaptersFound.
func Detect(opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = &Options{}
	}

	var devices []DeviceInfo
	if !opts.SkipSocketCAN {
		devices = append(devices, socketCANInterfaces()...)
	}
	if !opts.SkipSerial {
		serial, err := serialAdapters()
		if err != nil {
			return nil, err
		}
		devices = append(devices, serial...)
	}

	if len(devices) == 0 {
		return nil, ErrNoAdaptersFound
	}
	return devices, nil
}

// socketCANInterfaces lists network interfaces of the CAN link type by
// reading sysfs. ARPHRD_CAN is link type 280. On platforms without sysfs
// the scan finds nothing, which is correct: SocketCAN is Linux-only.
func socketCANInterfaces() []DeviceInfo {
	entries, err := filepath.Glob("/sys/class/net/*/type")
	if err != nil {
		return nil
	}
	var devices []DeviceInfo
	for _, entry := range entries {
		raw, err := os.ReadFile(entry)
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(raw)) != "280" {
			continue
		}
		iface := filepath.Base(filepath.Dir(entry))
		devices = append(devices, DeviceInfo{
			Path:      iface,
			Name:      "SocketCAN interface",
			Transport: "socketcan",
		})
	}
	return devices
}

// serialAdapters lists USB-serial ports whose VID:PID matches a known SLCAN
// dongle.
func serialAdapters() ([]DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("detection: serial enumeration failed: %w", err)
	}
	var devices []DeviceInfo
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		name, ok := matchSerialAdapter(port.VID, port.PID)
		if !ok {
			continue
		}
		devices = append(devices, DeviceInfo{
			Path:      port.Name,
			Name:      name,
			Transport: "slcan",
		})
	}
	return devices, nil
}

// matchSerialAdapter reports whether the VID/PID pair belongs to a known
// SLCAN dongle.
func matchSerialAdapter(vid, pid string) (string, bool) {
	key := strings.ToUpper(vid) + ":" + strings.ToUpper(pid)
	name, ok := knownSerialAdapters[key]
	return name, ok
}
