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

// Command rmdctl sends a single command to an RMD-X8 servo motor and prints
// the raw reply frame.
//
//	rmdctl -device can0 status1
//	rmdctl -device /dev/ttyUSB0 speed 360
//	rmdctl position -45.5
//
// With no -device flag, rmdctl auto-detects CAN adapters and uses the first
// one found.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	rmdx8 "github.com/openactuator/go-rmdx8"
	"github.com/openactuator/go-rmdx8/detection"
	"github.com/openactuator/go-rmdx8/transport/slcan"
)

type config struct {
	devicePath string
	command    string
	arg        string
	id         uint
	bitrate    uint
	debug      bool
}

// Package-level flag variables
var (
	flagDevicePath string
	flagID         uint
	flagBitrate    uint
	flagDebug      bool
)

func init() {
	flag.StringVar(&flagDevicePath, "device", "",
		"CAN interface name or serial port path (auto-detect if empty)")
	flag.UintVar(&flagID, "id", 0x141, "motor arbitration identifier")
	flag.UintVar(&flagBitrate, "bitrate", 1_000_000, "bus bitrate in bit/s")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug output")
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command> [value]\n\nCommands:\n", os.Args[0])
	_, _ = fmt.Fprint(os.Stderr, `  pid                read PID parameters
  acceleration       read acceleration setting
  encoder            read encoder position
  angle              read multi-turn angle
  single-angle       read single circle angle
  status1            read error flags, voltage and temperature
  status2            read temperature, voltage, speed and encoder
  status3            read phase currents
  clear              clear the motor error flags
  off                turn the motor off
  stop               stop the motor, keeping state
  run                resume after stop
  zero               store current position to ROM as zero
  torque <raw>       closed-loop torque current (int16 raw units)
  speed <dps>        closed-loop speed in degrees per second
  position <deg>     closed-loop multi-turn position in degrees

Flags:
`)
	flag.PrintDefaults()
}

func parseConfig(args []string) (*config, error) {
	if len(args) < 1 {
		return nil, errors.New("missing command")
	}
	cfg := &config{
		devicePath: flagDevicePath,
		id:         flagID,
		bitrate:    flagBitrate,
		debug:      flagDebug,
		command:    args[0],
	}
	if len(args) > 1 {
		cfg.arg = args[1]
	}

	if cfg.debug {
		rmdx8.SetDebugEnabled(true)
	}

	return cfg, nil
}

// newTransportFromDevice creates a new transport from a detected device.
func newTransportFromDevice(device detection.DeviceInfo, bitrate uint32) (rmdx8.Transport, error) {
	switch device.Transport {
	case "socketcan":
		transport, err := newSocketCANTransport(device.Path, bitrate)
		if err != nil {
			return nil, fmt.Errorf("failed to create SocketCAN transport: %w", err)
		}
		return transport, nil
	case "slcan":
		transport, err := slcan.New(device.Path, bitrate)
		if err != nil {
			return nil, fmt.Errorf("failed to create SLCAN transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", device.Transport)
	}
}

// newTransport creates a new transport from a device path. Network interface
// names go to SocketCAN, anything path-like to SLCAN.
func newTransport(path string, bitrate uint32) (rmdx8.Transport, error) {
	if path == "" {
		return nil, errors.New("empty device path")
	}
	if !strings.ContainsRune(path, '/') {
		transport, err := newSocketCANTransport(path, bitrate)
		if err != nil {
			return nil, fmt.Errorf("failed to create SocketCAN transport for %s: %w", path, err)
		}
		return transport, nil
	}
	transport, err := slcan.New(path, bitrate)
	if err != nil {
		return nil, fmt.Errorf("failed to create SLCAN transport for %s: %w", path, err)
	}
	return transport, nil
}

func connectMotor(cfg *config) (*rmdx8.Motor, error) {
	motor, err := rmdx8.New(uint16(cfg.id))
	if err != nil {
		return nil, err
	}

	var transport rmdx8.Transport
	if cfg.devicePath == "" {
		if cfg.debug {
			_, _ = fmt.Println("Auto-detecting CAN adapters...")
		}
		devices, err := detection.Detect(nil)
		if err != nil {
			return nil, err
		}
		if cfg.debug {
			_, _ = fmt.Printf("Using %s\n", devices[0])
		}
		transport, err = newTransportFromDevice(devices[0], uint32(cfg.bitrate))
		if err != nil {
			return nil, err
		}
	} else {
		transport, err = newTransport(cfg.devicePath, uint32(cfg.bitrate))
		if err != nil {
			return nil, err
		}
	}

	motor.AttachTransport(transport)
	return motor, nil
}

// runCommand dispatches a named command against the motor and returns the
// raw reply frame.
func runCommand(motor *rmdx8.Motor, command, arg string) (rmdx8.Frame, error) {
	switch command {
	case "pid":
		return motor.ReadPID()
	case "acceleration":
		return motor.ReadAcceleration()
	case "encoder":
		return motor.ReadEncoder()
	case "angle":
		return motor.ReadMultiTurnsAngle()
	case "single-angle":
		return motor.ReadSingleTurnAngle()
	case "status1":
		return motor.ReadMotorStatus1()
	case "status2":
		return motor.ReadMotorStatus2()
	case "status3":
		return motor.ReadMotorStatus3()
	case "clear":
		return motor.ClearMotorErrorFlag()
	case "off":
		return motor.MotorOff()
	case "stop":
		return motor.MotorStop()
	case "run":
		return motor.MotorRun()
	case "zero":
		return motor.WriteMotorZeroROM()
	case "torque":
		raw, err := strconv.ParseInt(arg, 10, 16)
		if err != nil {
			return rmdx8.Frame{}, fmt.Errorf("torque needs an int16 value: %w", err)
		}
		return motor.TorqueClosedLoop(le16(int16(raw)))
	case "speed":
		dps, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return rmdx8.Frame{}, fmt.Errorf("speed needs a numeric value in dps: %w", err)
		}
		// Wire unit is 0.01 dps.
		return motor.SpeedClosedLoop(le32(int32(dps * 100)))
	case "position":
		deg, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return rmdx8.Frame{}, fmt.Errorf("position needs a numeric value in degrees: %w", err)
		}
		// Wire unit is 0.01 degrees.
		return motor.PositionClosedLoop1(le32(int32(deg * 100)))
	default:
		return rmdx8.Frame{}, fmt.Errorf("unknown command %q", command)
	}
}

func le16(v int16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func le32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func run(cfg *config) error {
	motor, err := connectMotor(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := motor.Transport().Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close transport: %v\n", err)
		}
	}()

	reply, err := runCommand(motor, cfg.command, cfg.arg)
	if err != nil {
		return err
	}

	_, _ = fmt.Printf("motor 0x%03X reply: %s\n", motor.ID(), reply)
	return nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	cfg, err := parseConfig(flag.Args())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		return 2
	}

	if err := run(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
