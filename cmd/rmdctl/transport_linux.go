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

//go:build linux

package main

import (
	rmdx8 "github.com/openactuator/go-rmdx8"
	"github.com/openactuator/go-rmdx8/transport/socketcan"
)

// newSocketCANTransport brings the interface up at the given bitrate and
// opens a raw CAN socket on it.
func newSocketCANTransport(iface string, bitrate uint32) (rmdx8.Transport, error) {
	if err := socketcan.Provision(iface, bitrate); err != nil {
		return nil, err
	}
	return socketcan.New(iface)
}
