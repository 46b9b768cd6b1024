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
	"os"
	"time"
)

// debugEnabled controls whether debug logging is active
var debugEnabled = false

func init() {
	// Enable debug logging if the environment asks for it
	if os.Getenv("RMDX8_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// SetDebugEnabled turns stdout debug output on or off at runtime,
// overriding the environment.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// Debugf prints frame-level debug information to stdout when debug mode is
// enabled, and to the session log when one is open. It is never used on the
// error path: failures are returned, not logged.
func Debugf(format string, args ...any) {
	if !debugEnabled && sessionLogWriter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if debugEnabled {
		_, _ = fmt.Printf("DEBUG: %s\n", msg)
	}
	if sessionLogWriter != nil {
		_, _ = fmt.Fprintf(sessionLogWriter, "%s %s\n", time.Now().Format("15:04:05.000"), msg)
	}
}

// Debugln prints debug information to stdout when debug mode is enabled.
func Debugln(args ...any) {
	Debugf("%s", fmt.Sprint(args...))
}
