// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package sysinfo reports the host OS identity logged once at helper
// startup (cmd/helper/main.go). The helper only ever runs as a macOS
// launchd-managed privileged process, so unlike the teacher's original
// (which supported Linux/Windows/Darwin callers), Stat's platform dispatch
// is narrowed to darwin/!darwin via sysinfo_darwin.go and
// sysinfo_other.go, the same split internal/device and internal/iostream
// already use for their own Darwin-only syscalls.
package sysinfo

// SysInfo holds the basic operating system details logged at startup.
type SysInfo struct {
	Name    string // runtime.GOOS, e.g. "darwin".
	Release string // sw_vers ProductName, e.g. "macOS".
	Version string // sw_vers ProductVersion, e.g. "14.5".
}
