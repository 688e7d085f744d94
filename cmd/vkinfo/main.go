// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"os"
	"runtime"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
