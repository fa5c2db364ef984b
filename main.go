// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// rfstat - 433 MHz remote codec and pulse bridge analyzer
//
// A CLI tool for decoding and synthesizing Silvercrest remote frames and
// monitoring a pulse bridge in human-readable format.

package main

import (
	"os"

	"github.com/Thermoquad/rfstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
