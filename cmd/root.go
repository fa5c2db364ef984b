// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/rfstat/internal/config"
	_ "github.com/Thermoquad/rfstat/pkg/protocol/all" // register protocols
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Output and configuration flags
	configPath   string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "rfstat",
	Short: "433 MHz remote codec and pulse bridge analyzer",
	Long: `rfstat - decode, synthesize and monitor 433.92 MHz remote control frames.

Captures are pulse duration lists in microseconds. They can be decoded
offline, or streamed from a pulse bridge (a receiver/transmitter board on a
serial port or behind a WebSocket relay).

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the RFSTAT_PASSWORD
environment variable, or prompted interactively if not set.

Settings may also come from a YAML file given with --config or
$RFSTAT_CONFIG. Flags given on the command line take precedence.`,
	Version:           "1.0.0",
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvPath+")")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatText, "Output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	registerOptionFlags()
}

// setup loads the config file, applies it to unset flags and configures logging
func setup(cmd *cobra.Command, args []string) error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(cmd.ErrOrStderr())

	path := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Apply(cmd.Flags()); err != nil {
		return err
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	if path != "" {
		logrus.WithField("path", path).Debug("loaded config")
	}

	switch outputFormat {
	case formatText, formatJSON:
	default:
		return fmt.Errorf("invalid format %q: must be %s or %s", outputFormat, formatText, formatJSON)
	}
	return nil
}

// Execute runs the root command and reports the error, if any, on stderr
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
