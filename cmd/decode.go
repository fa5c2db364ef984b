// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/Thermoquad/rfstat/pkg/silvercrest"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [durations...]",
	Short: "Decode a pulse capture offline",
	Long: `Decode a capture given as pulse durations in microseconds.

Durations may be separated by commas or whitespace, and are read from stdin
when no arguments are given. Every registered protocol is tried; the first
successful decode is printed.

Exit codes:
  0 - Capture decoded
  1 - No protocol matched`,
	Example: `  rfstat decode 550,1100,550,1100,...,7200
  rfstat encode --id 66469 --unit 2 --on | rfstat decode`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		input = string(data)
	}

	raw, err := protocol.ParsePulses(input)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return errors.New("no pulse durations given")
	}

	logrus.WithFields(logrus.Fields{
		"pulses": len(raw),
		"footer": raw[len(raw)-1],
	}).Debug("decoding capture")
	if len(raw) == silvercrest.RawLength {
		logrus.WithField("layout", silvercrest.FormatBits(silvercrest.PulsesToBits(raw))).Debug("silvercrest bit layout")
	}

	res, err := protocol.Decode(raw)
	if err != nil {
		if !errors.Is(err, protocol.ErrNoMatch) {
			return err
		}
		logrus.WithError(err).Debug("decode failed")
		if outputFormat == formatJSON {
			if err := writeJSON(cmd.OutOrStdout(), map[string]any{"protocol": nil}); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "no protocol matched")
		}
		return &ExitError{Code: ExitFailure}
	}

	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatResult(res))
	return nil
}
