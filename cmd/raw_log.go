// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/Thermoquad/rfstat/pkg/pulsebridge"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rawLogRecord string

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display bridge packets and decoded captures",
	Long: `Continuously decode and display pulse bridge packets as they arrive.

Each packet is shown with timestamp, message type and payload. CAPTURE
packets are also run through every registered protocol and the decoded
command is printed. With --format json only captures are printed, one JSON
object per line.

With --record, every capture is appended to a SQLite journal that can be
re-decoded later with 'rfstat replay'.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().StringVar(&rawLogRecord, "record", "", "Append captures to this SQLite journal")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	rec, err := openRecorder(rawLogRecord)
	if err != nil {
		return err
	}
	defer rec.Close()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return connectionError(err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if outputFormat == formatText {
		fmt.Fprintf(out, "rfstat - Raw Packet Log\n")
		fmt.Fprintf(out, "Connection: %s\n", connInfo)
		fmt.Fprintf(out, "Press Ctrl+C to exit\n\n")
	}

	reader := newBridgeReader(conn)
	stats := pulsebridge.NewStatistics()

	for {
		select {
		case <-ctx.Done():
			if outputFormat == formatText {
				fmt.Fprintf(out, "\n%s", stats.String())
			}
			return nil

		case err := <-reader.readErr:
			logrus.WithError(err).Warn("connection lost")
			if outputFormat == formatText {
				fmt.Fprintf(out, "\n%s", stats.String())
			}
			return connectionError(err)

		case ev := <-reader.events:
			if ev.err != nil {
				stats.Update(nil, ev.err, nil)
				if outputFormat == formatText {
					fmt.Fprintf(out, "[ERROR] %v\n", ev.err)
				}
				continue
			}
			stats.Update(ev.packet, nil, pulsebridge.ValidatePacket(ev.packet))
			if err := logPacket(ctx, out, rec, stats, ev.packet); err != nil {
				return err
			}
		}
	}
}

func logPacket(ctx context.Context, out io.Writer, rec *recorder, stats *pulsebridge.Statistics, p *pulsebridge.Packet) error {
	if outputFormat == formatText {
		fmt.Fprint(out, pulsebridge.FormatPacket(p))
	}

	c, ok := decodeCapture(p)
	if !ok {
		return nil
	}
	stats.RecordCapture(c.decoded())
	rec.record(ctx, c)

	if outputFormat == formatJSON {
		entry := map[string]any{
			"received_at": c.receivedAt,
			"pulses":      c.pulses,
			"protocol":    nil,
		}
		if c.decoded() {
			entry["protocol"] = c.result.Protocol
			entry["message"] = c.result.Fields
		}
		return writeJSON(out, entry)
	}

	if c.decoded() {
		fmt.Fprintf(out, "  => %s\n", formatResult(c.result))
	} else {
		fmt.Fprintf(out, "  => no protocol matched\n")
		logrus.WithError(c.err).Debug("capture not decoded")
	}
	return nil
}
