// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/rfstat/pkg/pulsebridge"
	"github.com/spf13/cobra"
)

var (
	packetTestTimeout int
)

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test connection by waiting for a valid bridge packet",
	Long: `Wait for a valid pulse bridge packet on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any valid
bridge packet. It ignores invalid bytes and waits for a complete, valid
packet (passing CRC check).

Exit codes:
  0 - Packet received before timeout
  1 - Timeout reached without receiving a valid packet
  2 - Connection error`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a packet")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return connectionError(err)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rfstat - Packet Test\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Timeout: %d seconds\n", packetTestTimeout)
	fmt.Fprintf(out, "Waiting for valid bridge packet...\n\n")

	reader := newBridgeReader(conn)
	packet, err := reader.wait(time.Duration(packetTestTimeout)*time.Second, nil)
	switch {
	case errors.Is(err, ErrTimeout):
		fmt.Fprintf(cmd.ErrOrStderr(), "TIMEOUT: No valid packet received within %d seconds\n", packetTestTimeout)
		return &ExitError{Code: ExitFailure}
	case err != nil:
		return connectionError(fmt.Errorf("read error: %w", err))
	}

	if skipped := reader.skipped(); skipped > 0 {
		fmt.Fprintf(out, "(skipped %d invalid bytes before sync)\n", skipped)
	}
	fmt.Fprintf(out, "SUCCESS: Received valid packet\n")
	fmt.Fprintf(out, "  Type: %s (0x%02X)\n", pulsebridge.FormatMessageType(packet.Type()), packet.Type())
	fmt.Fprintf(out, "  Length: %d bytes\n", packet.Length())
	fmt.Fprintf(out, "  CRC: 0x%04X\n", packet.CRC())
	return nil
}
