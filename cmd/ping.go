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
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the bridge with PING_REQUEST round trips",
	Long: `Send PING_REQUEST packets to the pulse bridge and wait for PING_RESPONSE.

Each response carries the bridge uptime. This verifies:
  - the connection is established
  - HTTP Basic authentication works (WebSocket)
  - packets flow in both directions

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	if pingCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return connectionError(err)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rfstat - Bridge Ping Test\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Fprintf(out, "Count: %d pings\n\n", pingCount)

	reader := newBridgeReader(conn)
	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Fprintf(out, "Ping %d/%d: ", i, pingCount)

		startTime := time.Now()
		if err := send(conn, pulsebridge.NewPingRequest()); err != nil {
			fmt.Fprintf(out, "SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		packet, err := reader.wait(time.Duration(pingTimeout)*time.Second, isType(pulsebridge.MsgPingResponse))
		switch {
		case errors.Is(err, ErrTimeout):
			fmt.Fprintf(out, "TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		case err != nil:
			fmt.Fprintf(out, "READ FAILED: %v\n", err)
			return connectionError(err)
		default:
			rtt := time.Since(startTime)
			uptime, _ := packet.Uptime()
			fmt.Fprintf(out, "PONG from bridge, uptime=%s, rtt=%v\n", formatUptime(uptime), rtt.Round(time.Millisecond))
			successCount++
		}

		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Fprintf(out, "\n--- Ping statistics ---\n")
	fmt.Fprintf(out, "%d pings sent, %d responses received, %.0f%% packet loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}
