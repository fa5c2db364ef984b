// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/rfstat/internal/journal"
	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Re-decode every capture in a journal",
	Long: `Decode every capture recorded by 'rfstat raw_log --record' again with
the protocols in this build.

Captures whose decode differs from the journaled one are flagged, which makes
replay useful after protocol changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// replaySummary counts replay outcomes
type replaySummary struct {
	Total   int `json:"total"`
	Decoded int `json:"decoded"`
	Changed int `json:"changed"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	j, err := journal.Open(args[0])
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.List(cmd.Context())
	if err != nil {
		return err
	}
	logrus.WithField("captures", len(entries)).Debug("journal loaded")

	summary, err := replayEntries(cmd.OutOrStdout(), entries)
	if err != nil {
		return err
	}

	if outputFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"summary": summary})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d captures, %d decoded, %d changed\n", summary.Total, summary.Decoded, summary.Changed)
	return nil
}

func replayEntries(out io.Writer, entries []journal.Entry) (replaySummary, error) {
	var summary replaySummary
	for _, e := range entries {
		summary.Total++
		res, err := protocol.Decode(e.Pulses)
		decoded := err == nil
		if decoded {
			summary.Decoded++
		}
		changed := decoded != e.Decoded() || (decoded && res.Protocol != e.Protocol)
		if changed {
			summary.Changed++
		}

		if outputFormat == formatJSON {
			line := map[string]any{
				"id":          e.ID,
				"received_at": e.ReceivedAt,
				"protocol":    nil,
				"changed":     changed,
			}
			if decoded {
				line["protocol"] = res.Protocol
				line["message"] = res.Fields
			}
			if err := writeJSON(out, line); err != nil {
				return summary, err
			}
			continue
		}

		text := "no protocol matched"
		if decoded {
			text = formatResult(res)
		}
		marker := ""
		if changed {
			marker = " (changed)"
		}
		fmt.Fprintf(out, "[%s] %s%s\n", e.ReceivedAt.Format("2006-01-02 15:04:05.000"), text, marker)
	}
	return summary, nil
}
