// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/spf13/cobra"
)

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List registered protocols and their encode options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listProtocols(cmd.OutOrStdout(), protocol.Protocols())
	},
}

func init() {
	rootCmd.AddCommand(protocolsCmd)
}

type protocolInfo struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Repeats     int               `json:"repeats"`
	MinRawLen   int               `json:"min_raw_len"`
	MaxRawLen   int               `json:"max_raw_len"`
	MinGap      uint32            `json:"min_gap"`
	MaxGap      uint32            `json:"max_gap"`
	Options     []protocol.Option `json:"options"`
}

func listProtocols(out io.Writer, protocols []protocol.Protocol) error {
	if outputFormat == formatJSON {
		infos := make([]protocolInfo, len(protocols))
		for i, p := range protocols {
			d := p.Detection()
			infos[i] = protocolInfo{
				ID:          p.ID(),
				Description: p.Description(),
				Repeats:     p.Repeats(),
				MinRawLen:   d.MinRawLen,
				MaxRawLen:   d.MaxRawLen,
				MinGap:      d.MinGap,
				MaxGap:      d.MaxGap,
				Options:     p.Options(),
			}
		}
		return writeJSON(out, infos)
	}

	for _, p := range protocols {
		d := p.Detection()
		fmt.Fprintf(out, "%s - %s\n", p.ID(), p.Description())
		fmt.Fprintf(out, "  pulses: %d-%d, footer: %d-%d us, repeats: %d\n",
			d.MinRawLen, d.MaxRawLen, d.MinGap, d.MaxGap, p.Repeats())
		for _, o := range p.Options() {
			arg := ""
			if o.HasValue {
				arg = " value"
			}
			fmt.Fprintf(out, "  -%s --%s%s\t%s\n", o.Short, o.Long, arg, o.Help)
		}
	}
	return nil
}
