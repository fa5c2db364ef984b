// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/rfstat/pkg/protocol"
	"github.com/Thermoquad/rfstat/pkg/pulsebridge"
	"github.com/Thermoquad/rfstat/pkg/silvercrest"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	encodeProtocol string
	encodeSend     bool
	encodeRepeats  int
	encodeTimeout  int
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Synthesize a pulse train for a remote command",
	Long: `Synthesize the pulse train that switches a unit on or off.

The pulses are printed on stdout as comma-separated microseconds, so they can
be piped into 'rfstat decode'. With --send the train is handed to the pulse
bridge, which transmits it --repeats times.

Encode options are provided by the selected protocol; see 'rfstat protocols'.

Exit codes:
  0 - Encoded (and transmitted with --send)
  1 - Invalid arguments, or the bridge reported a failure or timed out
  2 - Connection error`,
	Example: `  rfstat encode --id 66469 --unit 2 --on
  rfstat encode --id 66469 --unit 2 --off --send --port /dev/ttyUSB0`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVar(&encodeProtocol, "protocol", silvercrest.ProtocolID, "Protocol to encode with")
	encodeCmd.Flags().BoolVar(&encodeSend, "send", false, "Transmit the pulse train through the bridge")
	encodeCmd.Flags().IntVar(&encodeRepeats, "repeats", 0, "Transmit repeat count (0 uses the protocol default)")
	encodeCmd.Flags().IntVar(&encodeTimeout, "timeout", 5, "Timeout in seconds to wait for TRANSMIT_DONE")
}

// registerOptionFlags adds the encode options of every registered protocol.
// It runs after the persistent flags exist so their shorthands are known.
func registerOptionFlags() {
	for _, p := range protocol.Protocols() {
		addOptionFlags(encodeCmd.Flags(), rootCmd.PersistentFlags(), p.Options())
	}
}

// addOptionFlags defines one flag per protocol option. Shorthands already
// taken by the root command are dropped.
func addOptionFlags(fs, persistent *pflag.FlagSet, opts []protocol.Option) {
	for _, o := range opts {
		if fs.Lookup(o.Long) != nil {
			continue
		}
		short := o.Short
		if persistent.ShorthandLookup(short) != nil || fs.ShorthandLookup(short) != nil {
			short = ""
		}
		if o.HasValue {
			fs.StringP(o.Long, short, "", o.Help)
		} else {
			fs.BoolP(o.Long, short, false, o.Help)
		}
	}
}

// optionArgs collects the protocol options given on the command line
func optionArgs(fs *pflag.FlagSet, opts []protocol.Option) protocol.Args {
	args := protocol.Args{}
	for _, o := range opts {
		f := fs.Lookup(o.Long)
		if f == nil || !f.Changed {
			continue
		}
		if o.HasValue {
			args[o.Long] = f.Value.String()
		} else if f.Value.String() == "true" {
			args[o.Long] = ""
		}
	}
	return args
}

func runEncode(cmd *cobra.Command, args []string) error {
	p, err := protocol.Lookup(encodeProtocol)
	if err != nil {
		return err
	}

	raw, fields, err := p.Encode(optionArgs(cmd.Flags(), p.Options()))
	if err != nil {
		var consistency *silvercrest.ConsistencyError
		if errors.As(err, &consistency) {
			logrus.WithFields(logrus.Fields{
				"requested": consistency.Requested,
				"suggested": consistency.Suggested,
			}).Debug("identifier does not survive the cipher")
		}
		return err
	}

	repeats := encodeRepeats
	if repeats <= 0 {
		repeats = p.Repeats()
	}
	if repeats > pulsebridge.MaxRepeats {
		return fmt.Errorf("repeats %d exceeds bridge maximum %d", repeats, pulsebridge.MaxRepeats)
	}

	logrus.WithFields(logrus.Fields(fields)).WithField("protocol", p.ID()).Info("encoded")
	if outputFormat == formatJSON {
		err = writeJSON(cmd.OutOrStdout(), map[string]any{
			"protocol": p.ID(),
			"message":  fields,
			"pulses":   raw,
			"repeats":  repeats,
		})
	} else {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), protocol.FormatPulses(raw))
	}
	if err != nil || !encodeSend {
		return err
	}

	return transmit(raw, repeats, time.Duration(encodeTimeout)*time.Second)
}

// transmit sends a pulse train through the bridge and waits for the outcome
func transmit(raw []uint32, repeats int, timeout time.Duration) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return connectionError(err)
	}
	defer conn.Close()

	log := logrus.WithField("connection", connInfo)
	reader := newBridgeReader(conn)

	if err := send(conn, pulsebridge.NewTransmit(raw, uint8(repeats))); err != nil {
		return connectionError(fmt.Errorf("failed to send TRANSMIT: %w", err))
	}
	log.WithField("repeats", repeats).Debug("TRANSMIT sent")

	packet, err := reader.wait(timeout, isType(pulsebridge.MsgTransmitDone, pulsebridge.MsgError))
	switch {
	case errors.Is(err, ErrTimeout):
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("no TRANSMIT_DONE within %v", timeout)}
	case err != nil:
		return connectionError(err)
	}

	if code, msg, ok := packet.BridgeError(); ok {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("bridge error %s: %s", code, msg)}
	}
	sent, _ := packet.Repeats()
	log.WithField("sent", sent).Info("transmitted")
	return nil
}
