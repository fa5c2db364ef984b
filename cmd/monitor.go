// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var monitorRecord string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive TUI showing decoded commands and link statistics",
	Long: `Monitor the pulse bridge in a terminal UI.

Features:
  - Table of decoded remote commands (arrow keys scroll)
  - Link and capture statistics with packet and error rates
  - Bridge uptime from periodic PING_REQUEST
  - Event log for framing errors, anomalies and undecoded captures
  - Automatic reconnection on connection loss

With --record, every capture is also appended to a SQLite journal.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVar(&monitorRecord, "record", "", "Append captures to this SQLite journal")
}

// connectionManager handles connection lifecycle and reconnection
type connectionManager struct {
	conn     Connection
	connInfo string
	mu       sync.RWMutex
	done     chan struct{}
}

func (cm *connectionManager) getConn() Connection {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conn
}

func (cm *connectionManager) setConn(conn Connection, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conn = conn
	cm.connInfo = connInfo
}

func runMonitor(cmd *cobra.Command, args []string) error {
	rec, err := openRecorder(monitorRecord)
	if err != nil {
		return err
	}
	defer rec.Close()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return connectionError(err)
	}

	cm := &connectionManager{
		conn:     conn,
		connInfo: connInfo,
		done:     make(chan struct{}),
	}

	// Log lines would tear the alt screen
	logrus.SetLevel(logrus.ErrorLevel)

	m := initialModel(connInfo, cm, rec)
	p := tea.NewProgram(m, tea.WithAltScreen())
	go cm.readerLoop(p)

	_, err = p.Run()
	close(cm.done)
	cm.getConn().Close()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// readerLoop forwards bridge events to the TUI and reconnects when the
// connection drops
func (cm *connectionManager) readerLoop(p *tea.Program) {
	for {
		err := forwardEvents(p, newBridgeReader(cm.getConn()), cm.done)
		if err == nil {
			return
		}
		p.Send(connectionLostMsg{err: err})

		if !cm.reconnect(p) {
			return
		}
	}
}

// reconnect retries OpenConnection with exponential backoff.
// Returns false if shutdown was requested.
func (cm *connectionManager) reconnect(p *tea.Program) bool {
	if conn := cm.getConn(); conn != nil {
		conn.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			cm.setConn(conn, connInfo)
			p.Send(reconnectedMsg{connInfo: connInfo})
			return true
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// forwardEvents drains the reader and sends batched updates to the TUI at a
// fixed rate so bursts of captures do not flood the program. It returns the
// read error that ended the connection, or nil on shutdown.
func forwardEvents(p *tea.Program, reader *bridgeReader, done <-chan struct{}) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	synchronized := false

	for {
		select {
		case <-done:
			return nil

		case err := <-reader.readErr:
			return err

		case <-ticker.C:
			var batch batchMsg
		drainLoop:
			for {
				select {
				case ev := <-reader.events:
					batch.events = append(batch.events, ev)
				default:
					break drainLoop
				}
			}

			if !synchronized {
				for _, ev := range batch.events {
					if ev.packet != nil {
						synchronized = true
						batch.sync = &syncMsg{invalidBytes: reader.skipped()}
						break
					}
				}
			}

			if batch.sync != nil || len(batch.events) > 0 {
				p.Send(batch)
			}
		}
	}
}
