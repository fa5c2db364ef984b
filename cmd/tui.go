// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/rfstat/pkg/pulsebridge"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	pingIntervalSeconds = 5
	maxCommandRows      = 200
)

// Event log entry
type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// TUI model
type model struct {
	connInfo      string
	connMgr       *connectionManager
	recorder      *recorder
	stats         *pulsebridge.Statistics
	commands      table.Model
	rows          []table.Row
	eventLog      []logEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int64
	bridgeUptime  uint64
	hasUptime     bool
	connLost      bool
	width         int
	height        int
	quitting      bool
	title         cases.Caser
}

// Messages
type tickMsg time.Time
type pingTickMsg time.Time
type batchMsg struct {
	events []packetEvent
	sync   *syncMsg
}
type syncMsg struct {
	invalidBytes int64
}
type connectionLostMsg struct {
	err error
}
type reconnectedMsg struct {
	connInfo string
}

// formatUptime formats uptime in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	parts := []string{}
	for _, u := range []struct {
		n    uint64
		name string
	}{
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
	} {
		switch {
		case u.n == 1:
			parts = append(parts, "1 "+u.name)
		case u.n > 1:
			parts = append(parts, fmt.Sprintf("%d %ss", u.n, u.name))
		}
	}
	if seconds > 0 || len(parts) == 0 {
		if seconds == 1 {
			parts = append(parts, "1 second")
		} else {
			parts = append(parts, fmt.Sprintf("%d seconds", seconds))
		}
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func newCommandTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 12},
		{Title: "Protocol", Width: 16},
		{Title: "ID", Width: 10},
		{Title: "Unit", Width: 5},
		{Title: "State", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(connInfo string, cm *connectionManager, rec *recorder) model {
	return model{
		connInfo:      connInfo,
		connMgr:       cm,
		recorder:      rec,
		stats:         pulsebridge.NewStatistics(),
		commands:      newCommandTable(),
		eventLog:      make([]logEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
		title:         cases.Title(language.English),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		pingTickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func pingTickCmd() tea.Cmd {
	return tea.Tick(pingIntervalSeconds*time.Second, func(t time.Time) tea.Msg {
		return pingTickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		tableHeight := m.height - 22
		if tableHeight < 5 {
			tableHeight = 5
		}
		m.commands.SetHeight(tableHeight)

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case pingTickMsg:
		if m.connMgr != nil && !m.connLost {
			if err := send(m.connMgr.getConn(), pulsebridge.NewPingRequest()); err != nil {
				m.addLogEntry(fmt.Sprintf("PING failed: %v", err), true)
			}
		}
		return m, pingTickCmd()

	case connectionLostMsg:
		m.connLost = true
		m.synchronized = false
		m.addLogEntry(fmt.Sprintf("Connection lost: %v", msg.err), true)
		return m, nil

	case reconnectedMsg:
		m.connLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected: "+msg.connInfo, false)
		return m, nil

	case batchMsg:
		if msg.sync != nil {
			m.synchronized = true
			m.invalidBytes = msg.sync.invalidBytes
			if msg.sync.invalidBytes > 0 {
				m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.sync.invalidBytes), false)
			} else {
				m.addLogEntry("Synchronized", false)
			}
		}
		for _, ev := range msg.events {
			m.handleEvent(ev)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.commands, cmd = m.commands.Update(msg)
	return m, cmd
}

func (m *model) handleEvent(ev packetEvent) {
	if ev.err != nil {
		m.stats.Update(nil, ev.err, nil)
		m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", ev.err), true)
		return
	}

	packet := ev.packet
	validationErrors := pulsebridge.ValidatePacket(packet)
	m.stats.Update(packet, nil, validationErrors)
	msgType := pulsebridge.FormatMessageType(packet.Type())
	for _, err := range validationErrors {
		m.addLogEntry(fmt.Sprintf("%s: %s", msgType, err.Message), true)
	}

	switch packet.Type() {
	case pulsebridge.MsgPingResponse:
		if uptime, ok := packet.Uptime(); ok {
			m.bridgeUptime = uptime
			m.hasUptime = true
		}

	case pulsebridge.MsgError:
		if code, text, ok := packet.BridgeError(); ok {
			m.addLogEntry(fmt.Sprintf("Bridge error %s: %s", code, text), true)
		}

	case pulsebridge.MsgCapture:
		c, ok := decodeCapture(packet)
		if !ok {
			return
		}
		m.stats.RecordCapture(c.decoded())
		if m.recorder != nil {
			m.recorder.record(context.Background(), c)
		}
		if !c.decoded() {
			m.addLogEntry(fmt.Sprintf("Capture of %d pulses not decoded", len(c.pulses)), false)
			return
		}
		m.addRow(c)
	}
}

func (m *model) addRow(c capture) {
	field := func(key string) string {
		v, ok := c.result.Fields[key]
		if !ok {
			return "-"
		}
		return fmt.Sprint(v)
	}
	state := field("state")
	if state != "-" {
		state = m.title.String(state)
	}

	m.rows = append(m.rows, table.Row{
		c.receivedAt.Format("15:04:05.000"),
		c.result.Protocol,
		field("id"),
		field("unit"),
		state,
	})
	if len(m.rows) > maxCommandRows {
		m.rows = m.rows[len(m.rows)-maxCommandRows:]
	}
	m.commands.SetRows(m.rows)
	m.commands.GotoBottom()
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("RFSTAT - MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	// Link status
	switch {
	case m.connLost:
		s.WriteString(errorStyle.Render("✗ Connection lost, reconnecting..."))
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
	default:
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
	}
	if m.hasUptime {
		s.WriteString(headerStyle.Render("   Bridge uptime: "))
		s.WriteString(statsValueStyle.Render(formatUptime(m.bridgeUptime)))
	}
	s.WriteString("\n\n")

	// Statistics
	m.stats.CalculateRates()
	st := m.stats
	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Packets:"), statsValueStyle.Render(fmt.Sprintf("%d", st.TotalPackets)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d", st.ValidPackets)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d", st.ErrorCount())),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Captures:"), statsValueStyle.Render(fmt.Sprintf("%d", st.Captures)),
		statsLabelStyle.Render("Decoded:"), statsValueStyle.Render(fmt.Sprintf("%d", st.DecodedCaptures)),
		statsLabelStyle.Render("Rejected:"), warningStyle.Render(fmt.Sprintf("%d", st.RejectedCaptures)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Packet Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f pkts/s", st.PacketRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if st.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
		}(),
	))
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Decoded commands
	s.WriteString(statsLabelStyle.Render("Decoded Commands:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(m.commands.View()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := 6
	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
