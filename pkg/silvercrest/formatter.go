// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package silvercrest

import "fmt"

// FormatCommand formats a command into a human-readable line
func FormatCommand(cmd Command) string {
	result := fmt.Sprintf("%s id=%d (0x%05X) unit=%d state=%s", ProtocolID, cmd.ID, cmd.ID, cmd.Unit, cmd.State)
	if cmd.Bits != "" {
		result += " binary=" + cmd.Bits
	}
	return result
}

// FormatBits breaks a bit vector into its fields
func FormatBits(b Bits) string {
	return fmt.Sprintf("type=%04b seed=%04b payload=%04b %04b state=%04b unit=%d branch=%s",
		b.Type(), b.Seed(), b.Payload(1), b.Payload(2), b.StateCode(), b.Unit(), SelectBranch(b.Type()))
}
