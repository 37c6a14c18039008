// Package ui renders CLI output with optional ANSI colour.
package ui

import "fmt"

// ANSI256 colour codes.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // gray
	colorPending = 178 // amber
	colorDone    = 71  // green
	colorWarn    = 167 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent styles identifiers such as ticket IDs.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted styles secondary details such as timestamps.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderWarn styles warnings a ticket has received.
func RenderWarn(s string) string { return paint(colorWarn, s) }

// RenderState labels a ticket by whether it is still waiting for a counterparty.
func RenderState(pending bool) string {
	if pending {
		return paint(colorPending, "pending")
	}
	return paint(colorDone, "added")
}

// ForceNoColor disables colour output globally.
func ForceNoColor() {
	noColor = true
}

// SetColor enables or disables colour output globally.
func SetColor(enabled bool) {
	noColor = !enabled
}
