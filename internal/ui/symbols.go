package ui

// Status glyphs shared by the spinner and listings.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolProgress = "◐"
	SymbolComplete = "●"
	SymbolUSB      = "⏚"
)
