// Package ui provides the small terminal components used outside the
// full-screen cluster: a line spinner for blocking steps, the serial port
// and baud pickers, and plain tables for listings.
//
// # Color Scheme
//
// Colors are ANSI codes so listings stay readable on any terminal:
//
//	ColorSuccess   (green)  - Port opened, device found
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Skipped or degraded
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - In-progress indicators
//
// # Spinner Usage
//
//	s := ui.NewSpinner(os.Stderr, "Opening /dev/ttyUSB0")
//	s.Start()
//	// ... open the port ...
//	s.Success() // or s.Fail()
//
// The full-screen cluster uses SpinnerFrames with the Bubbles spinner so
// both share the same glyphs.
package ui
