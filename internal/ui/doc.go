// Package ui provides the styled building blocks used by sysdash's
// non-interactive commands: colors, status symbols, a one-line spinner and
// a plain table renderer.
//
// The full-screen dashboard lives in internal/monitor and has its own
// styles; this package is for line-oriented output such as
// "sysdash snapshot" and "sysdash terminate".
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
//
//	s := ui.NewSpinner(os.Stderr, "Fetching metrics")
//	s.Start()
//	// ... do work ...
//	s.Success() // or s.Fail()
package ui
