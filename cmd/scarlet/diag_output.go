package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"scarlet/internal/diag"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	noteColor  = color.New(color.FgCyan)
)

// printBag renders a diagnostic bag, worst first. Returns true when the
// bag holds at least one error.
func printBag(out io.Writer, bag *diag.Bag) bool {
	if bag == nil {
		return false
	}
	bag.Sort()
	for _, d := range bag.Items() {
		var tag string
		switch d.Severity {
		case diag.SevError:
			tag = errorColor.Sprint("error")
		case diag.SevWarning:
			tag = warnColor.Sprint("warning")
		default:
			tag = noteColor.Sprint("note")
		}
		fmt.Fprintf(out, "%s %s: %s\n", tag, d.Code, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(out, "  %s: %s\n", noteColor.Sprint("note"), n.Msg)
		}
	}
	return bag.HasErrors()
}
