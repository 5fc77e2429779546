package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/nexidian/gocliselect"
)

func PrintTable(w io.Writer, headers []string, rows [][]string, footers []string) {
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = utf8.RuneCountInString(header)
	}
	measure := func(row []string) {
		for i, cell := range row {
			if i < len(colWidths) && utf8.RuneCountInString(cell) > colWidths[i] {
				colWidths[i] = utf8.RuneCountInString(cell)
			}
		}
	}
	for _, row := range rows {
		measure(row)
	}
	measure(footers)

	// header
	printRow(w, colWidths, headers)

	// rows
	for _, row := range rows {
		printRow(w, colWidths, row)
	}

	// footer
	if len(footers) > 0 {
		printRow(w, colWidths, footers)
	}
}

// pads by rune count so Cyrillic names line up
func printRow(w io.Writer, colWidths []int, cells []string) {
	var b strings.Builder
	for i, width := range colWidths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(cell)))
		b.WriteString("\t")
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " \t"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// isTerminal reports whether stdin is attached to a terminal.
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// menuChooser shows an arrow-key menu and returns the picked value, or ""
// when the menu was dismissed with Escape.
func menuChooser(prompt string, items []choice) (string, error) {
	menu := gocliselect.NewMenu(prompt)
	for _, item := range items {
		menu.AddItem(item.Label, item.Value)
	}
	v, err := menu.Display()
	if err != nil {
		return "", fmt.Errorf("menu: %w", err)
	}
	id, _ := v.(string)
	return id, nil
}
