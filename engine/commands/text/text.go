// Package text provides text formatting utilities for CLI commands.
package text

import (
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Indentation is the standard indentation for CLI help text.
const Indentation = `  `

// LongDesc normalizes a command's long description: surrounding blank lines are dropped and
// each line is dedented.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trim().dedent().string
}

// Examples normalizes a command's examples to follow the conventions.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trim().dedent().indent().string
}

type normalizer struct {
	string
}

func (s normalizer) trim() normalizer {
	s.string = strings.TrimSpace(s.string)

	return s
}

func (s normalizer) dedent() normalizer {
	lines := strings.Split(s.string, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s.string = strings.Join(lines, "\n")

	return s
}

func (s normalizer) indent() normalizer {
	indentedLines := make([]string, 0, strings.Count(s.string, "\n")+1)
	for line := range strings.SplitSeq(s.string, "\n") {
		indentedLines = append(indentedLines, Indentation+line)
	}
	s.string = strings.Join(indentedLines, "\n")

	return s
}

// Field is a labelled value in command output.
type Field struct {
	Label string
	Value string
}

// WriteFields renders fields to w as a borderless two column table of "Label:" and value.
func WriteFields(w io.Writer, fields ...Field) {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Label + ":", f.Value})
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}
