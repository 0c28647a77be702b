package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/typedesc/descriptor"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	dynamicStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	colSlot = iota
	colDescriptor
	colSize
	colAlign
	colModifiers
)

// layoutRows flattens a compiled layout, one row per slot, nested slots
// indented under their parent.
func layoutRows(name string, l *descriptor.Layout) [][]string {
	var rows [][]string
	l.Walk(func(n *descriptor.Layout, depth int) bool {
		slot := n.Name
		if depth == 0 {
			slot = name
		}
		size := strconv.FormatUint(uint64(n.Size), 10)
		if n.Dynamic {
			size = "dynamic"
		}
		var mods []string
		for _, m := range n.Modifiers {
			mods = append(mods, m.String())
		}
		rows = append(rows, []string{
			strings.Repeat("  ", depth) + slot,
			describeDesc(n.Desc),
			size,
			strconv.FormatUint(uint64(n.Align), 10),
			strings.Join(mods, ","),
		})
		return true
	})
	return rows
}

func describeDesc(d descriptor.Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	return d.String()
}

func layoutTable(name string, l *descriptor.Layout) string {
	rows := layoutRows(name, l)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(helpStyle).
		Headers("SLOT", "DESCRIPTOR", "SIZE", "ALIGN", "MODIFIERS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row < 0 || row >= len(rows):
				return cellStyle
			case col == colSize && rows[row][colSize] == "dynamic":
				return dynamicStyle
			case col == colDescriptor:
				return kindStyle
			}
			return cellStyle
		})
	return t.String()
}

func printLayout(w io.Writer, name string, l *descriptor.Layout) {
	fmt.Fprintln(w, titleStyle.Render(name))
	fmt.Fprintln(w, layoutTable(name, l))
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
}
