package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

type column struct {
	header string
	data   []string
}

// group is a finalized run of columns under an optional name.
type group struct {
	name  string
	count int
}

// groupLayout is a group's placement during rendering: which columns it
// spans and its display width, which may exceed the natural column widths
// when the group name is wider.
type groupLayout struct {
	name     string
	from, to int
	span     int
}

// Table builds aligned tabular output with optional named column groups.
// Columns are added with Column, organized under groups started by Group.
// Headers are left-justified, cells right-justified; widths use Unicode
// display width so emoji cells line up.
type Table struct {
	columns []column
	groups  []group

	// Columns from groupStart onward belong to the in-progress group
	// (groupName may be empty for ungrouped leading columns).
	groupStart int
	groupName  string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Column appends a column with the given header and rows.
func (t *Table) Column(header string, data []string) *Table {
	t.columns = append(t.columns, column{header: header, data: data})
	return t
}

// Group starts a new named group; subsequent columns belong to it until the
// next Group call.
func (t *Table) Group(name string) *Table {
	if count := len(t.columns) - t.groupStart; count > 0 {
		t.groups = append(t.groups, group{name: t.groupName, count: count})
	}
	t.groupStart = len(t.columns)
	t.groupName = name
	return t
}

// allGroups returns all groups, including the trailing unclosed one.
func (t *Table) allGroups() []group {
	gs := t.groups
	if trailing := len(t.columns) - t.groupStart; trailing > 0 {
		gs = append(gs[:len(gs):len(gs)], group{name: t.groupName, count: trailing})
	}
	return gs
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		w := runewidth.StringWidth(col.header)
		for _, v := range col.data {
			if dw := runewidth.StringWidth(v); dw > w {
				w = dw
			}
		}
		widths[i] = w
	}
	return widths
}

func (t *Table) groupLayouts(widths []int, expandForNames bool) []groupLayout {
	var layouts []groupLayout
	col := 0
	for _, g := range t.allGroups() {
		from, to := col, col+g.count
		col = to
		span := g.count - 1
		for _, w := range widths[from:to] {
			span += w
		}
		if expandForNames {
			if nw := runewidth.StringWidth(g.name); nw > span {
				span = nw
			}
		}
		layouts = append(layouts, groupLayout{name: g.name, from: from, to: to, span: span})
	}
	return layouts
}

// formatRow renders one output line by formatting each column's cell,
// joining cells within a group, and padding each group to its span.
func (t *Table) formatRow(layouts []groupLayout, widths []int, formatCell func(col column, width int) string) string {
	parts := make([]string, len(layouts))
	for i, g := range layouts {
		cells := make([]string, 0, g.to-g.from)
		for c := g.from; c < g.to; c++ {
			cells = append(cells, formatCell(t.columns[c], widths[c]))
		}
		parts[i] = ljust(strings.Join(cells, " "), g.span)
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

// Render writes the formatted table to w.
func (t *Table) Render(w io.Writer) {
	if len(t.columns) == 0 {
		return
	}

	widths := t.columnWidths()
	hasNames := false
	for _, g := range t.allGroups() {
		if g.name != "" {
			hasNames = true
		}
	}
	layouts := t.groupLayouts(widths, hasNames)

	if hasNames {
		parts := make([]string, len(layouts))
		for i, g := range layouts {
			parts[i] = ljust(g.name, g.span)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " "), " "))
	}

	fmt.Fprintln(w, t.formatRow(layouts, widths, func(col column, width int) string {
		return ljust(col.header, width)
	}))

	for row := 0; row < len(t.columns[0].data); row++ {
		fmt.Fprintln(w, t.formatRow(layouts, widths, func(col column, width int) string {
			cell := "-"
			if row < len(col.data) {
				cell = col.data[row]
			}
			return rjust(cell, width)
		}))
	}
}

// Print writes the table to stdout.
func (t *Table) Print() {
	t.Render(os.Stdout)
}

func ljust(s string, width int) string {
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func rjust(s string, width int) string {
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}
