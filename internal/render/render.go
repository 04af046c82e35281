// Package render prints a legend as an indented tree.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/zjrosen/legend/internal/config"
	"github.com/zjrosen/legend/internal/query"
)

const (
	iconGroup   = "▾"
	iconVisible = "●"
	iconHidden  = "○"
	ellipsis    = "…"
	rootLabel   = "(root)"
)

// Options control the layout.
type Options struct {
	Width       int // 0 disables truncation
	Indent      int
	ShowHandles bool
	Color       bool
}

// OptionsFromConfig maps the render config section.
func OptionsFromConfig(c config.RenderConfig) Options {
	return Options{Width: c.Width, Indent: c.Indent, ShowHandles: c.ShowHandles, Color: c.Color}
}

// Renderer formats legend rows for one output.
type Renderer struct {
	opts   Options
	group  lipgloss.Style
	layer  lipgloss.Style
	hidden lipgloss.Style
	handle lipgloss.Style
	guide  lipgloss.Style
}

// New creates a renderer for out. Colors follow the terminal behind out and are
// dropped entirely when opts.Color is false.
func New(out io.Writer, opts Options) *Renderer {
	lr := lipgloss.NewRenderer(out)
	if !opts.Color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		opts:   opts,
		group:  lr.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}),
		layer:  lr.NewStyle(),
		hidden: lr.NewStyle().Faint(true).Strikethrough(true),
		handle: lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		guide:  lr.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"}),
	}
}

// Lines renders rows, which must be in depth-first display order with the root
// first, as produced by query.Rows.
func (r *Renderer) Lines(rows []query.Row) []string {
	handleWidth := 0
	if r.opts.ShowHandles {
		for _, row := range rows {
			handleWidth = max(handleWidth, runewidth.StringWidth(strconv.Itoa(row.Handle)))
		}
	}

	siblings := make(map[int]int, len(rows)) // group handle -> child count
	for _, row := range rows {
		if row.Kind == "group" {
			siblings[row.Handle] = row.Children
		}
	}

	// last[d] reports whether the open ancestor at depth d is the last child of its group.
	var last []bool
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		isLast := row.Position == siblings[row.Group]-1
		if row.Depth > 0 {
			last = append(last[:row.Depth-1], isLast)
		} else {
			last = last[:0]
		}

		var sb strings.Builder
		if r.opts.ShowHandles {
			sb.WriteString(r.handle.Render(runewidth.FillLeft(strconv.Itoa(row.Handle), handleWidth)))
			sb.WriteString(" ")
		}
		sb.WriteString(r.guide.Render(r.prefix(last)))
		sb.WriteString(r.label(row))

		line := sb.String()
		if r.opts.Width > 0 && ansi.StringWidth(line) > r.opts.Width {
			line = ansi.Truncate(line, r.opts.Width, ellipsis)
		}
		lines = append(lines, line)
	}
	return lines
}

// Fprint writes one line per row.
func (r *Renderer) Fprint(w io.Writer, rows []query.Row) error {
	for _, line := range r.Lines(rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) prefix(last []bool) string {
	if len(last) == 0 {
		return ""
	}
	indent := max(r.opts.Indent, 0)
	var sb strings.Builder
	for _, ancestorLast := range last[:len(last)-1] {
		if ancestorLast {
			sb.WriteString(strings.Repeat(" ", indent+1))
		} else {
			sb.WriteString("│" + strings.Repeat(" ", indent))
		}
	}
	if last[len(last)-1] {
		sb.WriteString("└")
	} else {
		sb.WriteString("├")
	}
	sb.WriteString(strings.Repeat("─", indent))
	sb.WriteString(" ")
	return sb.String()
}

func (r *Renderer) label(row query.Row) string {
	name := row.Name
	if row.Depth == 0 && name == "" {
		name = rootLabel
	}
	switch {
	case row.Kind == "group":
		return iconGroup + " " + r.group.Render(name)
	case row.Visible:
		return iconVisible + " " + r.layer.Render(name)
	default:
		return iconHidden + " " + r.hidden.Render(name)
	}
}
