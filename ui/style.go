package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Tag is the fixed-width marker printed in front of every report line.
type Tag string

const (
	TagOK   Tag = "[OK  ]"
	TagName Tag = "[NAME]"
	TagMiss Tag = "[MISS]"
	TagHash Tag = "[HASH]"
	TagNew  Tag = "[NEW ]"
	TagGone Tag = "[GONE]"
	TagMove Tag = "[MOVE]"
	TagFail Tag = "[FAIL]"
	TagFull Tag = "[FULL]"
	TagPart Tag = "[PART]"
)

var tagColors = map[Tag]string{
	TagOK:   "#04B575",
	TagFull: "#04B575",
	TagName: "#E5C07B",
	TagPart: "#E5C07B",
	TagMove: "#61AFEF",
	TagNew:  "#61AFEF",
	TagMiss: "#ABB2BF",
	TagGone: "#E06C75",
	TagHash: "#E06C75",
	TagFail: "#E06C75",
}

var titleStyle = lipgloss.NewStyle().Bold(true)

// Colorize applies the given hex color to the text using lipgloss.
func Colorize(text string, hexColor string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return style.Render(text)
}

// Render returns the tag, colored when colorize is set.
func (t Tag) Render(colorize bool) string {
	if !colorize {
		return string(t)
	}
	color, ok := tagColors[t]
	if !ok {
		return string(t)
	}
	return Colorize(string(t), color)
}

// Title renders a section heading.
func Title(text string, colorize bool) string {
	if !colorize {
		return text
	}
	return titleStyle.Render(text)
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Size formats a byte count for display.
func Size(n int64) string {
	if n < 0 {
		return "?"
	}
	return humanize.IBytes(uint64(n))
}
