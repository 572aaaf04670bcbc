package main

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/colorprofile"
)

// renderDiff returns a unified diff from old to updated, colored for w when
// w is a terminal that supports it.
func renderDiff(name, old, updated string, w io.Writer) string {
	diff := udiff.Unified("a/"+name, "b/"+name, old, updated)
	if diff == "" {
		return "No changes.\n"
	}
	return highlightDiff(diff, colorprofile.Detect(w, os.Environ()))
}

// highlightDiff colors a unified diff for the given color profile.
func highlightDiff(diff string, profile colorprofile.Profile) string {
	var formatterName string
	switch profile {
	case colorprofile.TrueColor:
		formatterName = "terminal16m"
	case colorprofile.ANSI256:
		formatterName = "terminal256"
	case colorprofile.ANSI:
		formatterName = "terminal"
	default:
		return diff
	}

	formatter := formatters.Get(formatterName)
	lexer := lexers.Get("diff")
	if formatter == nil || lexer == nil {
		return diff
	}

	style := styles.Get("catppuccin-mocha")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, diff)
	if err != nil {
		return diff
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return diff
	}
	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
