package api

import (
	"bytes"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md renders comment bodies when clients ask for HTML. Bodies are single
// annotation lines, but inline Markdown (emphasis, links, strikethrough) is
// common in them.
var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify))

// renderBodyHTML converts a comment body to HTML, returning empty string on
// failure (the raw body is always present alongside).
func renderBodyHTML(body string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		slog.Debug("render: markdown convert failed", slog.String("error", err.Error()))
		return ""
	}
	return buf.String()
}
