// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render prints summaries for the terminal: a master list of
// keyword sections and the detail panel of the selected keyword. JSON and
// YAML output of the raw summary are also provided for scripting.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/projectx/internal/session"
	"github.com/pdiddy/projectx/pkg/types"
)

// palette cycles per keyword index, like the chip colours in the summary view.
var palette = []color.Attribute{color.BgYellow, color.BgMagenta, color.BgCyan}

// Renderer writes summaries to w.
type Renderer struct {
	w     io.Writer
	color bool
}

// New returns a Renderer. When useColor is false all output is plain text
// regardless of terminal detection.
func New(w io.Writer, useColor bool) *Renderer {
	return &Renderer{w: w, color: useColor}
}

func (r *Renderer) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Summary writes the master view: title, topic, keyword chips and one
// numbered gist line per keyword with the keyword emphasised.
func (r *Renderer) Summary(s types.Summary) error {
	bold := r.style(color.Bold)
	faint := r.style(color.Faint)

	title := s.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintln(r.w, bold.Sprint(title))
	if topic := s.TopicOrEmpty(); topic != "" {
		fmt.Fprintln(r.w, faint.Sprint(topic))
	}
	fmt.Fprintln(r.w, strings.Repeat("-", 40))

	if len(s.Keywords) > 0 {
		chips := make([]string, len(s.Keywords))
		for i, kw := range s.Keywords {
			chips[i] = r.style(palette[i%len(palette)]).Sprint("# " + kw)
		}
		fmt.Fprintln(r.w, strings.Join(chips, "  "))
		fmt.Fprintln(r.w)
	}

	for i, line := range s.Lines {
		kw := ""
		if i < len(s.Keywords) {
			kw = s.Keywords[i]
		}
		fmt.Fprintf(r.w, "[%d] %s\n", i+1, r.emphasise(line, kw, i))
	}
	return nil
}

// Panel writes the detail view for one keyword: its quoted gist and details.
func (r *Renderer) Panel(p session.Panel) error {
	bold := r.style(color.Bold)
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%s\n", bold.Sprintf("%q", p.Line))
	for _, d := range p.Details {
		fmt.Fprintf(r.w, "  - %s\n", d)
	}
	return nil
}

// Error writes a one-line failure message.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.w, r.style(color.FgRed).Sprint(msg))
}

// emphasise highlights the first occurrence of keyword within line.
func (r *Renderer) emphasise(line, keyword string, index int) string {
	sp, ok := session.Highlight(line, keyword)
	if !ok {
		return line
	}
	hl := r.style(color.Bold, palette[index%len(palette)])
	return line[:sp.Start] + hl.Sprint(line[sp.Start:sp.End]) + line[sp.End:]
}

// JSON writes s as indented JSON.
func JSON(w io.Writer, s any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// YAML writes s as YAML.
func YAML(w io.Writer, s any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// Write prints s in the requested format. Text output includes the open
// panel when one is given.
func Write(w io.Writer, format types.OutputFormat, s types.Summary, useColor bool, open *session.Panel) error {
	switch format {
	case types.OutputJSON:
		return JSON(w, s)
	case types.OutputYAML:
		return YAML(w, s)
	case types.OutputText, "":
		r := New(w, useColor)
		if err := r.Summary(s); err != nil {
			return err
		}
		if open != nil {
			return r.Panel(*open)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}
