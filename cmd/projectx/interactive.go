// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/projectx/internal/render"
	"github.com/pdiddy/projectx/internal/session"
)

const browsePrompt = "keyword number to toggle, q to quit> "

// browse prints the loaded summary and any open panel, and then reads commands from in: a
// keyword number toggles that keyword's panel, q quits. Input ends the loop
// at EOF.
func browse(in io.Reader, out io.Writer, sess *session.Session, useColor bool) error {
	summary, ok := sess.Summary()
	if !ok {
		return session.ErrNoSummary
	}
	r := render.New(out, useColor)
	if err := r.Summary(summary); err != nil {
		return err
	}
	if p, ok := sess.OpenPanel(); ok {
		if err := r.Panel(p); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n"+browsePrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		cmd := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(cmd) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		n, err := strconv.Atoi(cmd)
		if err != nil {
			r.Error(fmt.Sprintf("Unknown command %q", cmd))
			continue
		}
		p, open, err := sess.Toggle(n - 1)
		if errors.Is(err, session.ErrPanelRange) {
			r.Error(fmt.Sprintf("No keyword %d (choose 1-%d)", n, summary.Sections()))
			continue
		}
		if err != nil {
			return err
		}
		if !open {
			fmt.Fprintf(out, "Closed %q\n", p.Keyword)
			continue
		}
		if err := r.Panel(p); err != nil {
			return err
		}
	}
}
