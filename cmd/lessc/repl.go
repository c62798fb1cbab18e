package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sambeau/lessgo/pkg/less"
)

const replPrompt = "less> "

const replLogo = `
█░░ █▀▀ █▀ █▀
█▄▄ ██▄ ▄█ ▄█ `

// runREPL reads one line of LESS at a time, wraps it in a throwaway selector
// when it contains no '{', compiles it, and prints the resulting CSS. It keeps no
// state between lines: each line is a fresh compile, matching the
// single-compile-per-call contract the library exposes everywhere else.
func runREPL(out io.Writer, version string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".lessc_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprint(out, replLogo)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "Type a declaration body, or a full rule. Ctrl+D to quit.")

	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			return nil
		}
		line.AppendHistory(input)

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		source := trimmed
		if !strings.Contains(trimmed, "{") {
			source = ".repl { " + trimmed + " }"
		}

		css, err := less.Compile(source, less.Options{})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, css)
	}
}
