package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/sjoeboo/peek/internal/ansi"
	"github.com/sjoeboo/peek/internal/config"
	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/logging"
	"github.com/sjoeboo/peek/internal/preview"
)

func handlePreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	channelName := fs.String("channel", "", "Channel whose first preview command is used")
	previewCmd := fs.String("preview", "", "Preview command, e.g. 'bat {}'")
	delimiter := fs.String("delimiter", "", "Field delimiter for {N} placeholders")
	line := fs.Int("line", 0, "Start output at this line of the preview")
	fs.Usage = func() {
		fmt.Println("Usage: peek preview [options] <entry>")
		fmt.Println()
		fmt.Println("Run the preview command for one entry and print its output.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  peek preview --preview 'head -n 20 {}' go.mod")
		fmt.Println("  peek preview --delimiter : --preview 'sed -n {1}p {0}' main.go:12")
		fmt.Println("  peek preview --line 40 go.sum")
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	defer logging.Shutdown()

	ch, err := resolveChannel(cfg, *channelName, *previewCmd, *delimiter, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	cmds := ch.PreviewCommands()
	if len(cmds) == 0 {
		fmt.Fprintf(os.Stderr, "Error: channel %q has no preview command\n", ch.Name)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := entry.New(fs.Arg(0)).WithLineNumber(*line)
	plain := !term.IsTerminal(int(os.Stdout.Fd()))
	if err := printPreview(ctx, os.Stdout, cfg, e, cmds[0], plain); err != nil {
		var pe *preview.PlaceholderError
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "Error: %v (delimiter %q)\n", err, cmds[0].Delimiter)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return exitError
	}
	return exitOK
}

// printPreview computes the preview of e and writes it to w, without
// styling when plain is set.
func printPreview(ctx context.Context, w io.Writer, cfg *config.Config, e entry.Entry, cmd entry.PreviewCommand, plain bool) error {
	p := preview.New(cfg.PreviewerOptions()...)
	defer p.Close()

	pv, err := p.Compute(ctx, e, cmd)
	if err != nil {
		return err
	}
	logging.ForComponent(logging.CompCLI).Debug("preview_computed",
		slog.String("entry", e.Name),
		slog.String("kind", pv.Content.Kind.String()))

	var out string
	switch pv.Content.Kind {
	case preview.KindAnsiText:
		if plain {
			out = ansi.Strip(pv.Content.Raw)
		} else {
			out = pv.Content.Text.Render()
		}
		out = fromLine(out, e.LineNumber)
	default:
		out = pv.Message()
	}
	if out == "" {
		return nil
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

// fromLine drops the lines of s before line n (1-based).
func fromLine(s string, n int) string {
	if n <= 1 {
		return s
	}
	lines := strings.SplitAfter(s, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.Join(lines[n-1:], "")
}
