package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sjoeboo/peek/internal/config"
	"github.com/sjoeboo/peek/internal/logging"
	"github.com/sjoeboo/peek/internal/platform"
	"github.com/sjoeboo/peek/internal/preview"
	"github.com/sjoeboo/peek/internal/source"
	"github.com/sjoeboo/peek/internal/ui"
)

const Version = "0.1.0"

// Exit codes
const (
	exitOK       = 0
	exitError    = 1
	exitNoSelect = 130
)

// Column widths for the channels command
const (
	tableColName   = 12
	tableColSource = 44
)

func init() {
	lipgloss.SetColorProfile(colorProfile(os.Getenv))
}

// colorProfiles maps PEEK_COLOR values to a lipgloss profile.
var colorProfiles = map[string]termenv.Profile{
	"truecolor": termenv.TrueColor,
	"24bit":     termenv.TrueColor,
	"256":       termenv.ANSI256,
	"16":        termenv.ANSI,
	"none":      termenv.Ascii,
}

// colorProfile picks the color profile for the finder and for colored
// previews. PEEK_COLOR wins, then COLORTERM, then a "-direct" TERM.
// Anything else gets 256 colors.
func colorProfile(getenv func(string) string) termenv.Profile {
	if p, ok := colorProfiles[strings.ToLower(getenv("PEEK_COLOR"))]; ok {
		return p
	}
	switch getenv("COLORTERM") {
	case "truecolor", "24bit":
		return termenv.TrueColor
	}
	if strings.HasSuffix(getenv("TERM"), "-direct") {
		return termenv.TrueColor
	}
	return termenv.ANSI256
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("peek v%s (%s)\n", Version, platform.Detect())
			return exitOK
		case "help", "--help", "-h":
			printHelp(os.Stdout)
			return exitOK
		case "preview":
			return handlePreview(args[1:])
		case "channels":
			return handleChannels(args[1:])
		case "init":
			return handleInit(args[1:])
		}
	}
	return handleFinder(args)
}

// loadConfig reads the config file and starts logging as it asks.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	lc := logging.Config{
		Level:      cfg.Logs.Level,
		Format:     cfg.Logs.Format,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxBackups: cfg.Logs.MaxBackups,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
	}
	if cfg.Logs.Debug {
		if dir, err := config.LogDir(); err == nil {
			lc.LogDir = dir
			lc.Debug = true
		}
	}
	logging.Init(lc)
}

// resolveChannel picks the channel to run and applies command line
// overrides to it.
func resolveChannel(cfg *config.Config, name, previewCmd, delimiter, sourceCmd string) (config.Channel, error) {
	ch, err := cfg.Channel(name)
	if err != nil {
		return config.Channel{}, err
	}
	if previewCmd != "" {
		ch.Preview = []string{previewCmd}
	}
	if delimiter != "" {
		ch.Delimiter = delimiter
	}
	if sourceCmd != "" {
		ch.Source = sourceCmd
	}
	return ch, nil
}

func handleFinder(args []string) int {
	fs := flag.NewFlagSet("peek", flag.ExitOnError)
	channelName := fs.String("channel", "", "Channel to browse (default: first configured)")
	previewCmd := fs.String("preview", "", "Preview command, e.g. 'bat {}'")
	delimiter := fs.String("delimiter", "", "Field delimiter for {N} placeholders")
	sourceCmd := fs.String("source", "", "Command whose output lines become entries")
	icons := fs.Bool("icons", false, "Show file type icons")
	fs.Usage = func() { printHelp(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	defer logging.Shutdown()
	cliLog := logging.ForComponent(logging.CompCLI)

	ch, err := resolveChannel(cfg, *channelName, *previewCmd, *delimiter, *sourceCmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	ui.InitTheme(config.ResolveTheme(cfg.UI.Theme))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var srcOpts []source.Option
	if *icons {
		srcOpts = append(srcOpts, source.WithIcons())
	}
	piped := source.StdinIsPiped()
	var src *source.Source
	if piped && *sourceCmd == "" {
		src = source.FromReader(os.Stdin, srcOpts...)
	} else {
		src = source.FromCommand(ctx, cfg.Previewer.Shell, ch.Source, srcOpts...)
	}

	previewer := preview.New(cfg.PreviewerOptions()...)
	defer previewer.Close()

	model := ui.New(cfg, ch, src, previewer)
	if *previewCmd != "" {
		model.WithPinnedPreview()
	}
	if path, err := config.Path(); err == nil {
		if w, err := config.NewWatcher(path); err == nil {
			w.Start()
			defer w.Close()
			model.WithWatcher(w)
		} else {
			cliLog.Debug("config_watch_unavailable", slog.String("error", err.Error()))
		}
	}

	// The selection goes to stdout, so the finder draws on stderr.
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(os.Stderr)}
	if piped {
		opts = append(opts, tea.WithInputTTY())
	}
	cliLog.Info("finder_started", slog.String("channel", ch.Name), slog.Bool("stdin", piped))
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	if err := model.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	if err := src.Err(); err != nil {
		cliLog.Warn("source_incomplete", slog.String("error", err.Error()))
	}
	e, ok := model.Selected()
	if !ok {
		return exitNoSelect
	}
	fmt.Println(e.StdoutRepr())
	return exitOK
}

func handleChannels(args []string) int {
	fs := flag.NewFlagSet("channels", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println("Usage: peek channels")
		fmt.Println()
		fmt.Println("List the configured channels and their preview commands.")
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	printChannels(os.Stdout, cfg.AllChannels())
	return exitOK
}

func printChannels(w io.Writer, channels []config.Channel) {
	fmt.Fprintf(w, "%-*s %-*s %s\n", tableColName, "NAME", tableColSource, "SOURCE", "PREVIEW")
	for _, ch := range channels {
		fmt.Fprintf(w, "%-*s %-*s %s\n",
			tableColName, truncate(ch.Name, tableColName),
			tableColSource, truncate(ch.Source, tableColSource),
			strings.Join(ch.Preview, " | "))
	}
}

func handleInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println("Usage: peek init")
		fmt.Println()
		fmt.Println("Write an example config file if none exists.")
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	path, err := config.Path()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	written, err := config.WriteExample(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	if !written {
		fmt.Printf("Config already exists: %s\n", path)
		return exitOK
	}
	fmt.Printf("Wrote %s\n", path)
	return exitOK
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "peek v%s\n", Version)
	fmt.Fprintln(w, "Fuzzy finder with live previews")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: peek [options] | peek <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --channel <name>     Channel to browse")
	fmt.Fprintln(w, "  --preview <cmd>      Preview command ({} = entry, {N} = Nth field)")
	fmt.Fprintln(w, "  --delimiter <d>      Field delimiter for {N} (default: space)")
	fmt.Fprintln(w, "  --source <cmd>       Command producing entries (default: stdin or channel)")
	fmt.Fprintln(w, "  --icons              Show file type icons")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  (none)               Start the finder")
	fmt.Fprintln(w, "  preview <entry>      Print the preview of one entry")
	fmt.Fprintln(w, "  channels             List channels")
	fmt.Fprintln(w, "  init                 Write an example config")
	fmt.Fprintln(w, "  version              Show version")
	fmt.Fprintln(w, "  help                 Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  peek                                   # Browse files")
	fmt.Fprintln(w, "  git ls-files | peek --preview 'cat {}' # Browse stdin")
	fmt.Fprintln(w, "  rg -n . | peek --delimiter : --preview 'bat -H {1} {0}'")
	fmt.Fprintln(w, "  peek preview --preview 'head {}' go.mod")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  PEEK_CONFIG_DIR      Config directory (default: ~/.config/peek)")
	fmt.Fprintln(w, "  PEEK_COLOR           Color mode: truecolor, 256, 16, none")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keyboard shortcuts (in finder):")
	fmt.Fprintln(w, "  Up/Down, Ctrl+P/N    Move selection")
	fmt.Fprintln(w, "  Enter                Print selection and exit")
	fmt.Fprintln(w, "  Ctrl+F               Next preview command")
	fmt.Fprintln(w, "  PgUp/PgDn, Ctrl+U/D  Scroll preview")
	fmt.Fprintln(w, "  Ctrl+R               Recompute previews")
	fmt.Fprintln(w, "  Esc, Ctrl+C          Quit")
}

// truncate cuts s to max characters, ending in "..." when cut
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
