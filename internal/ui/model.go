// Package ui is the interactive finder: a query prompt, the filtered
// results and a preview pane for the selected entry.
package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sjoeboo/peek/internal/config"
	"github.com/sjoeboo/peek/internal/entry"
	"github.com/sjoeboo/peek/internal/logging"
	"github.com/sjoeboo/peek/internal/preview"
	"github.com/sjoeboo/peek/internal/source"
)

const (
	minWidth  = 20
	minHeight = 6
)

type tickMsg time.Time

type previewErrMsg struct{ err error }

type configChangedMsg struct{}

// Model is the bubbletea model of the finder.
type Model struct {
	cfg       *config.Config
	channel   config.Channel
	cycler    *config.Cycler
	src       *source.Source
	previewer *preview.Previewer
	rendered  *preview.RenderedCache
	watcher   *config.Watcher
	reload    func() (*config.Config, error)
	pinned    bool
	log       *slog.Logger

	input    textinput.Model
	viewport viewport.Model

	version uint64
	query   string
	results []entry.Entry
	total   int
	cursor  int
	offset  int

	current    *preview.Preview
	currentKey string

	width  int
	height int

	selected *entry.Entry
	err      error
}

// New creates the finder for ch, reading entries from src.
func New(cfg *config.Config, ch config.Channel, src *source.Source, p *preview.Previewer) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputTextStyle
	ti.Placeholder = "search " + ch.Name
	ti.Focus()

	return &Model{
		cfg:       cfg,
		channel:   ch,
		cycler:    config.NewCycler(ch),
		src:       src,
		previewer: p,
		rendered:  preview.NewRenderedCache(cfg.Previewer.RenderedCacheSize),
		reload:    config.Load,
		log:       logging.ForComponent(logging.CompUI),
		input:     ti,
		viewport:  viewport.New(0, 0),
		current:   preview.Empty(),
	}
}

// WithWatcher makes the finder re-read the config when w signals a change.
func (m *Model) WithWatcher(w *config.Watcher) *Model {
	m.watcher = w
	return m
}

// WithPinnedPreview keeps the channel's preview commands when the config
// is reloaded, for commands given on the command line.
func (m *Model) WithPinnedPreview() *Model {
	m.pinned = true
	return m
}

// Selected returns the entry chosen with enter, if any.
func (m *Model) Selected() (entry.Entry, bool) {
	if m.selected == nil {
		return entry.Entry{}, false
	}
	return *m.selected, true
}

// Err returns the error that ended the finder, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.tick(),
		listenForPreviewErrors(m.previewer),
		listenForConfigChanges(m.watcher),
	)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.UI.PollInterval.Duration, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// listenForPreviewErrors waits for a fatal preview error.
func listenForPreviewErrors(p *preview.Previewer) tea.Cmd {
	return func() tea.Msg {
		return previewErrMsg{err: <-p.Errors()}
	}
}

// listenForConfigChanges waits for the next config file change.
func listenForConfigChanges(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.ReloadChannel(); !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.rendered.Clear()
		m.currentKey = ""
		m.refreshPreview()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.refilter(false)
		m.refreshPreview()
		return m, m.tick()

	case previewErrMsg:
		m.log.Error("preview_failed", slog.String("error", msg.err.Error()))
		m.err = msg.err
		return m, tea.Quit

	case configChangedMsg:
		m.applyConfig()
		return m, listenForConfigChanges(m.watcher)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if e, ok := m.selectedEntry(); ok {
			m.selected = &e
		}
		return m, tea.Quit

	case "up", "ctrl+p", "ctrl+k":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+n", "ctrl+j":
		m.moveCursor(1)
		return m, nil

	case "ctrl+f":
		if cmd, ok := m.cycler.Next(); ok {
			m.log.Debug("preview_command_switched", slog.String("template", cmd.Template))
		}
		m.refreshPreview()
		return m, nil

	case "pgup", "ctrl+u":
		m.viewport.HalfPageUp()
		return m, nil

	case "pgdown", "ctrl+d":
		m.viewport.HalfPageDown()
		return m, nil

	case "ctrl+r":
		m.previewer.Invalidate()
		m.rendered.Clear()
		m.currentKey = ""
		m.refreshPreview()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.query {
		m.refilter(true)
		m.refreshPreview()
	}
	return m, cmd
}

// applyConfig re-reads the config after it changed on disk. Previews are
// recomputed because commands or their environment may differ now.
func (m *Model) applyConfig() {
	cfg, err := m.reload()
	if err != nil {
		m.log.Warn("config_reload_failed", slog.String("error", err.Error()))
		return
	}
	m.cfg.UI.Theme = cfg.UI.Theme
	if cfg.UI.PollInterval.Duration > 0 {
		m.cfg.UI.PollInterval = cfg.UI.PollInterval
	}
	InitTheme(config.ResolveTheme(cfg.UI.Theme))
	m.input.PromptStyle = promptStyle
	m.input.TextStyle = inputTextStyle

	if ch, err := cfg.Channel(m.channel.Name); err == nil && !m.pinned {
		m.channel.Preview = ch.Preview
		m.channel.Delimiter = ch.Delimiter
		m.cycler = config.NewCycler(m.channel)
	}

	m.previewer.Invalidate()
	m.rendered.Clear()
	m.currentKey = ""
	m.refreshPreview()
	m.log.Info("config_reloaded", slog.String("theme", cfg.UI.Theme))
}

// refilter re-runs the query when it or the source changed. A query change
// resets the cursor.
func (m *Model) refilter(queryChanged bool) {
	entries, version := m.src.Snapshot()
	if !queryChanged && version == m.version {
		return
	}
	prev, hadPrev := m.selectedEntry()

	m.version = version
	m.query = m.input.Value()
	m.total = len(entries)
	m.results = Filter(m.query, entries)

	if queryChanged || !hadPrev {
		m.cursor, m.offset = 0, 0
		return
	}
	// Keep the highlighted entry while new entries stream in.
	for i, e := range m.results {
		if e.Equal(prev) {
			m.cursor = i
			m.clampOffset()
			return
		}
	}
	m.cursor = min(m.cursor, max(0, len(m.results)-1))
	m.clampOffset()
}

func (m *Model) selectedEntry() (entry.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.results) {
		return entry.Entry{}, false
	}
	return m.results[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.results)-1, m.cursor+delta))
	m.clampOffset()
	m.refreshPreview()
}

func (m *Model) clampOffset() {
	rows := m.listRows()
	if rows <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// refreshPreview asks the previewer for the selected entry. The viewport
// content only changes when a different preview comes back, so scrolling
// survives polling.
func (m *Model) refreshPreview() {
	e, ok := m.selectedEntry()
	cmd, hasCmd := m.cycler.Current()
	if !ok || !hasCmd {
		m.setPreview(preview.Empty(), "", "")
		return
	}

	pv := m.previewer.Preview(e, cmd)
	key := preview.RenderedKey(e, cmd)
	if pv.Stale {
		// Stale previews are shown under their own key so the real one
		// replaces them once it lands.
		key = "stale:" + key
	}
	if pv == m.current && key == m.currentKey {
		return
	}

	var body string
	if pv.Stale {
		body = renderPreviewBody(pv, m.viewport.Width, m.viewport.Height)
	} else if cached, hit := m.rendered.Get(key); hit {
		body = cached
	} else {
		body = renderPreviewBody(pv, m.viewport.Width, m.viewport.Height)
		m.rendered.Insert(key, body)
	}

	if m.setPreview(pv, key, body) && !pv.Stale && e.LineNumber > 0 {
		m.viewport.SetYOffset(max(0, e.LineNumber-1-m.viewport.Height/2))
	}
}

// setPreview shows body and reports whether it belongs to a different
// preview than before, in which case scrolling starts over.
func (m *Model) setPreview(pv *preview.Preview, key, body string) bool {
	changed := key != m.currentKey
	m.current = pv
	m.currentKey = key
	m.viewport.SetContent(body)
	if changed {
		m.viewport.GotoTop()
	}
	return changed
}

func (m *Model) widths() (list, pane int) {
	list = m.width * 2 / 5
	return list, m.width - list
}

// listRows is the number of result rows that fit: everything but the
// prompt and help lines.
func (m *Model) listRows() int {
	return m.height - 2
}

func (m *Model) layout() {
	list, pane := m.widths()
	// Border on every side plus the title row.
	m.viewport.Width = max(0, pane-2)
	m.viewport.Height = max(0, m.height-3)
	m.input.Width = max(0, list-16)
	m.clampOffset()
}

func (m *Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		return "terminal too small"
	}
	listW, paneW := m.widths()

	counter := counterStyle.Render(fmt.Sprintf("%d/%d", len(m.results), m.total))
	if !m.src.Finished() {
		counter += counterStyle.Render(" (loading)")
	}
	promptW := max(0, listW-lipgloss.Width(counter)-1)
	prompt := lipgloss.NewStyle().Width(promptW).MaxWidth(promptW).Render(m.input.View())
	header := prompt + " " + counter

	rows := make([]string, 0, m.listRows())
	end := min(len(m.results), m.offset+m.listRows())
	for i := m.offset; i < end; i++ {
		rows = append(rows, renderEntryLine(m.results[i], i == m.cursor, listW))
	}
	for len(rows) < m.listRows() {
		rows = append(rows, "")
	}
	list := lipgloss.NewStyle().Width(listW).MaxWidth(listW).Render(strings.Join(rows, "\n"))

	panel := panelStyle
	if !m.current.Stale && m.current.Content.Kind == preview.KindAnsiText {
		panel = panelActiveStyle
	}
	title := renderTitle(m.current, m.viewport.Width)
	if cmd, ok := m.cycler.Current(); ok && m.cycler.Len() > 1 {
		if room := m.viewport.Width - lipgloss.Width(title) - 2; room > 3 {
			title += "  " + commandStyle.Render(shrink(cmd.Template, room))
		}
	}
	pane := panel.
		Width(max(0, paneW-2)).
		Height(max(0, m.height-2)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View()))

	left := lipgloss.JoinVertical(lipgloss.Left, header, list, renderHelpLine(listW))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, pane)
}
