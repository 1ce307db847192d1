// Package tui is the live editing front end: an editor, a highlighted copy of its
// text kept at the same scroll position, and the frequency list.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/bastiangx/echoes/pkg/palette"
	"github.com/bastiangx/echoes/pkg/present"
	"github.com/bastiangx/echoes/pkg/tokenize"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type focus int

const (
	focusEditor focus = iota
	focusList
)

const (
	listWidth = 34
	// border, title and status line
	chromeHeight = 4
)

var (
	paneStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	activePaneStyle = paneStyle.BorderForeground(lipgloss.Color("75"))
	titleStyle      = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Faint(true)
	hiddenStyle     = lipgloss.NewStyle().Faint(true)
	obsoleteStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
)

// Model is the bubbletea model and the Surface its controller renders onto.
// Every method runs on the program's goroutine.
type Model struct {
	ctrl     *engine.Controller
	loop     *loopScheduler
	editor   textarea.Model
	overlay  viewport.Model
	state    *present.Recorder
	focus    focus
	selected int
	minLen   int
	scroll   int
	width    int
	height   int
}

// editorSource reads the text straight from the editor.
type editorSource struct {
	m *Model
}

func (s editorSource) Text() string           { return s.m.editor.Value() }
func (s editorSource) MinWordLength() int     { return s.m.minLen }
func (s editorSource) SetMinWordLength(n int) { s.m.minLen = tokenize.ClampLength(n) }

// New creates the model with text already in the editor. A nil sched delivers purges
// through the event loop once Bind has been called.
func New(cfg *config.Config, text string, sched engine.Scheduler) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	editor := textarea.New()
	editor.Placeholder = "Start typing..."
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Focus()

	m := &Model{
		loop:    &loopScheduler{},
		editor:  editor,
		overlay: viewport.New(40, 6),
		state:   present.NewRecorder(),
		minLen:  tokenize.ClampLength(cfg.Engine.MinWordLength),
	}
	if sched == nil {
		sched = m.loop
	}
	opts := engine.OptionsFrom(cfg)
	opts.Scheduler = sched
	// one terminal row per word
	opts.Layout = present.Layout{RowHeight: 1}
	m.ctrl = engine.New(editorSource{m: m}, m, opts)

	if text != "" {
		m.editor.SetValue(text)
	}
	m.ctrl.OnTextChanged()
	m.syncScroll()
	return m
}

// Bind routes due purges into the program.
func (m *Model) Bind(p *tea.Program) {
	m.loop.Bind(p.Send)
}

// Controller returns the controller behind the model.
func (m *Model) Controller() *engine.Controller {
	return m.ctrl
}

// Close drops pending purges.
func (m *Model) Close() {
	m.loop.Bind(nil)
	m.ctrl.Close()
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg.fn()
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.toggleFocus()
			return m, nil
		case "ctrl+l":
			m.editor.Reset()
			m.ctrl.OnTextChanged()
			m.syncScroll()
			return m, nil
		}
		if m.focus == focusList {
			m.handleListKey(msg)
			return m, nil
		}
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if m.editor.Value() != before {
		m.ctrl.OnTextChanged()
	}
	m.syncScroll()
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) {
	rows := m.liveRows()
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(rows)-1 {
			m.selected++
		}
	case " ", "space", "enter":
		if m.selected < len(rows) {
			row := rows[m.selected]
			m.ctrl.ToggleHidden(row.Word, !row.Hidden)
		}
	case "+", "=":
		m.ctrl.OnMinLengthChanged(m.minLen + 1)
	case "-", "_":
		m.ctrl.OnMinLengthChanged(m.minLen - 1)
	}
	m.clampSelection()
}

func (m *Model) toggleFocus() {
	if m.focus == focusEditor {
		m.focus = focusList
		m.editor.Blur()
		return
	}
	m.focus = focusEditor
	m.editor.Focus()
}

// syncScroll follows the editor's own scrolling, which keeps the cursor row inside
// the window counting soft wrapped rows, and mirrors the window start onto the overlay.
func (m *Model) syncScroll() {
	row := m.cursorRow()
	next := m.scroll
	if row < next {
		next = row
	}
	if h := m.editor.Height(); h > 0 && row >= next+h {
		next = row - h + 1
	}
	if next != m.scroll {
		m.scroll = next
		m.ctrl.SyncScroll(next)
	}
}

// cursorRow returns the visual row of the cursor.
func (m *Model) cursorRow() int {
	lines := strings.Split(m.editor.Value(), "\n")
	row := m.editor.LineInfo().RowOffset
	for i := 0; i < m.editor.Line() && i < len(lines); i++ {
		row += rowCount(lines[i], m.editor.Width())
	}
	return row
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	paneWidth := max((width-listWidth-6)/2, 10)
	bodyHeight := max(height-chromeHeight, 3)

	m.editor.SetWidth(paneWidth)
	m.editor.SetHeight(bodyHeight)
	m.overlay.Width = paneWidth
	m.overlay.Height = bodyHeight
	m.overlay.SetContent(m.renderOverlay(m.state.Overlay()))
	m.overlay.SetYOffset(m.scroll)
	m.syncScroll()
	log.Debugf("Resized to %dx%d, panes %dx%d", width, height, paneWidth, bodyHeight)
}

func (m *Model) UpsertItem(item present.Item) { m.state.UpsertItem(item) }
func (m *Model) MarkObsolete(word string)     { m.state.MarkObsolete(word) }

func (m *Model) PurgeObsolete() {
	m.state.PurgeObsolete()
	m.clampSelection()
}

func (m *Model) SetOverlay(segments []present.Segment) {
	m.state.SetOverlay(segments)
	m.overlay.SetContent(m.renderOverlay(segments))
}

func (m *Model) SyncScroll(offset int) {
	m.state.SyncScroll(offset)
	m.overlay.SetYOffset(offset)
}

func (m *Model) SetListHeight(height float64) { m.state.SetListHeight(height) }

func (m *Model) liveRows() []present.Row {
	var live []present.Row
	for _, row := range m.state.Rows() {
		if !row.Obsolete {
			live = append(live, row)
		}
	}
	return live
}

func (m *Model) clampSelection() {
	if n := len(m.liveRows()); m.selected >= n {
		m.selected = max(n-1, 0)
	}
}

// renderOverlay draws the highlighted text broken into the editor's rows, so a
// scroll offset means the same thing in both panes.
func (m *Model) renderOverlay(segments []present.Segment) string {
	text := present.Text(segments)
	var sb strings.Builder
	seg, segStart := 0, 0
	for i, row := range editorRows(text, m.editor.Width()) {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for pos := row.start; pos < row.end; {
			for segStart+len(segments[seg].Text) <= pos {
				segStart += len(segments[seg].Text)
				seg++
			}
			s := segments[seg]
			end := min(row.end, segStart+len(s.Text))
			if s.Mark && !s.Hidden {
				sb.WriteString(palette.HexStyle(s.Hex).Render(text[pos:end]))
			} else {
				sb.WriteString(text[pos:end])
			}
			pos = end
		}
	}
	return sb.String()
}

func (m *Model) renderList() string {
	rows := m.state.Rows()
	if len(rows) == 0 {
		return statusStyle.Render("no repeated words")
	}

	// live rows take the list height of the last pass, rows fading out fill what is left
	body := max(m.height-chromeHeight, 3)
	live := min(int(m.state.ListHeight()), len(rows))
	height := min(body, live)
	start := 0
	if height > 0 && m.selected >= height {
		start = m.selected - height + 1
	}
	visible := append([]present.Row(nil), rows[start:start+height]...)
	if spare := body - height; spare > 0 {
		visible = append(visible, rows[live:min(live+spare, len(rows))]...)
	}

	var lines []string
	for i, row := range visible {
		word := fmt.Sprintf("%-*s", listWidth-12, utils.Truncate(row.Word, listWidth-12))
		marker := "  "
		switch {
		case row.Obsolete:
			word = obsoleteStyle.Render(word)
		case row.Hidden:
			word = hiddenStyle.Render(word)
		default:
			word = palette.HexStyle(row.Hex).Render(word)
		}
		if m.focus == focusList && start+i == m.selected && !row.Obsolete {
			marker = selectedStyle.Render("> ")
		}
		lines = append(lines, fmt.Sprintf("%s%s %5s", marker, word, utils.FormatWithCommas(row.Count)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) pane(title, body string, width int, active bool) string {
	style := paneStyle
	if active {
		style = activePaneStyle
	}
	return style.Width(width).Render(titleStyle.Render(title) + "\n" + body)
}

func (m *Model) View() string {
	live := int(m.state.ListHeight())
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.pane("Text", m.editor.View(), m.overlay.Width, m.focus == focusEditor),
		m.pane("Repeats", m.overlay.View(), m.overlay.Width, false),
		m.pane(fmt.Sprintf("Words (%d)", live), m.renderList(), listWidth, m.focus == focusList),
	)
	status := statusStyle.Render(fmt.Sprintf(
		"min %d | %s | tab focus | space hide | +/- min length | ctrl+l clear | esc quit",
		m.minLen, m.ctrl.Tokenizer().Mode()))
	return lipgloss.JoinVertical(lipgloss.Left, body, status)
}

// Run starts the editor on text and blocks until the user quits or ctx is done.
func Run(ctx context.Context, cfg *config.Config, text string) error {
	m := New(cfg, text, nil)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.Bind(p)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run editor: %w", err)
	}
	return nil
}
