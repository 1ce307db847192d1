package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/index"
	"github.com/bastiangx/echoes/pkg/palette"
	"github.com/bastiangx/echoes/pkg/present"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const wordWidth = 24

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	obsoleteStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// ColorEnabled reports whether colours should be used when writing to f.
func ColorEnabled(want bool, f *os.File) bool {
	if !want || f == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Terminal is a Surface that prints the frequency list and the highlighted text.
// It keeps the surface state in a present.Recorder and redraws on demand.
type Terminal struct {
	mu          sync.Mutex
	state       *present.Recorder
	out         io.Writer
	color       bool
	showOverlay bool
	limit       int
}

// NewTerminal creates a terminal surface writing to out.
func NewTerminal(out io.Writer, cfg config.CliConfig, color bool) *Terminal {
	return &Terminal{
		state:       present.NewRecorder(),
		out:         out,
		color:       color,
		showOverlay: cfg.ShowOverlay,
		limit:       cfg.ListLimit,
	}
}

func (t *Terminal) UpsertItem(item present.Item)          { t.state.UpsertItem(item) }
func (t *Terminal) MarkObsolete(word string)              { t.state.MarkObsolete(word) }
func (t *Terminal) SetOverlay(segments []present.Segment) { t.state.SetOverlay(segments) }
func (t *Terminal) SyncScroll(offset int)                 { t.state.SyncScroll(offset) }
func (t *Terminal) SetListHeight(height float64)          { t.state.SetListHeight(height) }

// PurgeObsolete drops obsolete rows and redraws the list, since it runs on its own
// once the purge delay has passed.
func (t *Terminal) PurgeObsolete() {
	t.state.PurgeObsolete()
	t.write(t.RenderList())
}

// Print writes the list and, when enabled, the highlighted text.
func (t *Terminal) Print() {
	t.write(t.Render())
}

// Printf writes a formatted line.
func (t *Terminal) Printf(format string, args ...any) {
	t.write(fmt.Sprintf(format, args...))
}

// Rows returns what the list currently shows.
func (t *Terminal) Rows() []present.Row {
	return t.state.Rows()
}

// ListHeight returns the list height of the last pass in layout units.
func (t *Terminal) ListHeight() float64 {
	return t.state.ListHeight()
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	io.WriteString(t.out, s)
}

// Render returns the list followed by the overlay.
func (t *Terminal) Render() string {
	if !t.showOverlay {
		return t.RenderList()
	}
	return t.RenderList() + "\n" + t.RenderOverlay()
}

// RenderList formats the frequency list, live rows first.
func (t *Terminal) RenderList() string {
	rows := t.state.Rows()
	live := 0
	for _, row := range rows {
		if !row.Obsolete {
			live++
		}
	}

	var sb strings.Builder
	sb.WriteString(t.style(headerStyle, fmt.Sprintf("Repeated words: %d", live)))
	sb.WriteString("\n")
	if len(rows) == 0 {
		sb.WriteString(t.style(dimStyle, "  (none)"))
		sb.WriteString("\n")
		return sb.String()
	}

	shown := rows
	if t.limit > 0 && len(rows) > t.limit {
		shown = rows[:t.limit]
	}
	for _, row := range shown {
		sb.WriteString(t.formatRow(row))
		sb.WriteString("\n")
	}
	if more := len(rows) - len(shown); more > 0 {
		sb.WriteString(t.style(dimStyle, fmt.Sprintf("  ... and %s more", utils.FormatWithCommas(more))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Terminal) formatRow(row present.Row) string {
	word := fmt.Sprintf("%-*s", wordWidth, utils.Truncate(row.Word, wordWidth))
	count := utils.FormatWithCommas(row.Count)

	switch {
	case row.Obsolete:
		return fmt.Sprintf("   - %s %6s", t.style(obsoleteStyle, word), count)
	case row.Hidden:
		return fmt.Sprintf("%3d. %s %6s  %s", row.Rank+1, word, count, t.style(dimStyle, "(hidden)"))
	default:
		return fmt.Sprintf("%3d. %s %6s", row.Rank+1, t.style(palette.HexStyle(row.Hex), word), count)
	}
}

// RenderOverlay formats the text with every repeated word highlighted. Without
// colours, marks are bracketed instead.
func (t *Terminal) RenderOverlay() string {
	var sb strings.Builder
	for _, seg := range t.state.Overlay() {
		switch {
		case !seg.Mark || seg.Hidden:
			sb.WriteString(seg.Text)
		case t.color:
			sb.WriteString(palette.HexStyle(seg.Hex).Render(seg.Text))
		default:
			sb.WriteString("[" + seg.Text + "]")
		}
	}
	return sb.String()
}

// RenderWords formats tracked entries with their current colour.
func (t *Terminal) RenderWords(entries []index.Entry, tracked int, hidden func(string) bool) string {
	if len(entries) == 0 {
		return t.style(dimStyle, "No tracked words")
	}
	var sb strings.Builder
	for _, e := range entries {
		color := palette.For(e.Rank, tracked)
		word := fmt.Sprintf("%-*s", wordWidth, utils.Truncate(e.Word, wordWidth))
		if !hidden(e.Word) {
			word = t.style(color.Style(), word)
		}
		fmt.Fprintf(&sb, "%3d. %s %6s  %s\n", e.Rank+1, word, utils.FormatWithCommas(e.Count()), color.CSS())
	}
	return sb.String()
}

func (t *Terminal) style(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}
