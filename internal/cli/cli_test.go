package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/bastiangx/echoes/pkg/palette"
	"github.com/bastiangx/echoes/pkg/present"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queuedScheduler struct {
	tasks []func()
}

type noopTask struct{}

func (noopTask) Cancel() {}

func (s *queuedScheduler) After(_ time.Duration, fn func()) engine.Task {
	s.tasks = append(s.tasks, fn)
	return noopTask{}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Engine.MinWordLength = 1
	return cfg
}

func run(t *testing.T, input string) (*InputHandler, string, *queuedScheduler) {
	t.Helper()
	out := &bytes.Buffer{}
	sched := &queuedScheduler{}
	h := NewInputHandler(testConfig(), strings.NewReader(input), out, false, sched)
	require.NoError(t, h.Start())
	return h, out.String(), sched
}

func TestLinesAreAppended(t *testing.T) {
	h, out, _ := run(t, "the cat and the dog\nand the cat\n")

	assert.Contains(t, out, "Repeated words: 1")
	assert.Contains(t, out, "[the] cat and [the] dog")
	assert.Contains(t, out, "Repeated words: 3")
	assert.Contains(t, out, "[the] [cat] [and] [the] dog\n[and] [the] [cat]")
	assert.Equal(t, []string{"the", "cat", "and"}, h.Controller().Tracked().Words())
}

func TestBlankLinesAreSkipped(t *testing.T) {
	h, _, _ := run(t, "\n   \nword word\n")
	assert.Equal(t, 1, h.Controller().Passes())
}

func TestLastLineWithoutNewline(t *testing.T) {
	h, _, _ := run(t, "echo echo")
	assert.Equal(t, []string{"echo"}, h.Controller().Tracked().Words())
}

func TestWordsCommand(t *testing.T) {
	_, out, _ := run(t, "the cat and the dog and the cat\n:words c\n")
	assert.Contains(t, out, "  2. cat")
	assert.Contains(t, out, palette.For(1, 3).CSS())
	assert.NotContains(t, out, palette.For(2, 3).CSS())

	_, out, _ = run(t, ":words\n")
	assert.Contains(t, out, "No tracked words")
}

func TestHideAndShow(t *testing.T) {
	h, out, _ := run(t, "the cat and the dog and the cat\n:hide THE\n")
	assert.True(t, h.Controller().IsHidden("the"))
	assert.Contains(t, out, "(hidden)")
	assert.Contains(t, out, "the [cat] [and] the dog [and] the [cat]")

	h, _, _ = run(t, "the the\n:hide the\n:show the\n:hide two words\n")
	assert.False(t, h.Controller().IsHidden("the"))
	assert.False(t, h.Controller().IsHidden("two"))
}

func TestMinCommand(t *testing.T) {
	h, out, sched := run(t, "the cat and the dog and the cat\n:min 4\n:min x\n")
	assert.Equal(t, 0, h.Controller().Tracked().Len())
	assert.Contains(t, out, "Repeated words: 0")
	assert.Contains(t, out, "   - the")
	require.Len(t, sched.tasks, 1)

	sched.tasks[0]()
	assert.Empty(t, h.term.Rows())
}

func TestClearTextAndQuit(t *testing.T) {
	h, out, _ := run(t, "one one\n:text\n:clear\n:help\n:bogus\n:quit\ntwo two\n")
	assert.Contains(t, out, "one one\n")
	assert.Contains(t, out, ":words [PREFIX]")
	assert.Equal(t, 0, h.Controller().Tracked().Len())
	assert.Equal(t, "", h.buffer.Text())
}

func TestTerminalLimitAndPurge(t *testing.T) {
	out := &bytes.Buffer{}
	term := NewTerminal(out, config.CliConfig{ListLimit: 1}, false)

	term.UpsertItem(present.Item{Word: "alpha", Rank: 0, Count: 4})
	term.UpsertItem(present.Item{Word: "beta", Rank: 1, Count: 2})
	term.UpsertItem(present.Item{Word: "gamma", Rank: 2, Count: 2})
	list := term.RenderList()
	assert.Contains(t, list, "  1. alpha")
	assert.NotContains(t, list, "beta")
	assert.Contains(t, list, "... and 2 more")
	assert.Equal(t, term.RenderList(), term.Render(), "overlay disabled")

	term.MarkObsolete("beta")
	term.MarkObsolete("gamma")
	term.PurgeObsolete()
	assert.Contains(t, out.String(), "Repeated words: 1")
	assert.Len(t, term.Rows(), 1)
}

func TestTerminalListHeight(t *testing.T) {
	h, _, _ := run(t, "the cat and the dog and the cat\n")
	// default layout: 0.6 top and bottom margin plus 3 per row
	assert.InDelta(t, 10.2, h.term.ListHeight(), 1e-9)

	h, _, _ = run(t, "the cat\n:clear\n")
	assert.InDelta(t, 1.2, h.term.ListHeight(), 1e-9)
}

func TestColorEnabled(t *testing.T) {
	assert.False(t, ColorEnabled(false, os.Stdout))
	assert.False(t, ColorEnabled(true, nil))

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled(true, f))
}
