package picker

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/search"
)

func testResults() []search.SearchResult {
	return []search.SearchResult{
		{Item: &model.Item{ID: "world/s1", Name: "Crypt", Tags: []string{"dungeon"}}},
		{Item: &model.Item{ID: "world/s2", Name: "Crystal Cave"}},
		{Item: &model.Item{ID: "pack:maps/7", Name: "Cryo Lab"}},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(p Picker, msg tea.Msg) (Picker, tea.Cmd) {
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func TestPicker_InitialState(t *testing.T) {
	p := New(testResults(), "cry")

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 3 {
		t.Errorf("expected 3 results, got %d", len(p.results))
	}
}

func TestPicker_NavigateJK(t *testing.T) {
	p := New(testResults(), "cry")

	p, _ = update(p, runes("j"))
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1, got %d", p.cursor)
	}

	p, _ = update(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_BoundsCheck(t *testing.T) {
	p := New(testResults()[:1], "cry")

	p, _ = update(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}

	p, _ = update(p, runes("j"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 (only 1 item), got %d", p.cursor)
	}
}

func TestPicker_TopBottom(t *testing.T) {
	p := New(testResults(), "cry")

	p, _ = update(p, runes("G"))
	if p.cursor != 2 {
		t.Errorf("expected cursor at 2 after G, got %d", p.cursor)
	}
	p, _ = update(p, runes("g"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after g, got %d", p.cursor)
	}
}

func TestPicker_ArrowKeys(t *testing.T) {
	p := New(testResults(), "cry")

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after down arrow, got %d", p.cursor)
	}
	p, _ = update(p, tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after up arrow, got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	p := New(testResults(), "cry")
	p.cursor = 2

	p, cmd := update(p, tea.KeyMsg{Type: tea.KeyEnter})

	if !p.selected {
		t.Error("expected selected to be true after Enter")
	}
	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	if got := p.SelectedItem(); got == nil || got.ID != "pack:maps/7" {
		t.Errorf("SelectedItem() = %v", got)
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q"), {Type: tea.KeyCtrlC}} {
		p := New(testResults(), "cry")
		p, cmd := update(p, msg)

		if !p.cancelled {
			t.Errorf("expected cancelled after %q", msg.String())
		}
		if cmd == nil {
			t.Errorf("expected quit command after %q", msg.String())
		}
		if p.SelectedItem() != nil {
			t.Error("expected nil selection when cancelled")
		}
	}
}

func TestPicker_Yank(t *testing.T) {
	var copied string
	p := New(testResults(), "cry")
	p.copyFn = func(s string) error {
		copied = s
		return nil
	}

	p, _ = update(p, runes("j"))
	p, cmd := update(p, runes("y"))

	if cmd != nil {
		t.Error("yank should not quit")
	}
	if copied != "world/s2" {
		t.Errorf("copied %q, want world/s2", copied)
	}
	if !strings.Contains(p.View(), "copied world/s2") {
		t.Error("expected status line after yank")
	}
}

func TestPicker_YankError(t *testing.T) {
	p := New(testResults(), "cry")
	p.copyFn = func(string) error { return errors.New("no clipboard") }

	p, _ = update(p, runes("y"))
	if p.status != "copy failed: no clipboard" {
		t.Errorf("status = %q", p.status)
	}
}

func TestPicker_View(t *testing.T) {
	p := New(testResults(), "cry")
	out := p.View()

	for _, want := range []string{"Search: cry (3 results)", "world/s1  #dungeon", "pack:maps/7", "j/down: move down"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
