package picker

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func testFiles() []File {
	now := time.Now()
	return []File{
		{Path: "/tmp/go-generics-CONVO.md", Name: "go-generics-CONVO.md", ModTime: now},
		{Path: "/tmp/rust-async-CONVO.md", Name: "rust-async-CONVO.md", ModTime: now.Add(-time.Hour)},
		{Path: "/tmp/kubernetes-CONVO.md", Name: "kubernetes-CONVO.md", ModTime: now.Add(-48 * time.Hour)},
	}
}

func update(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Navigate(t *testing.T) {
	m := newModel(testFiles())
	m = update(m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown}, // clamps at the end
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	if m.chosen == nil || m.chosen.Name != "rust-async-CONVO.md" {
		t.Fatalf("chosen = %+v, want rust-async", m.chosen)
	}
}

func TestModel_Filter(t *testing.T) {
	m := newModel(testFiles())
	m = update(m, runes("kub"))

	if len(m.matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(m.matches))
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.chosen == nil || m.chosen.Name != "kubernetes-CONVO.md" {
		t.Errorf("chosen = %+v", m.chosen)
	}

	m = newModel(testFiles())
	m = update(m, runes("zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.chosen != nil {
		t.Error("enter with no matches should not choose")
	}
	if !strings.Contains(m.View(), "no matches") {
		t.Error("view does not report empty result")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newModel(testFiles())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(model).chosen != nil {
		t.Error("quit should not choose")
	}
	if cmd == nil {
		t.Error("quit should return a command")
	}
}

func TestPick_Shortcuts(t *testing.T) {
	if _, err := Pick(nil, Options{}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("no files error = %v", err)
	}
	got, err := Pick(testFiles()[:1], Options{})
	if err != nil || got != "/tmp/go-generics-CONVO.md" {
		t.Errorf("single file = %q, %v", got, err)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, age time.Duration) {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("**ALEX:** hi"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(-age)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	write("old-CONVO.md", 2*time.Hour)
	write("new-CONVO.md", time.Minute)
	write("notes.md", 0)
	write("lower-convo.md", 0)
	write(filepath.Join("sub", "nested-CONVO.md"), time.Hour)

	files, err := Find(dir)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"new-CONVO.md", filepath.Join("sub", "nested-CONVO.md"), "old-CONVO.md"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Find() = %v, want %v", names, want)
	}
}
