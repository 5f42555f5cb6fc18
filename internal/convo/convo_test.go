package convo

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeProvider struct {
	system, prompt string
	reply          string
	err            error
}

func (f *fakeProvider) Complete(_ context.Context, system, prompt string) (string, error) {
	f.system, f.prompt = system, prompt
	return f.reply, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Request{Title: "Rust vs Go", Content: "Body text.", Source: "https://example.com/a"}, "Jordan", "Alex")

	for _, want := range []string{
		"Title: Rust vs Go",
		"URL: https://example.com/a",
		"Article Content:\nBody text.",
		"between Jordan and Alex discussing",
		"**JORDAN:** [their dialogue]\n**ALEX:** [their dialogue]",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerator_Generate(t *testing.T) {
	fp := &fakeProvider{reply: "**ALEX:** Hi.\n**JORDAN:** Hello."}
	g := NewGenerator(fp, log.New(io.Discard))
	g.shuffle = func() (string, string) { return "Alex", "Jordan" }

	out, err := g.Generate(context.Background(), Request{Title: "T", Content: "C", Source: "S"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != fp.reply {
		t.Errorf("Generate() = %q", out)
	}
	if fp.system != DefaultSystemPrompt {
		t.Error("default system prompt not used")
	}
	if !strings.Contains(fp.prompt, "**ALEX:** [their dialogue]\n**JORDAN:**") {
		t.Error("prompt does not follow speaker order")
	}

	if _, err := g.Generate(context.Background(), Request{Content: "C", SystemPrompt: "Be brief."}); err != nil {
		t.Fatal(err)
	}
	if fp.system != "Be brief." {
		t.Errorf("custom system prompt = %q", fp.system)
	}
}

func TestGenerator_Errors(t *testing.T) {
	g := NewGenerator(&fakeProvider{err: ErrRateLimit}, log.New(io.Discard))
	if _, err := g.Generate(context.Background(), Request{Content: "C"}); !errors.Is(err, ErrRateLimit) {
		t.Errorf("error = %v, want ErrRateLimit", err)
	}

	g = NewGenerator(&fakeProvider{reply: "  "}, log.New(io.Discard))
	if _, err := g.Generate(context.Background(), Request{Content: "C"}); !errors.Is(err, ErrNoResponse) {
		t.Errorf("error = %v, want ErrNoResponse", err)
	}
	if _, err := g.Generate(context.Background(), Request{Content: " "}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestShuffledSpeakers(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		a, b := shuffledSpeakers()
		if a == b {
			t.Fatalf("same speaker twice: %s", a)
		}
		seen[a] = true
	}
	if len(seen) != 2 {
		t.Errorf("first speaker never varied: %v", seen)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider("anthropic", Credentials{}, DefaultSettings()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("anthropic without key error = %v", err)
	}
	if _, err := NewProvider("openai", Credentials{}, DefaultSettings()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("openai without key error = %v", err)
	}
	if _, err := NewProvider("bard", Credentials{}, DefaultSettings()); !errors.Is(err, ErrInvalidProvider) {
		t.Errorf("unknown provider error = %v", err)
	}

	p, err := NewProvider("ollama", Credentials{OllamaHost: "localhost:11434"}, DefaultSettings())
	if err != nil {
		t.Fatalf("ollama error = %v", err)
	}
	if o := p.(*Ollama); o.settings.Model != DefaultOllamaModel {
		t.Errorf("ollama model = %q", o.settings.Model)
	}
}
