package subprocess

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestRunner_Stdin(t *testing.T) {
	requireBinary(t, "cat")

	out, err := Runner{}.Run(context.Background(), strings.NewReader("hello"), "cat")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("Run() = %q, want %q", out, "hello")
	}
}

func TestRunner_Failure(t *testing.T) {
	requireBinary(t, "sh")

	_, err := Runner{}.Run(context.Background(), nil, "sh", "-c", "echo broken >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not quote stderr", err)
	}
}

func TestRunner_Timeout(t *testing.T) {
	requireBinary(t, "sleep")

	start := time.Now()
	_, err := Runner{Timeout: 50 * time.Millisecond}.Run(context.Background(), nil, "sleep", "5")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Run() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestRunner_Canceled(t *testing.T) {
	requireBinary(t, "sleep")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Runner{}.Run(ctx, nil, "sleep", "5")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestLookPath(t *testing.T) {
	if _, err := LookPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("expected error for missing binary")
	}
}
