package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// wavCodec decodes WAV clips and "encodes" by writing raw PCM, so tests can
// inspect exactly what the assembler produced.
type wavCodec struct {
	encodeErr error
	decoded   []string
}

func (c *wavCodec) Decode(_ context.Context, path string, f Format) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pcm, got, err := DecodeWAV(data)
	if err != nil {
		return nil, err
	}
	if got != f {
		return nil, errors.New("unexpected clip format")
	}
	c.decoded = append(c.decoded, path)
	return pcm, nil
}

func (c *wavCodec) Encode(_ context.Context, pcm []byte, _ Format, outPath string) error {
	if c.encodeErr != nil {
		// Simulate a partially written file.
		_ = os.WriteFile(outPath, []byte("partial"), 0o600)
		return c.encodeErr
	}
	return os.WriteFile(outPath, pcm, 0o600)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// writeClip writes a WAV clip of duration d filled with sample value v.
func writeClip(t *testing.T, dir string, index int, d time.Duration, v byte) Clip {
	t.Helper()
	f := DefaultFormat()
	pcm := f.Silence(d)
	for i := 0; i < len(pcm); i += 2 {
		pcm[i] = v
	}
	path := filepath.Join(dir, "clip-"+string(rune('a'+index))+".wav")
	if err := os.WriteFile(path, EncodeWAV(pcm, f), 0o600); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return Clip{Index: index, Path: path}
}

func TestAssembler_Duration(t *testing.T) {
	dir := t.TempDir()
	clips := []Clip{
		writeClip(t, dir, 0, 2000*time.Millisecond, 1),
		writeClip(t, dir, 1, 1500*time.Millisecond, 2),
	}
	out := filepath.Join(dir, "out", "podcast.mp3")

	a := NewAssembler(&wavCodec{}, AssemblerConfig{Pause: 300 * time.Millisecond, Logger: quietLogger()})
	p, err := a.Assemble(context.Background(), clips, out)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if p.Duration != 3800*time.Millisecond {
		t.Errorf("Duration = %v, want 3.8s", p.Duration)
	}
	if p.Clips != 2 {
		t.Errorf("Clips = %d, want 2", p.Clips)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := DefaultFormat().Duration(len(data)); got != 3800*time.Millisecond {
		t.Errorf("written duration = %v, want 3.8s", got)
	}
	if p.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", p.Size, len(data))
	}
}

func TestAssembler_DurationProperty(t *testing.T) {
	pause := 250 * time.Millisecond
	tests := []struct {
		name      string
		durations []time.Duration
	}{
		{"single clip has no pause", []time.Duration{time.Second}},
		{"three clips", []time.Duration{time.Second, 500 * time.Millisecond, 1200 * time.Millisecond}},
		{"many short clips", []time.Duration{
			100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond,
			400 * time.Millisecond, 500 * time.Millisecond,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var clips []Clip
			var want time.Duration
			for i, d := range tt.durations {
				clips = append(clips, writeClip(t, dir, i, d, byte(i+1)))
				want += d
			}
			want += pause * time.Duration(len(tt.durations)-1)

			a := NewAssembler(&wavCodec{}, AssemblerConfig{Pause: pause, Logger: quietLogger()})
			p, err := a.Assemble(context.Background(), clips, filepath.Join(dir, "out.mp3"))
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if p.Duration != want {
				t.Errorf("Duration = %v, want %v", p.Duration, want)
			}
		})
	}
}

func TestAssembler_OrdersByIndex(t *testing.T) {
	dir := t.TempDir()
	c0 := writeClip(t, dir, 0, 100*time.Millisecond, 10)
	c1 := writeClip(t, dir, 1, 100*time.Millisecond, 20)
	c2 := writeClip(t, dir, 2, 100*time.Millisecond, 30)
	out := filepath.Join(dir, "out.mp3")

	codec := &wavCodec{}
	a := NewAssembler(codec, AssemblerConfig{Pause: 100 * time.Millisecond, Logger: quietLogger()})
	if _, err := a.Assemble(context.Background(), []Clip{c2, c0, c1}, out); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := []string{c0.Path, c1.Path, c2.Path}
	for i := range want {
		if codec.decoded[i] != want[i] {
			t.Errorf("decode %d = %s, want %s", i, codec.decoded[i], want[i])
		}
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	// Each segment is 100ms = 4800 bytes; clip, pause, clip, pause, clip.
	const seg = 4800
	expect := []byte{10, 0, 20, 0, 30}
	for i, v := range expect {
		if got := data[i*seg]; got != v {
			t.Errorf("segment %d starts with %d, want %d", i, got, v)
		}
	}
	if len(data) != 5*seg {
		t.Errorf("output = %d bytes, want %d", len(data), 5*seg)
	}
}

func TestAssembler_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeClip(t, dir, 0, 100*time.Millisecond, 1)
	bad := filepath.Join(dir, "bad.mp3")
	if err := os.WriteFile(bad, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "podcast.mp3")

	a := NewAssembler(&wavCodec{}, AssemblerConfig{Logger: quietLogger()})
	_, err := a.Assemble(context.Background(), []Clip{good, {Index: 1, Path: bad}}, out)

	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("Assemble() error = %v, want *AssemblyError", err)
	}
	if ae.Clip != 1 || ae.Op != "decode" {
		t.Errorf("AssemblyError = %+v, want clip 1 decode", ae)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file exists after failure")
	}
}

func TestAssembler_EncodeFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	clip := writeClip(t, dir, 0, 100*time.Millisecond, 1)
	outDir := filepath.Join(dir, "out")
	out := filepath.Join(outDir, "podcast.mp3")

	codec := &wavCodec{encodeErr: errors.New("lame exploded")}
	a := NewAssembler(codec, AssemblerConfig{Logger: quietLogger()})
	_, err := a.Assemble(context.Background(), []Clip{clip}, out)

	var ae *AssemblyError
	if !errors.As(err, &ae) || ae.Op != "encode" {
		t.Fatalf("Assemble() error = %v, want encode AssemblyError", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("output dir has %d leftover entries", len(entries))
	}
}

func TestAssembler_InvalidClipSet(t *testing.T) {
	dir := t.TempDir()
	a := NewAssembler(&wavCodec{}, AssemblerConfig{Logger: quietLogger()})

	if _, err := a.Assemble(context.Background(), nil, filepath.Join(dir, "x.mp3")); !errors.Is(err, ErrNoClips) {
		t.Errorf("Assemble(nil) error = %v, want ErrNoClips", err)
	}

	c0 := writeClip(t, dir, 0, 100*time.Millisecond, 1)
	c2 := writeClip(t, dir, 2, 100*time.Millisecond, 1)
	var ae *AssemblyError
	if _, err := a.Assemble(context.Background(), []Clip{c0, c2}, filepath.Join(dir, "x.mp3")); !errors.As(err, &ae) {
		t.Errorf("Assemble() with gap error = %v, want *AssemblyError", err)
	}
}

func TestFFmpegCodec_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ffmpeg test in short mode")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}

	dir := t.TempDir()
	clips := []Clip{
		writeClip(t, dir, 0, 2000*time.Millisecond, 0),
		writeClip(t, dir, 1, 1500*time.Millisecond, 0),
	}
	out := filepath.Join(dir, "podcast.mp3")

	codec := NewFFmpegCodec("", "")
	if err := codec.Validate(context.Background()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	a := NewAssembler(codec, AssemblerConfig{Pause: 300 * time.Millisecond, Logger: quietLogger()})
	p, err := a.Assemble(context.Background(), clips, out)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if p.Duration != 3800*time.Millisecond {
		t.Errorf("Duration = %v, want 3.8s", p.Duration)
	}

	// MP3 adds encoder padding; allow 100ms.
	pcm, err := codec.Decode(context.Background(), out, DefaultFormat())
	if err != nil {
		t.Fatalf("Decode(output) error = %v", err)
	}
	got := DefaultFormat().Duration(len(pcm))
	if diff := got - 3800*time.Millisecond; diff < -100*time.Millisecond || diff > 100*time.Millisecond {
		t.Errorf("decoded output duration = %v, want ~3.8s", got)
	}
}
