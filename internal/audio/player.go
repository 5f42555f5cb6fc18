package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// PlaybackFormat is the format used for local playback. Device drivers
// handle 48kHz stereo everywhere.
var PlaybackFormat = Format{SampleRate: 48000, Channels: 2, BitDepth: 16}

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// Player plays PCM through the default audio device.
type Player struct {
	context *oto.Context
	format  Format
}

// NewPlayer opens the audio device in PlaybackFormat.
func NewPlayer() (*Player, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   PlaybackFormat.SampleRate,
			ChannelCount: PlaybackFormat.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(op)
		if otoErr == nil {
			<-ready
		}
	})
	if otoErr != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", otoErr)
	}
	return &Player{context: otoCtx, format: PlaybackFormat}, nil
}

// Play blocks until pcm has been played or ctx is done.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if err := p.format.CheckPCM(pcm); err != nil {
		return err
	}

	// pcm must stay referenced until playback ends.
	player := p.context.NewPlayer(bytes.NewReader(pcm))
	defer func() { _ = player.Close() }()
	player.Play()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}
