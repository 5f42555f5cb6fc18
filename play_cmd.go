package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doc2convo/doc2convo/internal/audio"
)

var playCmd = &cobra.Command{
	Use:     "play FILE",
	Short:   "Play a podcast through the default audio device",
	Long:    paragraph(fmt.Sprintf("\n%s an MP3 (or any file ffmpeg can decode) on the default audio device.", keyword("Play"))),
	Example: paragraph("doc2convo play article-podcast.mp3"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd.Context(), args[0])
	},
}

func runPlay(ctx context.Context, path string) error {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: file not found: %s", errNoInput, path)
	}
	if err != nil {
		return err
	}

	codec := audio.NewFFmpegCodec(cfg.Audio.FFmpeg, cfg.Audio.Bitrate)
	if err := codec.Validate(ctx); err != nil {
		return err
	}
	pcm, err := codec.Decode(ctx, path, audio.PlaybackFormat)
	if err != nil {
		return fmt.Errorf("unable to decode %s: %w", path, err)
	}

	player, err := audio.NewPlayer()
	if err != nil {
		return err
	}

	log.Info("Playing",
		"file", path,
		"size", humanize.Bytes(uint64(st.Size())), //nolint:gosec
		"duration", audio.PlaybackFormat.Duration(len(pcm)))
	if err := player.Play(ctx, pcm); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
