// Package audio assembles synthesized speech clips into a single podcast
// file. Clips are decoded to raw PCM, joined with fixed pauses and encoded
// to MP3 with ffmpeg. It also provides local playback through oto.
package audio
