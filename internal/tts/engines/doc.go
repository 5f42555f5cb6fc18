// Package engines contains the speech backends: edge-tts (online, the
// default), a local Orpheus server, Google Cloud Text-to-Speech, and an
// offline mock that produces silence.
// Each backend implements tts.Backend.
package engines
