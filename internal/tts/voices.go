package tts

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// VoiceMap maps speaker labels to voice identifiers. Labels are stored
// uppercase. A VoiceMap is immutable once built and safe to share.
type VoiceMap struct {
	voices map[string]string
	def    string
}

// NewVoiceMap builds a VoiceMap. Labels are uppercased; def is used for
// labels without an entry.
func NewVoiceMap(voices map[string]string, def string) (VoiceMap, error) {
	if def == "" {
		return VoiceMap{}, fmt.Errorf("default voice cannot be empty")
	}
	m := make(map[string]string, len(voices))
	for label, voice := range voices {
		label = strings.ToUpper(strings.TrimSpace(label))
		if label == "" || voice == "" {
			return VoiceMap{}, fmt.Errorf("invalid voice mapping %q=%q", label, voice)
		}
		m[label] = voice
	}
	return VoiceMap{voices: m, def: def}, nil
}

// Lookup returns the voice for label, or the default voice when the label
// is unknown. The lookup is case-insensitive.
func (v VoiceMap) Lookup(label string) string {
	if voice, ok := v.voices[strings.ToUpper(label)]; ok {
		return voice
	}
	return v.def
}

// Default returns the fallback voice.
func (v VoiceMap) Default() string {
	return v.def
}

// Labels returns the mapped labels in sorted order.
func (v VoiceMap) Labels() []string {
	labels := make([]string, 0, len(v.voices))
	for l := range v.voices {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// With returns a copy of v with label mapped to voice. v is unchanged.
func (v VoiceMap) With(label, voice string) VoiceMap {
	m := make(map[string]string, len(v.voices)+1)
	for l, vc := range v.voices {
		m[l] = vc
	}
	m[strings.ToUpper(label)] = voice
	return VoiceMap{voices: m, def: v.def}
}

// WithDefault returns a copy of v with a different fallback voice.
func (v VoiceMap) WithDefault(voice string) VoiceMap {
	return VoiceMap{voices: v.voices, def: voice}
}

// OrpheusVoices are the voices the Orpheus model was trained on.
var OrpheusVoices = []string{"tara", "leah", "jess", "leo", "dan", "mia", "zac", "zoe"}

// DefaultVoices returns the built-in voices of a backend. The fallback
// voice is ALEX's.
func DefaultVoices(backend BackendType) VoiceMap {
	var alex, jordan string
	switch backend {
	case BackendOrpheus:
		alex, jordan = "leo", "tara"
	case BackendGoogle:
		alex, jordan = "en-US-Neural2-D", "en-US-Neural2-F"
	case BackendMock:
		alex, jordan = "mock-alex", "mock-jordan"
	default:
		alex, jordan = "en-US-ChristopherNeural", "en-US-JennyNeural"
	}
	return VoiceMap{
		voices: map[string]string{"ALEX": alex, "JORDAN": jordan},
		def:    alex,
	}
}

// BuildVoiceMap applies configured overrides on top of the backend's
// defaults. Overrides naming a voice the backend cannot produce are logged
// and ignored, keeping the default for that label.
func BuildVoiceMap(backend BackendType, overrides map[string]string, def string, logger *log.Logger) VoiceMap {
	if logger == nil {
		logger = log.Default()
	}

	vm := DefaultVoices(backend)
	labels := make([]string, 0, len(overrides))
	for l := range overrides {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, label := range labels {
		voice := strings.TrimSpace(overrides[label])
		if voice == "" {
			continue
		}
		if !validVoice(backend, voice) {
			logger.Warn("Invalid voice, using default",
				"speaker", strings.ToUpper(label),
				"voice", voice,
				"default", vm.Lookup(label),
				"valid", strings.Join(OrpheusVoices, ", "))
			continue
		}
		vm = vm.With(label, voice)
	}

	if def = strings.TrimSpace(def); def != "" {
		if validVoice(backend, def) {
			vm = vm.WithDefault(def)
		} else {
			logger.Warn("Invalid default voice, keeping built-in default", "voice", def, "default", vm.Default())
		}
	}
	return vm
}

func validVoice(backend BackendType, voice string) bool {
	if backend == BackendOrpheus {
		return slices.Contains(OrpheusVoices, strings.ToLower(voice))
	}
	return true
}
