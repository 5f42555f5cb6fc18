package tts

import (
	"fmt"
	"strings"
)

// BackendType names a speech backend.
type BackendType string

const (
	// BackendEdge is Microsoft Edge neural TTS through the edge-tts CLI.
	BackendEdge BackendType = "edge"

	// BackendOrpheus is a locally hosted Orpheus model server exposing an
	// OpenAI compatible speech endpoint.
	BackendOrpheus BackendType = "orpheus"

	// BackendGoogle is Google Cloud Text-to-Speech.
	BackendGoogle BackendType = "google"

	// BackendMock produces silent clips without any provider.
	BackendMock BackendType = "mock"

	// BackendNone means no backend was selected.
	BackendNone BackendType = ""
)

// Backends lists the selectable backends.
var Backends = []BackendType{BackendEdge, BackendOrpheus, BackendGoogle, BackendMock}

// ValidateBackendSelection resolves a backend name. The CLI argument takes
// precedence over the configured value.
func ValidateBackendSelection(cliArg, configured string) (BackendType, error) {
	name := strings.ToLower(strings.TrimSpace(cliArg))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(configured))
	}
	if name == "" {
		return BackendNone, fmt.Errorf("%w\n\nPlease specify a backend:\n  doc2convo podcast --tts edge FILE\n  doc2convo podcast --tts orpheus FILE", ErrNoBackendConfigured)
	}

	switch name {
	case "edge", "edge-tts":
		return BackendEdge, nil
	case "orpheus":
		return BackendOrpheus, nil
	case "google", "gcp":
		return BackendGoogle, nil
	case "mock":
		return BackendMock, nil
	default:
		return BackendNone, fmt.Errorf("%w: %s\n\nSupported backends: edge, orpheus, google, mock", ErrInvalidBackend, name)
	}
}

// ValidateRate checks a speech rate percentage.
func ValidateRate(rate int) error {
	if rate < -50 || rate > 100 {
		return fmt.Errorf("%w, got %+d", ErrInvalidRate, rate)
	}
	return nil
}

// RateString formats rate the way edge-tts expects it, e.g. "+25%".
func RateString(rate int) string {
	return fmt.Sprintf("%+d%%", rate)
}

// SpeedMultiplier converts a rate percentage to a speed factor, e.g. 25
// becomes 1.25.
func SpeedMultiplier(rate int) float64 {
	return 1 + float64(rate)/100
}
