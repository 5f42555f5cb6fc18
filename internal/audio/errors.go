package audio

import (
	"errors"
	"fmt"
)

// ErrNoClips is returned when Assemble is called without clips.
var ErrNoClips = errors.New("no clips to assemble")

// AssemblyError reports a failure to decode, join or encode clips.
// Clip is the index of the offending clip, or -1 when the failure is not
// tied to a single clip.
type AssemblyError struct {
	Clip int
	Op   string
	Err  error
}

func (e *AssemblyError) Error() string {
	if e.Clip >= 0 {
		return fmt.Sprintf("%s clip %d: %v", e.Op, e.Clip, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}
