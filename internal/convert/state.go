package convert

import (
	"fmt"
	"slices"
	"sync"
)

// Stage is a step of a conversion.
type Stage int

const (
	StageIdle Stage = iota
	StageParsing
	StageSynthesizing
	StageAssembling
	StageDone
	StageFailed
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageParsing:
		return "parsing"
	case StageSynthesizing:
		return "synthesizing"
	case StageAssembling:
		return "assembling"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// stateMachine tracks the stage of one conversion and rejects transitions
// that skip or revisit stages.
type stateMachine struct {
	mu          sync.Mutex
	current     Stage
	transitions map[Stage][]Stage
	onEnter     func(Stage)
}

func newStateMachine(onEnter func(Stage)) *stateMachine {
	return &stateMachine{
		current: StageIdle,
		transitions: map[Stage][]Stage{
			StageIdle:         {StageParsing},
			StageParsing:      {StageSynthesizing, StageFailed},
			StageSynthesizing: {StageAssembling, StageFailed},
			StageAssembling:   {StageDone, StageFailed},
		},
		onEnter: onEnter,
	}
}

// transition moves to the given stage.
func (sm *stateMachine) transition(to Stage) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !slices.Contains(sm.transitions[sm.current], to) {
		return fmt.Errorf("invalid stage transition %s -> %s", sm.current, to)
	}
	sm.current = to
	if sm.onEnter != nil {
		sm.onEnter(to)
	}
	return nil
}

func (sm *stateMachine) stage() Stage {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.current
}
