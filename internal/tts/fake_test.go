package tts

import (
	"context"
	"errors"
	"sync"
)

// fakeBackend records calls and fails on configured texts.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []fakeCall
	failOn map[string]error
	closed bool
}

type fakeCall struct {
	Text, Voice string
	Rate        int
}

func (f *fakeBackend) Synthesize(ctx context.Context, text, voice string, rate int) (*Speech, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{text, voice, rate})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.failOn[text]; ok {
		return nil, err
	}
	return &Speech{Data: []byte(voice + ":" + text), Format: FormatMP3}, nil
}

func (f *fakeBackend) Info() BackendInfo {
	return BackendInfo{Name: BackendMock, Format: FormatMP3}
}

func (f *fakeBackend) Validate() error { return nil }

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var errProvider = errors.New("provider exploded")
