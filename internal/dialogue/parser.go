// Package dialogue extracts speaker lines from conversation markdown.
//
// A conversation is plain text in which every spoken line has the form
//
//	**LABEL:** text
//
// where LABEL is one or more uppercase ASCII letters. Anything else in the
// document (headings, blank lines, narration) is ignored.
package dialogue

import (
	"bufio"
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyConversation is returned when a document contains no dialogue
// lines. It is not retryable: the input has to be fixed.
var ErrEmptyConversation = errors.New("no conversation found")

// linePattern matches a single dialogue line. It is anchored at the start of
// the line; trailing content is taken verbatim.
var linePattern = regexp.MustCompile(`^\*\*([A-Z]+):\*\* (.+)`)

// Line is one spoken line of the conversation.
type Line struct {
	Speaker string
	Text    string
}

// Parse returns the dialogue lines of text in document order.
func Parse(text string) ([]Line, error) {
	var lines []Line
	scan(text, func(speaker, content string) {
		lines = append(lines, Line{Speaker: speaker, Text: content})
	})
	if len(lines) == 0 {
		return nil, ErrEmptyConversation
	}
	return lines, nil
}

// Count returns the number of dialogue lines in text.
func Count(text string) int {
	n := 0
	scan(text, func(string, string) { n++ })
	return n
}

func scan(text string, fn func(speaker, content string)) {
	s := bufio.NewScanner(strings.NewReader(text))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimSuffix(s.Text(), "\r")
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fn(m[1], m[2])
	}
}
