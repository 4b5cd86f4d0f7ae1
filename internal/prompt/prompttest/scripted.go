// Package prompttest provides a prompt.Confirmer that answers from a script.
package prompttest

import (
	"errors"

	"laravel-assembler/internal/prompt"
)

// Scripted answers questions by key and records every key it was asked.
// Keys without an answer get the question's default.
type Scripted struct {
	Answers map[string]bool
	// FailOn makes the question with this key return an error.
	FailOn string
	Asked  []string
}

// ErrAborted is returned for the FailOn question.
var ErrAborted = errors.New("prompt aborted")

// New returns a Scripted confirmer with the given answers.
func New(answers map[string]bool) *Scripted {
	return &Scripted{Answers: answers}
}

// Confirm implements prompt.Confirmer.
func (s *Scripted) Confirm(q prompt.Question) (bool, error) {
	s.Asked = append(s.Asked, q.Key)
	if q.Key == s.FailOn {
		return false, ErrAborted
	}
	if v, ok := s.Answers[q.Key]; ok {
		return v, nil
	}
	return q.Default, nil
}

// WasAsked reports whether the question key was asked.
func (s *Scripted) WasAsked(key string) bool {
	for _, k := range s.Asked {
		if k == key {
			return true
		}
	}
	return false
}
