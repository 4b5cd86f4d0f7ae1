// Package prompt asks every yes/no question of a run before any task starts.
package prompt

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"laravel-assembler/internal/logger"
)

// Question is one yes/no confirmation.
type Question struct {
	// Key identifies the answer in Selections (e.g. "git-init").
	Key string
	// Text is the question itself.
	Text string
	// Comment is an optional prerequisite notice rendered under the question.
	Comment string
	// Default is the answer used when the user just presses enter.
	Default bool
}

// Confirmer answers questions.
type Confirmer interface {
	Confirm(q Question) (bool, error)
}

// SurveyIO represents the standard input/output streams for surveys.
type SurveyIO struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err terminal.FileWriter
}

// DefaultSurveyIO provides standard IO for interactive prompts.
var DefaultSurveyIO = SurveyIO{
	In:  os.Stdin,
	Out: os.Stdout,
	Err: os.Stderr,
}

// AskOptions returns the survey options binding prompts to these streams.
func (s SurveyIO) AskOptions() []survey.AskOpt {
	return []survey.AskOpt{survey.WithStdio(s.In, s.Out, s.Err)}
}

// SurveyConfirmer asks on the terminal.
type SurveyConfirmer struct {
	IO SurveyIO
}

// NewSurveyConfirmer returns a Confirmer on the process' standard streams.
func NewSurveyConfirmer() *SurveyConfirmer {
	return &SurveyConfirmer{IO: DefaultSurveyIO}
}

// Confirm implements Confirmer.
func (c *SurveyConfirmer) Confirm(q Question) (bool, error) {
	answer := q.Default
	p := &survey.Confirm{
		Message: logger.Question(q.Text, q.Comment),
		Default: q.Default,
	}
	if err := survey.AskOne(p, &answer, c.IO.AskOptions()...); err != nil {
		return false, fmt.Errorf("asking %q: %w", q.Key, err)
	}
	return answer, nil
}

// AutoConfirmer takes the default answer of every question without asking.
// It backs --no-interaction.
type AutoConfirmer struct{}

// Confirm implements Confirmer.
func (AutoConfirmer) Confirm(q Question) (bool, error) {
	logger.Debug("[DEBUG] %s -> %v (default)\n", q.Key, q.Default)
	return q.Default, nil
}
