package prompt

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Adapter asks questions and returns the answers.
type Adapter interface {
	Prompt(ctx context.Context, questions []Question) (Answers, error)
}

// StaticAdapter answers from a fixed map, falling back to each question's
// default. It never blocks on a terminal.
type StaticAdapter struct {
	answers Answers
}

// NewStaticAdapter creates an adapter answering from answers.
func NewStaticAdapter(answers Answers) *StaticAdapter {
	if answers == nil {
		answers = Answers{}
	}
	return &StaticAdapter{answers: answers}
}

// LoadAnswers reads a YAML mapping of question names to answers.
func LoadAnswers(fsys afero.Fs, path string) (Answers, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading answers file: %w", err)
	}

	answers := Answers{}
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parsing answers file %s: %w", path, err)
	}
	return answers, nil
}

// Prompt implements Adapter.
func (a *StaticAdapter) Prompt(ctx context.Context, questions []Question) (Answers, error) {
	answers := Answers{}
	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !q.asked(answers) {
			continue
		}

		answer, ok := a.answers[q.Name]
		if !ok {
			answer = defaultAnswer(q, q.resolveChoices(answers))
		}
		if q.Validate != nil {
			if err := q.Validate(answer); err != nil {
				return nil, fmt.Errorf("answer for %q: %w", q.Name, err)
			}
		}
		answers[q.Name] = answer
	}
	return answers, nil
}
