package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/opmodel/scaffold/internal/output"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

// HuhAdapter asks questions with interactive terminal forms, one question
// at a time so later questions can depend on earlier answers. Without a
// terminal it answers every question with its default.
type HuhAdapter struct {
	accessible  bool
	interactive func() bool
}

// HuhOption configures a HuhAdapter.
type HuhOption func(*HuhAdapter)

// WithAccessible switches forms to accessible mode.
func WithAccessible(enabled bool) HuhOption {
	return func(a *HuhAdapter) {
		a.accessible = enabled
	}
}

// NewHuhAdapter creates a terminal adapter. Accessible mode is also enabled
// by the ACCESSIBLE environment variable.
func NewHuhAdapter(opts ...HuhOption) *HuhAdapter {
	_, accessible := os.LookupEnv("ACCESSIBLE")
	a := &HuhAdapter{
		accessible:  accessible,
		interactive: output.IsTTY,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prompt implements Adapter.
func (a *HuhAdapter) Prompt(ctx context.Context, questions []Question) (Answers, error) {
	if !a.interactive() {
		output.Debug("no terminal attached, using default answers", "questions", len(questions))
		return NewStaticAdapter(nil).Prompt(ctx, questions)
	}

	answers := Answers{}
	for _, q := range questions {
		if !q.asked(answers) {
			continue
		}
		answer, err := a.ask(ctx, q, q.resolveChoices(answers))
		if err != nil {
			return nil, err
		}
		answers[q.Name] = answer
	}
	return answers, nil
}

func (a *HuhAdapter) ask(ctx context.Context, q Question, choices []Choice) (any, error) {
	title := q.Message
	if title == "" {
		title = q.Name
	}

	var (
		field huh.Field
		read  func() (any, error)
	)

	switch q.Type {
	case TypeConfirm:
		value, _ := defaultAnswer(q, choices).(bool)
		field = huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&value)
		read = func() (any, error) { return value, nil }

	case TypeList, TypeRawList, TypeExpand:
		selected := choiceIndex(choices, defaultAnswer(q, choices))
		options := make([]huh.Option[int], 0, len(choices))
		for i, c := range choices {
			if !c.Separator {
				options = append(options, huh.NewOption(c.Label(), i))
			}
		}
		field = huh.NewSelect[int]().Title(title).Options(options...).Value(&selected)
		read = func() (any, error) {
			if selected < 0 || selected >= len(choices) {
				return nil, nil
			}
			return choices[selected].Value, nil
		}

	case TypeCheckbox:
		defaults, _ := defaultAnswer(q, choices).([]any)
		var selected []int
		options := make([]huh.Option[int], 0, len(choices))
		for i, c := range choices {
			if c.Separator {
				continue
			}
			picked := c.Checked || slices.ContainsFunc(defaults, func(v any) bool { return equalValues(v, c.Value) })
			options = append(options, huh.NewOption(c.Label(), i).Selected(picked))
		}
		field = huh.NewMultiSelect[int]().Title(title).Options(options...).Value(&selected)
		read = func() (any, error) {
			values := make([]any, 0, len(selected))
			for _, i := range selected {
				values = append(values, choices[i].Value)
			}
			return values, nil
		}

	case TypeEditor:
		value := fmt.Sprint(defaultAnswer(q, choices))
		text := huh.NewText().Title(title).Value(&value)
		if q.Validate != nil {
			text = text.Validate(func(s string) error { return q.Validate(s) })
		}
		field = text
		read = func() (any, error) { return value, nil }

	default:
		value := fmt.Sprint(defaultAnswer(q, choices))
		input := huh.NewInput().Title(title).Value(&value)
		if q.Type == TypePassword {
			input = input.EchoMode(huh.EchoModePassword)
		}
		input = input.Validate(func(s string) error {
			v, err := convertInput(q.Type, s)
			if err != nil {
				return err
			}
			if q.Validate != nil {
				return q.Validate(v)
			}
			return nil
		})
		field = input
		read = func() (any, error) { return convertInput(q.Type, value) }
	}

	form := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(a.accessible).
		WithShowHelp(true)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("asking %q: %w", q.Name, err)
	}

	return read()
}

func convertInput(kind, s string) (any, error) {
	if kind != TypeNumber {
		return s, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}
