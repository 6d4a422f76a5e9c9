// Package prompt models prompt questions, remembers answers across runs in a
// store, and asks questions through pluggable adapters.
package prompt

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Question types.
const (
	TypeInput    = "input"
	TypeNumber   = "number"
	TypePassword = "password"
	TypeEditor   = "editor"
	TypeConfirm  = "confirm"
	TypeList     = "list"
	TypeRawList  = "rawlist"
	TypeExpand   = "expand"
	TypeCheckbox = "checkbox"
)

// Answers maps question names to answers.
type Answers map[string]any

// Choice is one option of a list-like question.
type Choice struct {
	// Name is the label shown to the user. Defaults to the value.
	Name string

	// Value is the answer recorded when the choice is picked.
	Value any

	// Checked preselects the choice of a checkbox question.
	Checked bool

	// Separator marks a non-selectable divider.
	Separator bool
}

// Label returns the display name of the choice.
func (c Choice) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprint(c.Value)
}

// Choices builds choices from plain values.
func Choices(values ...any) []Choice {
	out := make([]Choice, len(values))
	for i, v := range values {
		if c, ok := v.(Choice); ok {
			out[i] = c
			continue
		}
		out[i] = Choice{Value: v}
	}
	return out
}

// Separator returns a divider choice.
func Separator() Choice {
	return Choice{Separator: true}
}

// Question describes one prompt.
type Question struct {
	Name    string
	Type    string
	Message string

	// Default is the preselected answer. For list, rawlist and expand it may
	// be an index into Choices.
	Default any

	Choices []Choice

	// ChoicesFunc computes choices from earlier answers. Questions with
	// dynamic choices never get a remembered default.
	ChoicesFunc func(Answers) []Choice

	// Store remembers the answer across runs.
	Store bool

	// When skips the question unless it returns true.
	When func(Answers) bool

	// Validate rejects an answer.
	Validate func(any) error
}

// resolveChoices returns the static or computed choices.
func (q Question) resolveChoices(answers Answers) []Choice {
	if q.ChoicesFunc != nil {
		return q.ChoicesFunc(answers)
	}
	return q.Choices
}

// asked reports whether the question applies given earlier answers.
func (q Question) asked(answers Answers) bool {
	return q.When == nil || q.When(answers)
}

// choiceIndex returns the position of value in choices, counting separators
// positionally but never matching them. It returns -1 when absent.
func choiceIndex(choices []Choice, value any) int {
	for i, c := range choices {
		if c.Separator {
			continue
		}
		if equalValues(c.Value, value) {
			return i
		}
	}
	return -1
}

// equalValues compares two values after mapping both into the JSON value
// space, so 1 and 1.0 from a decoded document compare equal.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(jsonValue(a), jsonValue(b))
}

func jsonValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// indexOf interprets v as a choice index.
func indexOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// defaultAnswer returns the answer a question yields when the user accepts
// its default.
func defaultAnswer(q Question, choices []Choice) any {
	switch q.Type {
	case TypeList, TypeRawList, TypeExpand:
		if i, ok := indexOf(q.Default); ok && i >= 0 && i < len(choices) && !choices[i].Separator {
			return choices[i].Value
		}
		if q.Default != nil && choiceIndex(choices, q.Default) >= 0 {
			return q.Default
		}
		for _, c := range choices {
			if !c.Separator {
				return c.Value
			}
		}
		return nil
	case TypeCheckbox:
		if selected, ok := q.Default.([]any); ok {
			return selected
		}
		selected := []any{}
		for _, c := range choices {
			if c.Checked && !c.Separator {
				selected = append(selected, c.Value)
			}
		}
		return selected
	case TypeConfirm:
		b, _ := q.Default.(bool)
		return b
	default:
		if q.Default == nil {
			return ""
		}
		return q.Default
	}
}
