package prompt

import (
	"maps"
	"slices"

	oerrors "github.com/opmodel/scaffold/internal/errors"
)

// storeKey is where remembered answers live in the store.
const storeKey = "promptValues"

// Store is the key/value store remembered answers are kept in.
type Store interface {
	Get(key string) any
	Set(key string, value any) (any, error)
}

func storedValues(store Store) map[string]any {
	values, _ := store.Get(storeKey).(map[string]any)
	return values
}

// PrefillQuestions returns copies of questions whose defaults are replaced
// by previously stored answers. Questions without Store, with dynamic
// choices, or without a stored answer are returned unchanged.
func PrefillQuestions(store Store, questions []Question) ([]Question, error) {
	if store == nil {
		return nil, oerrors.NewConfigurationError("prefilling questions requires a store", "store", "")
	}
	if questions == nil {
		return nil, oerrors.NewConfigurationError("prefilling questions requires questions", "questions", "")
	}

	stored := storedValues(store)
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q
		if !q.Store || q.ChoicesFunc != nil {
			continue
		}
		value, ok := stored[q.Name]
		if !ok {
			continue
		}

		switch q.Type {
		case TypeList, TypeRawList, TypeExpand:
			out[i].Default = choiceIndex(q.Choices, value)
		case TypeCheckbox:
			choices := slices.Clone(q.Choices)
			for j := range choices {
				choices[j].Checked = false
			}
			out[i].Choices = choices
			out[i].Default = value
		default:
			out[i].Default = value
		}
	}
	return out, nil
}

// StoreAnswers remembers the answers of Store questions that differ from
// their defaults, or all of them with storeAll. The store is written once,
// and only when at least one answer qualifies.
func StoreAnswers(store Store, questions []Question, answers Answers, storeAll bool) error {
	if store == nil {
		return oerrors.NewConfigurationError("storing answers requires a store", "store", "")
	}
	if questions == nil {
		return oerrors.NewConfigurationError("storing answers requires questions", "questions", "")
	}
	if answers == nil {
		return oerrors.NewConfigurationError("storing answers requires answers", "answers", "")
	}

	values := maps.Clone(storedValues(store))
	if values == nil {
		values = make(map[string]any)
	}

	changed := false
	for _, q := range questions {
		if !q.Store {
			continue
		}
		answer, answered := answers[q.Name]

		var save bool
		switch q.Type {
		case TypeRawList, TypeExpand:
			idx := choiceIndex(q.resolveChoices(answers), answer)
			def, isIndex := indexOf(q.Default)
			save = answered && (storeAll || !isIndex || def != idx)
		default:
			save = answered && answer != nil && (storeAll || !equalValues(answer, q.Default))
		}

		if save {
			values[q.Name] = answer
			changed = true
		}
	}

	if !changed {
		return nil
	}
	_, err := store.Set(storeKey, values)
	return err
}
