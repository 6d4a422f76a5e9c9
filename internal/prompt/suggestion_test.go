package prompt

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/scaffold/internal/errors"
	"github.com/opmodel/scaffold/internal/memfs"
	"github.com/opmodel/scaffold/internal/storage"
)

// countingStore wraps a Storage and counts writes.
type countingStore struct {
	*storage.Storage
	sets int
}

func (c *countingStore) Set(key string, value any) (any, error) {
	c.sets++
	return c.Storage.Set(key, value)
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	editor := memfs.New(afero.NewMemMapFs(), memfs.WithReporter(nil))
	s, err := storage.New(editor, "/home/user/.scaffold-global.json", storage.Options{Name: "app"})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &countingStore{Storage: s}
}

func seed(t *testing.T, s *countingStore, values map[string]any) {
	t.Helper()
	_, err := s.Storage.Set(storeKey, values)
	require.NoError(t, err)
}

func TestPrefillQuestions_Errors(t *testing.T) {
	_, err := PrefillQuestions(nil, []Question{})
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))

	_, err = PrefillQuestions(newStore(t), nil)
	assert.True(t, errors.Is(err, oerrors.ErrConfiguration))
}

func TestPrefillQuestions(t *testing.T) {
	tests := []struct {
		name        string
		stored      map[string]any
		question    Question
		wantDefault any
	}{
		{
			name:        "input takes stored scalar",
			stored:      map[string]any{"respuesta": "foo"},
			question:    Question{Name: "respuesta", Default: "bar", Store: true},
			wantDefault: "foo",
		},
		{
			name:        "questions without store are untouched",
			stored:      map[string]any{"respuesta": "foo"},
			question:    Question{Name: "respuesta", Default: "bar"},
			wantDefault: "bar",
		},
		{
			name:        "missing stored value leaves default",
			stored:      map[string]any{"other": "foo"},
			question:    Question{Name: "respuesta", Default: "bar", Store: true},
			wantDefault: "bar",
		},
		{
			name:   "dynamic choices keep default",
			stored: map[string]any{"pick": "b"},
			question: Question{
				Name: "pick", Type: TypeList, Default: 0, Store: true,
				ChoicesFunc: func(Answers) []Choice { return Choices("a", "b") },
			},
			wantDefault: 0,
		},
		{
			name:   "rawlist default becomes index counting separators",
			stored: map[string]any{"respuesta": "bar"},
			question: Question{
				Name: "respuesta", Type: TypeRawList, Default: 0, Store: true,
				Choices: []Choice{{Value: "foo"}, Separator(), {Value: "bar"}, {Value: "baz"}},
			},
			wantDefault: 2,
		},
		{
			name:   "list default index of object choice value",
			stored: map[string]any{"license": "MIT"},
			question: Question{
				Name: "license", Type: TypeList, Store: true,
				Choices: []Choice{{Name: "Apache", Value: "Apache-2.0"}, {Name: "MIT License", Value: "MIT"}},
			},
			wantDefault: 1,
		},
		{
			name:   "stored value no longer a choice",
			stored: map[string]any{"pick": "gone"},
			question: Question{
				Name: "pick", Type: TypeExpand, Default: 0, Store: true,
				Choices: Choices("a", "b"),
			},
			wantDefault: -1,
		},
		{
			name:   "numeric choices match decoded numbers",
			stored: map[string]any{"size": float64(2)},
			question: Question{
				Name: "size", Type: TypeList, Store: true,
				Choices: Choices(1, 2, 3),
			},
			wantDefault: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			seed(t, s, tt.stored)

			got, err := PrefillQuestions(s, []Question{tt.question})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantDefault, got[0].Default)
		})
	}
}

func TestPrefillQuestions_Checkbox(t *testing.T) {
	s := newStore(t)
	seed(t, s, map[string]any{"features": []any{"lint", "ci"}})

	original := []Question{{
		Name: "features", Type: TypeCheckbox, Store: true,
		Choices: []Choice{{Value: "lint", Checked: true}, {Value: "ci"}, {Value: "docker", Checked: true}},
	}}

	got, err := PrefillQuestions(s, original)
	require.NoError(t, err)

	assert.Equal(t, []any{"lint", "ci"}, got[0].Default)
	for _, c := range got[0].Choices {
		assert.False(t, c.Checked, "choice %v", c.Value)
	}
	assert.True(t, original[0].Choices[0].Checked, "input questions are not mutated")
}

func TestStoreAnswers_Errors(t *testing.T) {
	s := newStore(t)
	assert.True(t, errors.Is(StoreAnswers(nil, []Question{}, Answers{}, false), oerrors.ErrConfiguration))
	assert.True(t, errors.Is(StoreAnswers(s, nil, Answers{}, false), oerrors.ErrConfiguration))
	assert.True(t, errors.Is(StoreAnswers(s, []Question{}, nil, false), oerrors.ErrConfiguration))
}

func TestPromptRoundTrip(t *testing.T) {
	s := newStore(t)
	seed(t, s, map[string]any{"respuesta": "foo"})
	question := Question{Name: "respuesta", Default: "bar", Store: true}

	prefilled, err := PrefillQuestions(s, []Question{question})
	require.NoError(t, err)
	assert.Equal(t, "foo", prefilled[0].Default)

	require.NoError(t, StoreAnswers(s, []Question{question}, Answers{"respuesta": "baz"}, false))
	assert.Equal(t, map[string]any{"respuesta": "baz"}, s.Get(storeKey))
	assert.Equal(t, 1, s.sets)

	require.NoError(t, StoreAnswers(s, []Question{question}, Answers{"respuesta": "bar"}, false))
	assert.Equal(t, map[string]any{"respuesta": "baz"}, s.Get(storeKey))
	assert.Equal(t, 1, s.sets, "answer equal to the default is not persisted")

	require.NoError(t, StoreAnswers(s, []Question{question}, Answers{"respuesta": "bar"}, true))
	assert.Equal(t, map[string]any{"respuesta": "bar"}, s.Get(storeKey))
	assert.Equal(t, 2, s.sets)
}

func TestStoreAnswers(t *testing.T) {
	choices := []Choice{{Value: "foo"}, Separator(), {Value: "bar"}, {Value: "baz"}}

	tests := []struct {
		name      string
		questions []Question
		answers   Answers
		storeAll  bool
		want      map[string]any
	}{
		{
			name:      "rawlist answer matching default index is not stored",
			questions: []Question{{Name: "pick", Type: TypeRawList, Default: 0, Store: true, Choices: choices}},
			answers:   Answers{"pick": "foo"},
			want:      nil,
		},
		{
			name:      "rawlist answer at another index is stored",
			questions: []Question{{Name: "pick", Type: TypeRawList, Default: 0, Store: true, Choices: choices}},
			answers:   Answers{"pick": "bar"},
			want:      map[string]any{"pick": "bar"},
		},
		{
			name:      "rawlist storeAll stores default answer",
			questions: []Question{{Name: "pick", Type: TypeExpand, Default: 0, Store: true, Choices: choices}},
			answers:   Answers{"pick": "foo"},
			storeAll:  true,
			want:      map[string]any{"pick": "foo"},
		},
		{
			name:      "unanswered questions are skipped",
			questions: []Question{{Name: "name", Store: true}},
			answers:   Answers{"other": "x"},
			want:      nil,
		},
		{
			name:      "questions without store are skipped",
			questions: []Question{{Name: "name", Default: "a"}},
			answers:   Answers{"name": "b"},
			want:      nil,
		},
		{
			name: "several answers stored together",
			questions: []Question{
				{Name: "name", Default: "app", Store: true},
				{Name: "confirm", Type: TypeConfirm, Default: true, Store: true},
				{Name: "features", Type: TypeCheckbox, Default: []any{"a"}, Store: true},
			},
			answers: Answers{"name": "demo", "confirm": false, "features": []any{"a", "b"}},
			want:    map[string]any{"name": "demo", "confirm": false, "features": []any{"a", "b"}},
		},
		{
			name:      "checkbox equal to default is not stored",
			questions: []Question{{Name: "features", Type: TypeCheckbox, Default: []any{"a"}, Store: true}},
			answers:   Answers{"features": []string{"a"}},
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			require.NoError(t, StoreAnswers(s, tt.questions, tt.answers, tt.storeAll))

			if tt.want == nil {
				assert.Equal(t, 0, s.sets)
				assert.Nil(t, s.Get(storeKey))
				return
			}
			assert.Equal(t, 1, s.sets)
			assert.Equal(t, tt.want, s.Get(storeKey))
		})
	}
}

func TestStoreAnswers_KeepsOtherValues(t *testing.T) {
	s := newStore(t)
	seed(t, s, map[string]any{"kept": "yes"})

	require.NoError(t, StoreAnswers(s, []Question{{Name: "new", Store: true}}, Answers{"new": "v"}, false))
	assert.Equal(t, map[string]any{"kept": "yes", "new": "v"}, s.Get(storeKey))
}
