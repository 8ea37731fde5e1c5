package models

import (
	"testing"

	"wiki-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizData_Value(t *testing.T) {
	d := QuizData{
		Summary: "s",
		Quiz: []domain.QuizQuestion{{
			Question: "q?", Options: []string{"a", "b", "c", "d"}, Answer: "a",
			Difficulty: domain.DifficultyEasy, Explanation: "e",
		}},
	}

	v, err := d.Value()
	require.NoError(t, err)
	s, ok := v.(string)
	require.True(t, ok)
	assert.Contains(t, s, `"key_entities":{"people":[],"organizations":[],"locations":[]}`)
	assert.Contains(t, s, `"sections":[]`)
	assert.Contains(t, s, `"difficulty":"easy"`)
}

func TestQuizData_Scan(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
		check   func(t *testing.T, d QuizData)
	}{
		{
			name:  "string",
			value: `{"summary":"hello","quiz":[],"related_topics":["x"]}`,
			check: func(t *testing.T, d QuizData) {
				assert.Equal(t, "hello", d.Summary)
				assert.Equal(t, []string{"x"}, d.RelatedTopics)
				assert.Equal(t, []string{}, d.KeyEntities.People)
			},
		},
		{
			name:  "bytes",
			value: []byte(`{"summary":"b"}`),
			check: func(t *testing.T, d QuizData) { assert.Equal(t, "b", d.Summary) },
		},
		{name: "null", value: nil, wantErr: true},
		{name: "bad json", value: "{", wantErr: true},
		{name: "unsupported", value: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d QuizData
			err := d.Scan(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

func TestQuizData_RoundTripPreservesOrder(t *testing.T) {
	in := QuizData{Sections: []string{"B", "A", "C"}}
	v, err := in.Value()
	require.NoError(t, err)

	var out QuizData
	require.NoError(t, out.Scan(v))
	assert.Equal(t, []string{"B", "A", "C"}, out.Sections)
}
