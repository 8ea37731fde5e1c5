package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "quiz",
			objectType:  "id",
			identifier:  "123",
			paramsKey:   nil,
			expectedKey: "wikiquiz:quiz:id:123",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "quiz",
			objectType:  "id",
			identifier:  "123",
			paramsKey:   []string{},
			expectedKey: "wikiquiz:quiz:id:123",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "quiz",
			objectType:  "url",
			identifier:  "abc",
			paramsKey:   []string{"v1", "full"},
			expectedKey: "wikiquiz:quiz:url:abc:v1_full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestQuizKeys(t *testing.T) {
	a := QuizURLKey("https://en.wikipedia.org/wiki/Alan_Turing")
	b := QuizURLKey("https://en.wikipedia.org/wiki/Ada_Lovelace")

	assert.True(t, strings.HasPrefix(a, "wikiquiz:quiz:url:"))
	assert.Len(t, strings.TrimPrefix(a, "wikiquiz:quiz:url:"), 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, QuizURLKey("https://en.wikipedia.org/wiki/Alan_Turing"))

	assert.Equal(t, "wikiquiz:quiz:id:42", QuizIDKey(42))
}
