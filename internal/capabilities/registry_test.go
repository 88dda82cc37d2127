package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryKeepsFileOrder(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)

	var ids []string
	for _, m := range r.List() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"claude-3.5-sonnet", "claude-3-haiku", "gpt-4", "gpt-3.5-turbo", "gemini-2.5-flash", "lorem-fast"}, ids)
	assert.Equal(t, "gpt-4", r.Default().ID)

	m, ok := r.Get("claude-3-haiku")
	require.True(t, ok)
	assert.Equal(t, "anthropic", m.Provider)
	assert.Equal(t, "Claude 3 Haiku", m.DisplayName)

	_, ok = r.Get("gpt-5")
	assert.False(t, ok)
}

func TestNewRegistryDefaultOverride(t *testing.T) {
	tests := []struct {
		name         string
		defaultModel string
		want         string
	}{
		{"known override", "claude-3-haiku", "claude-3-haiku"},
		{"unknown override ignored", "gpt-5", "gpt-4"},
		{"empty", "", "gpt-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.defaultModel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Default().ID)
		})
	}
}

func TestParseEmptyCatalogue(t *testing.T) {
	_, err := parse([]byte("models: {}\n"), "")
	assert.Error(t, err)
}
