package llm

import (
	"testing"

	"github.com/BaSui01/senate/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"", BackendGPT4},
		{"gpt-4", BackendGPT4},
		{"  GPT-4o ", BackendGPT4o},
		{"openai-compatible", BackendOpenAICompatible},
		{"echo", BackendEcho},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBackend_Unknown(t *testing.T) {
	_, err := ParseBackend("llama-70b")
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.ErrUnsupportedBackend))
	assert.Contains(t, err.Error(), "llama-70b")
	assert.Contains(t, err.Error(), "supported: gpt-4, gpt-4o, openai-compatible, echo")
}

func TestSupportedBackends_ReturnsCopy(t *testing.T) {
	a := SupportedBackends()
	a[0] = "mutated"
	assert.Equal(t, BackendGPT4, SupportedBackends()[0])
	assert.False(t, Backend("mutated").Valid())
}
