package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

var fallbackClassification = types.ChangeClassification{
	Type:         types.ChangeTypeLogic,
	IsMeaningful: true,
	Confidence:   0.6,
	Reasoning:    "fallback",
}

func TestDecodeOr(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expected  types.ChangeClassification
		malformed bool
	}{
		{
			name:     "valid object",
			raw:      `{"type":"feature","isMeaningful":true,"isPublicApi":true,"confidence":0.8,"reasoning":"new function"}`,
			expected: types.ChangeClassification{Type: types.ChangeTypeFeature, IsMeaningful: true, IsPublicAPI: true, Confidence: 0.8, Reasoning: "new function"},
		},
		{
			name:     "object in code fence",
			raw:      "```json\n{\"type\":\"fix\",\"isMeaningful\":true,\"confidence\":0.7}\n```",
			expected: types.ChangeClassification{Type: types.ChangeTypeFix, IsMeaningful: true, Confidence: 0.7},
		},
		{
			name:      "truncated garbage",
			raw:       `not json at all`,
			expected:  fallbackClassification,
			malformed: true,
		},
		{
			name:      "wrong field type",
			raw:       `{"isMeaningful":"yes"}`,
			expected:  fallbackClassification,
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeOr(json.RawMessage(tt.raw), fallbackClassification)
			assert.Equal(t, tt.expected, got)
			if tt.malformed {
				assert.Equal(t, KindMalformedResponse, KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCallWithFallback_TransportError(t *testing.T) {
	transportErr := newError(KindNetworkUnavailable, 0, nil)

	got, err := CallWithFallback(context.Background(), fallbackClassification, func(ctx context.Context) (json.RawMessage, error) {
		return nil, transportErr
	})
	assert.Equal(t, fallbackClassification, got)
	assert.ErrorIs(t, err, transportErr)
}

func TestCallWithFallback_Success(t *testing.T) {
	got, err := CallWithFallback(context.Background(), types.SynthesizeResponse{Skip: true}, func(ctx context.Context) (json.RawMessage, error) {
		return json.RawMessage(`{"skip":false,"comment":"Applies the rate as a percentage of the amount.","confidence":0.9}`), nil
	})
	require.NoError(t, err)
	assert.False(t, got.Skip)
	assert.Equal(t, "Applies the rate as a percentage of the amount.", got.Comment)
}
