package llm

import (
	"context"
	"encoding/json"

	"github.com/Dheerajkumar69/AutoReadme/internal/utils"
)

// DecodeOr decodes a JSON object into T. When raw is not an object of that
// shape it returns fallback and a MalformedResponse error.
func DecodeOr[T any](raw json.RawMessage, fallback T) (T, error) {
	var out T
	if err := utils.ParseJSONObject(string(raw), &out); err != nil {
		return fallback, newError(KindMalformedResponse, 0, err)
	}
	return out, nil
}

// CallWithFallback runs call and decodes its answer into T. Any failure,
// transport or decoding, yields fallback; the error is returned for logging
// only and the value is always usable.
func CallWithFallback[T any](ctx context.Context, fallback T, call func(ctx context.Context) (json.RawMessage, error)) (T, error) {
	raw, err := call(ctx)
	if err != nil {
		return fallback, err
	}
	return DecodeOr(raw, fallback)
}
