package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ExtractJSONObject pulls a single JSON object out of model output. Models
// wrap answers in code fences or surround them with prose, so it tries, in
// order: the raw text, the first fenced block, the first balanced {...}
// and finally the text up to the last closing brace.
func ExtractJSONObject(response string) (json.RawMessage, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, &FormatViolationError{Reason: "empty response"}
	}

	// 1. Raw text
	if json.Valid([]byte(response)) && strings.HasPrefix(response, "{") {
		return json.RawMessage(response), nil
	}

	// 2. Fenced code block
	if strings.Contains(response, "```") {
		if block := extractFromCodeBlock(response); block != "" && json.Valid([]byte(block)) {
			return json.RawMessage(block), nil
		}
	}

	// 3. First balanced object
	if obj := extractBalanced(response, '{', '}'); obj != "" && json.Valid([]byte(obj)) {
		return json.RawMessage(obj), nil
	}

	// 4. Object truncated after its last complete field
	if repaired, ok := repairTruncatedObject(response); ok {
		return json.RawMessage(repaired), nil
	}

	return nil, &FormatViolationError{
		Response: truncateString(response, 500),
		Reason:   "could not find a JSON object",
	}
}

// ParseJSONObject extracts a JSON object from response and decodes it into v.
func ParseJSONObject(response string, v any) error {
	raw, err := ExtractJSONObject(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &FormatViolationError{
			Response: truncateString(string(raw), 500),
			Reason:   fmt.Sprintf("object does not match expected shape: %v", err),
		}
	}
	return nil
}

type FormatViolationError struct {
	Response string
	Reason   string
}

func (e *FormatViolationError) Error() string {
	if e.Response == "" {
		return fmt.Sprintf("format violation: %s", e.Reason)
	}
	return fmt.Sprintf("format violation: %s. Response: %s", e.Reason, e.Response)
}

func IsFormatViolation(err error) bool {
	var fv *FormatViolationError
	return errors.As(err, &fv)
}

func extractBalanced(response string, open, close byte) string {
	startIdx := strings.IndexByte(response, open)
	if startIdx == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := startIdx; i < len(response); i++ {
		char := response[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' && inString {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch char {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 && char == close {
				return response[startIdx : i+1]
			}
		}
	}
	return ""
}

func repairTruncatedObject(response string) (string, bool) {
	start := strings.Index(response, "{")
	if start == -1 {
		return "", false
	}
	body := strings.TrimSpace(response[start:])

	// drop a dangling partial field, then close the object
	if idx := strings.LastIndex(body, ","); idx > 0 {
		candidate := strings.TrimSpace(body[:idx]) + "}"
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	candidate := body + "}"
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return "", false
}

func extractFromCodeBlock(response string) string {
	lines := strings.Split(response, "\n")
	inCodeBlock := false
	var jsonLines []string

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCodeBlock {
				break
			}
			inCodeBlock = true
			continue
		}
		if inCodeBlock {
			jsonLines = append(jsonLines, line)
		}
	}

	if len(jsonLines) > 0 {
		return strings.TrimSpace(strings.Join(jsonLines, "\n"))
	}
	return ""
}

// truncateString truncates a string to a maximum length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Truncate is truncateString for callers outside the package.
func Truncate(s string, maxLen int) string {
	return truncateString(s, maxLen)
}
