package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when model output holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in model output")

// ExtractJSON strips markdown code fences and returns the outermost
// {...} span of text.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}

// DecodeJSON extracts and unmarshals the JSON object in text into out.
func DecodeJSON(text string, out any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(removeTrailingCommas(raw)), out); err != nil {
		return fmt.Errorf("decode model JSON: %w", err)
	}
	return nil
}

// GenerateJSON asks gen for prompt and decodes the answer into out, retrying
// transient provider failures and malformed output.
func GenerateJSON(ctx context.Context, gen Generator, prompt string, retry RetryConfig, out any) error {
	return Retry(ctx, gen.Name(), retry, func() error {
		text, err := gen.Generate(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrNotConfigured) {
				return Permanent(err)
			}
			return err
		}
		return DecodeJSON(text, out)
	})
}

// removeTrailingCommas drops commas that directly precede a closing bracket,
// ignoring string contents.
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}
