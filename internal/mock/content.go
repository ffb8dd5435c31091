package mock

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// NormalizeContent strips markdown code fences that generation backends wrap
// around their output despite instructions, then verifies the remainder is
// well-formed JSON. The validated bytes are stored as-is so reads stay
// byte-for-byte equivalent.
func NormalizeContent(text string) (datatypes.JSON, error) {
	stripped := stripCodeFences(text)
	if strings.TrimSpace(stripped) == "" {
		return nil, &MalformedContentError{Err: fmt.Errorf("empty content")}
	}
	if !json.Valid([]byte(stripped)) {
		return nil, &MalformedContentError{Err: fmt.Errorf("invalid JSON near %q", head(stripped, 40))}
	}
	return datatypes.JSON(stripped), nil
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		// Drop the language tag line, e.g. ```json.
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
