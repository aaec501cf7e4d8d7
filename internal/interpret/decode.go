package interpret

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/voice-ledger/internal/domain"
)

// decodeDraft parses the model's raw answer into a draft. The model is
// untrusted: every required field must be present with the right type, or
// the whole answer is rejected. There are no partially-filled drafts.
func decodeDraft(raw string) (domain.DraftTransaction, error) {
	var zero domain.DraftTransaction

	clean := cleanModelJSON(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return zero, fmt.Errorf("decodeDraft: unmarshal JSON: %w", err)
	}

	kindRaw, err := getStringField(obj, "kind")
	if err != nil {
		return zero, err
	}
	amount, err := getFloat64Field(obj, "amount")
	if err != nil {
		return zero, err
	}
	category, err := getStringField(obj, "category")
	if err != nil {
		return zero, err
	}
	description, err := getStringField(obj, "description")
	if err != nil {
		return zero, err
	}

	return domain.DraftTransaction{
		Kind:        domain.NormalizeKind(kindRaw),
		Amount:      amount,
		Category:    category,
		Description: description,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the
// model ignores the strict-JSON instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}' if junk remains.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func getStringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing required field %q", key)
	}
	val, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return val, nil
}

func getFloat64Field(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	val, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return val, nil
}
