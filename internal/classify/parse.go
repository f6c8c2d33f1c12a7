package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

var knownInstitutions = map[string]bool{
	"cbe":       true,
	"telebirr":  true,
	"dashen":    true,
	"cbebirr":   true,
	"abyssinia": true,
}

// parseClassification parses the model's JSON verdict, tolerating
// markdown fences and surrounding chatter.
func parseClassification(text string) (*Classification, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	var c Classification
	if err := json.Unmarshal([]byte(text[start:end+1]), &c); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	c.Institution = strings.ToLower(strings.TrimSpace(c.Institution))
	c.Reference = strings.TrimSpace(c.Reference)
	c.AccountSuffix = strings.TrimSpace(c.AccountSuffix)
	c.Phone = strings.TrimSpace(c.Phone)

	if !knownInstitutions[c.Institution] {
		return nil, fmt.Errorf("model returned unknown institution %q", c.Institution)
	}
	if c.Reference == "" {
		return nil, fmt.Errorf("model could not read a transaction reference")
	}
	return &c, nil
}
