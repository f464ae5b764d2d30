package card

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeValue classifies a raw stat string once, at ingestion. Only
// strict whole-number text becomes an integer: no decimal point, no
// residual characters, no separators. Anything else stays a string,
// verbatim. "40.0" is therefore a string, not 40.
func NormalizeValue(raw string) StatValue {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(n)
	}
	return StringValue(raw)
}

// rawStatValue keeps the literal reply token so normalization sees the
// same text regardless of whether the model quoted the number.
type rawStatValue string

func (v *rawStatValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = rawStatValue(s)
		return nil
	}
	*v = rawStatValue(data)
	return nil
}

// ParseStats decodes the stats reply into an ordered stat block. The
// reply is expected to be a minified JSON object with a "stats" array;
// array order is preserved. Fencing is stripped the same way as for
// the analysis reply.
func ParseStats(raw string) ([]StatEntry, error) {
	var payload struct {
		Stats []struct {
			Category string       `json:"category"`
			Value    rawStatValue `json:"value"`
		} `json:"stats"`
	}

	text := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("stats reply is not valid JSON: %w", err)
	}
	if len(payload.Stats) == 0 {
		return nil, fmt.Errorf("stats reply carried no entries")
	}

	entries := make([]StatEntry, 0, len(payload.Stats))
	for _, s := range payload.Stats {
		category := strings.TrimSpace(s.Category)
		if category == "" {
			return nil, fmt.Errorf("stats reply entry is missing a category")
		}
		entries = append(entries, StatEntry{
			Category: category,
			Value:    NormalizeValue(string(s.Value)),
		})
	}
	return entries, nil
}
