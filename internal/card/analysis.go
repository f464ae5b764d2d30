package card

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Analysis is the structured result of the vision call: what the photo
// shows and the raw attribute roll for it. Category is echoed verbatim,
// marker emoji included.
type Analysis struct {
	Subject      string `json:"subject"`
	VisualTraits string `json:"visualTraits"`
	Category     string `json:"category"`
	Strength     int64  `json:"strength"`
	Stamina      int64  `json:"stamina"`
	Agility      int64  `json:"agility"`
}

// PlaceholderValues maps every template placeholder to its value from
// this analysis.
func (a Analysis) PlaceholderValues() map[string]string {
	return map[string]string{
		"subject":      a.Subject,
		"visualTraits": a.VisualTraits,
		"category":     a.Category,
		"strength":     strconv.FormatInt(a.Strength, 10),
		"stamina":      strconv.FormatInt(a.Stamina, 10),
		"agility":      strconv.FormatInt(a.Agility, 10),
	}
}

// ParseAnalysis decodes the vision reply. Models wrap JSON in markdown
// fences despite instructions not to, so fencing is stripped first.
// Every field must be present and well typed; there is no default
// substitution. The instructed [0,100] range is not enforced here.
func ParseAnalysis(raw string) (Analysis, error) {
	var payload struct {
		Subject      *string `json:"subject"`
		VisualTraits *string `json:"visualTraits"`
		Category     *string `json:"category"`
		Strength     *int64  `json:"strength"`
		Stamina      *int64  `json:"stamina"`
		Agility      *int64  `json:"agility"`
	}

	text := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return Analysis{}, fmt.Errorf("analysis reply is not valid JSON: %w", err)
	}

	missing := ""
	switch {
	case payload.Subject == nil:
		missing = "subject"
	case payload.VisualTraits == nil:
		missing = "visualTraits"
	case payload.Category == nil:
		missing = "category"
	case payload.Strength == nil:
		missing = "strength"
	case payload.Stamina == nil:
		missing = "stamina"
	case payload.Agility == nil:
		missing = "agility"
	}
	if missing != "" {
		return Analysis{}, fmt.Errorf("analysis reply is missing %q", missing)
	}

	return Analysis{
		Subject:      strings.TrimSpace(*payload.Subject),
		VisualTraits: strings.TrimSpace(*payload.VisualTraits),
		Category:     strings.TrimSpace(*payload.Category),
		Strength:     *payload.Strength,
		Stamina:      *payload.Stamina,
		Agility:      *payload.Agility,
	}, nil
}

// StripCodeFence removes a surrounding markdown code fence, optionally
// tagged (```json), and returns the inner text unchanged. Input without
// a fence passes through untouched apart from whitespace trimming.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 && isFenceTag(text[:idx]) {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// isFenceTag reports whether the first fence line is a language tag
// ("json", "JSON", or empty) rather than payload text.
func isFenceTag(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.EqualFold(line, "json")
}
