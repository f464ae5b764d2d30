// Package card holds the domain records of the generation pipeline: the
// analysis produced by the vision call, the stat entries derived from it,
// and the finished trading card.
package card

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// StatValue is either an integer or a string. The variant is chosen once,
// when the raw stat text is normalized, and never changes afterwards.
type StatValue struct {
	num   int64
	text  string
	isInt bool
}

func IntValue(n int64) StatValue {
	return StatValue{num: n, isInt: true}
}

func StringValue(s string) StatValue {
	return StatValue{text: s}
}

// Int returns the integer variant. ok is false for string values.
func (v StatValue) Int() (n int64, ok bool) {
	return v.num, v.isInt
}

// IsInt reports whether the integer variant is active.
func (v StatValue) IsInt() bool {
	return v.isInt
}

// Display renders the value for captions and logs.
func (v StatValue) Display() string {
	if v.isInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.text
}

func (v StatValue) MarshalJSON() ([]byte, error) {
	if v.isInt {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

func (v *StatValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("stat value is neither string nor integer: %w", err)
	}
	*v = IntValue(n)
	return nil
}

// StatEntry is one row of a card's stat block. Order within a card is
// significant and preserved as decoded.
type StatEntry struct {
	Category string    `json:"category"`
	Value    StatValue `json:"value"`
}

// Card is the finished, immutable output of a generation attempt.
type Card struct {
	ID            string      `json:"id"`
	DisplayNumber int64       `json:"display_number"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	ImageRef      string      `json:"image_ref"`
	Stats         []StatEntry `json:"stats"`
	CreatedAt     time.Time   `json:"created_at"`
}

// New assembles a Card with a fresh unique id.
func New(displayNumber int64, title, description, imageRef string, stats []StatEntry) Card {
	return Card{
		ID:            uuid.NewString(),
		DisplayNumber: displayNumber,
		Title:         title,
		Description:   description,
		ImageRef:      imageRef,
		Stats:         stats,
		CreatedAt:     time.Now().UTC(),
	}
}
