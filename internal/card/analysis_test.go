package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{"subject":"Birch tree","visualTraits":"white bark, black markings","category":"Natural 🌿","strength":40,"stamina":70,"agility":20}`

func TestParseAnalysis(t *testing.T) {
	a, err := ParseAnalysis(analysisJSON)
	require.NoError(t, err)

	assert.Equal(t, "Birch tree", a.Subject)
	assert.Equal(t, "white bark, black markings", a.VisualTraits)
	assert.Equal(t, "Natural 🌿", a.Category)
	assert.Equal(t, int64(40), a.Strength)
	assert.Equal(t, int64(70), a.Stamina)
	assert.Equal(t, int64(20), a.Agility)
}

func TestParseAnalysisFenced(t *testing.T) {
	for _, raw := range []string{
		"```json\n" + analysisJSON + "\n```",
		"```\n" + analysisJSON + "\n```",
		"  ```json\n" + analysisJSON + "\n```  ",
	} {
		a, err := ParseAnalysis(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, "Birch tree", a.Subject)
	}
}

func TestParseAnalysisMissingField(t *testing.T) {
	_, err := ParseAnalysis(`{"subject":"Birch tree","visualTraits":"white","category":"Natural 🌿","strength":40,"stamina":70}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agility")
}

func TestParseAnalysisWrongType(t *testing.T) {
	_, err := ParseAnalysis(`{"subject":"Birch tree","visualTraits":"white","category":"Natural 🌿","strength":"forty","stamina":70,"agility":20}`)
	assert.Error(t, err)
}

func TestParseAnalysisNotJSON(t *testing.T) {
	_, err := ParseAnalysis("I cannot identify this object.")
	assert.Error(t, err)
}

func TestParseAnalysisOutOfRangePassesThrough(t *testing.T) {
	a, err := ParseAnalysis(`{"subject":"Engine","visualTraits":"steel","category":"Mechanical ⚙️","strength":150,"stamina":-5,"agility":0}`)
	require.NoError(t, err)
	assert.Equal(t, int64(150), a.Strength)
	assert.Equal(t, int64(-5), a.Stamina)
}

func TestStripCodeFenceRoundTrip(t *testing.T) {
	payload := `{"a":1,"b":"x"}`
	for _, wrapped := range []string{
		payload,
		"```json\n" + payload + "\n```",
		"```JSON\n" + payload + "\n```",
		"```\n" + payload + "\n```",
		"``` " + payload + " ```",
		"\n\n```json\n" + payload + "\n```\n\n",
	} {
		assert.Equal(t, payload, StripCodeFence(wrapped), "input %q", wrapped)
	}
}

func TestStripCodeFenceKeepsInnerText(t *testing.T) {
	// Multi-line payload inside the fence survives untouched.
	payload := "{\n  \"a\": 1\n}"
	assert.Equal(t, payload, StripCodeFence("```json\n"+payload+"\n```"))
}

func TestPlaceholderValues(t *testing.T) {
	a := Analysis{
		Subject:      "Birch tree",
		VisualTraits: "white bark",
		Category:     "Natural 🌿",
		Strength:     40,
		Stamina:      70,
		Agility:      20,
	}
	values := a.PlaceholderValues()
	assert.Equal(t, "Birch tree", values["subject"])
	assert.Equal(t, "40", values["strength"])
	assert.Equal(t, "70", values["stamina"])
	assert.Equal(t, "20", values["agility"])
	assert.Len(t, values, 6)
}
