package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullValues() map[string]string {
	return map[string]string{
		"subject":      "Birch tree",
		"visualTraits": "white bark, black markings",
		"category":     "Natural 🌿",
		"strength":     "40",
		"stamina":      "70",
		"agility":      "20",
	}
}

func TestRenderLeavesNoPlaceholders(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	for _, id := range []ID{Analysis, Title, Stats, Art} {
		out, err := r.Render(id, fullValues())
		require.NoError(t, err)
		assert.NotContains(t, out, "{{", "template %q left a placeholder", id)
	}
}

func TestRenderIsPure(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	first, err := r.Render(Stats, fullValues())
	require.NoError(t, err)
	second, err := r.Render(Stats, fullValues())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderKeepsUnsuppliedPlaceholders(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	out, err := r.Render(Title, map[string]string{"subject": "Birch tree"})
	require.NoError(t, err)
	assert.Contains(t, out, "Birch tree")
	assert.Contains(t, out, "{{category}}", "missing values must stay visible")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	_, err = r.Render(ID("bogus"), nil)
	assert.Error(t, err)
}

func TestEveryPlaceholderHasASupplier(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	values := fullValues()
	for _, id := range []ID{Analysis, Title, Stats, Art} {
		for _, name := range r.Placeholders(id) {
			_, ok := values[name]
			assert.True(t, ok, "template %q references %q with no supplier field", id, name)
		}
	}
}

func TestAnalysisTemplateListsEveryCategory(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	body, err := r.Render(Analysis, nil)
	require.NoError(t, err)
	for _, c := range Categories {
		assert.Contains(t, body, c)
	}
}

func TestOverrides(t *testing.T) {
	t.Run("replaces body", func(t *testing.T) {
		r, err := NewRegistry(Overrides{Title: "Name the {{category}} card."})
		require.NoError(t, err)

		out, err := r.Render(Title, fullValues())
		require.NoError(t, err)
		assert.Equal(t, "Name the Natural 🌿 card.", out)
	})

	t.Run("rejects unknown template id", func(t *testing.T) {
		_, err := NewRegistry(Overrides{ID("bogus"): "x"})
		assert.Error(t, err)
	})

	t.Run("rejects unknown placeholder", func(t *testing.T) {
		_, err := NewRegistry(Overrides{Title: "Hello {{nonsense}}"})
		assert.Error(t, err)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		_, err := NewRegistry(Overrides{Title: "   "})
		assert.Error(t, err)
	})
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	content := "[templates]\ntitle = \"Name the {{category}} card.\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	overrides, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.True(t, strings.HasPrefix(overrides[Title], "Name the"))

	_, err = LoadOverrides(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
