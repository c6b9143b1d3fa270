package registry

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Summer Lookbook", "summer-lookbook"},
		{"punctuation stripped", "Café & Co.!", "caf-co"},
		{"whitespace collapsed", "  a \t\n b  ", "a-b"},
		{"hyphen runs", "a---b -- c", "a-b-c"},
		{"underscores kept", "snake_case name", "snake_case-name"},
		{"empty", "", DefaultSlug},
		{"only symbols", "!!! ???", DefaultSlug},
		{"only hyphens", "----", DefaultSlug},
		{"non-ascii", "東京", DefaultSlug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("abcd ", 20))
	assert.LessOrEqual(t, len(got), MaxSlugLength)
	assert.False(t, strings.HasSuffix(got, "-"), "no trailing hyphen after truncation: %q", got)

	exact := strings.Repeat("a", 49) + " b"
	assert.Equal(t, strings.Repeat("a", 49), Slugify(exact))
}

func TestSlugify_Properties(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]+(-[a-z0-9_]+)*$`)
	inputs := []string{
		"Hello World", "  --Leading and trailing--  ", "MiXeD CaSe 123",
		"emoji 🎉 party", "tabs\tand\nnewlines", "a/b\\c", strings.Repeat("x-", 60),
		"Ünïcödé Nämé", "-", "___",
	}
	for _, in := range inputs {
		got := Slugify(in)
		assert.NotEmpty(t, got, in)
		assert.LessOrEqual(t, len(got), MaxSlugLength, in)
		assert.Regexp(t, valid, got, in)
	}
}

func TestGenerateUniqueSlug(t *testing.T) {
	existing := map[string]bool{}

	first := GenerateUniqueSlug("My Config", existing)
	assert.Equal(t, "my-config", first)
	existing[first] = true

	second := GenerateUniqueSlug("My Config", existing)
	assert.Equal(t, "my-config-2", second)
	existing[second] = true

	assert.Equal(t, "my-config-3", GenerateUniqueSlug("my config!", existing))
	assert.Equal(t, "other", GenerateUniqueSlug("Other", existing))
}
