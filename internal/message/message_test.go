package message

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		seconds  int
		want     string
	}{
		{name: "placeholder only", template: "%S", seconds: 42, want: "42"},
		{name: "placeholder inside text", template: "x%Sy", seconds: 7, want: "x7y"},
		{name: "no placeholder", template: "press a key", seconds: 9, want: "press a key"},
		{name: "empty template", template: "", seconds: 3, want: ""},
		{name: "placeholder at end", template: "left: %S", seconds: 5, want: "left: 5"},
		{name: "lowercase is literal", template: "%s left", seconds: 5, want: "%s left"},
		{name: "trailing percent", template: "100%", seconds: 1, want: "100%"},
		{name: "double percent", template: "%%S", seconds: 2, want: "%2"},
		{name: "line breaks stripped", template: "a\r\nb%S\n", seconds: 4, want: "ab4"},
		{name: "zero", template: "T-%S", seconds: 0, want: "T-0"},
		{name: "default", template: Default, seconds: 10, want: "Waiting for 10 seconds, press any key to exit.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.seconds))
		})
	}
}

func TestRender_IgnoresSecondsWithoutPlaceholder(t *testing.T) {
	template := "no substitution\nhere"
	want := "no substitutionhere"

	for _, s := range []int{0, 1, 59, math.MaxInt32} {
		assert.Equal(t, want, Render(template, s), "seconds=%d", s)
	}
}

func TestRender_LongestExpansion(t *testing.T) {
	template := strings.Repeat("x", MaxTemplateLen-len(Placeholder)) + Placeholder
	require.NoError(t, Validate(template))

	got := Render(template, math.MinInt)
	assert.Equal(t, strings.Repeat("x", MaxTemplateLen-len(Placeholder))+strconv.Itoa(math.MinInt), got)
	assert.LessOrEqual(t, len(got), len(template)+maxDigits)
}

func TestValidate(t *testing.T) {
	t.Run("at limit", func(t *testing.T) {
		assert.NoError(t, Validate(strings.Repeat("x", MaxTemplateLen)))
	})

	t.Run("over limit", func(t *testing.T) {
		err := Validate(strings.Repeat("x", MaxTemplateLen+1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "256 bytes")
	})

	t.Run("default", func(t *testing.T) {
		assert.NoError(t, Validate(Default))
	})

	t.Run("no placeholder", func(t *testing.T) {
		assert.NoError(t, Validate("press any key"))
	})

	t.Run("two placeholders", func(t *testing.T) {
		err := Validate("%S and %S")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at most one allowed")
	})

	t.Run("lowercase does not count", func(t *testing.T) {
		assert.NoError(t, Validate("%S of %s"))
	})
}
