package httpapi

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "Should keep short values", in: "ada", n: 5, want: "ada"},
		{name: "Should cut ascii at n", in: "abcdef", n: 3, want: "abc"},
		{name: "Should count runes instead of bytes", in: "ééééé", n: 3, want: "ééé"},
		{name: "Should not split multi-byte runes", in: "a€b", n: 2, want: "a€"},
		{name: "Should keep a value of exactly n runes", in: "日本語", n: 3, want: "日本語"},
		{name: "Should return empty for zero", in: "abc", n: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}

	t.Run("Should keep rejected values valid UTF-8", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("ü", 150)
		got := truncate(long, 100)
		assert.Equal(t, 100, utf8.RuneCountInString(got))
		assert.True(t, utf8.ValidString(got))
	})
}
