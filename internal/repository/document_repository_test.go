package repository

import "testing"

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"ipa":     `%ipa%`,
		"100%":    `%100\%%`,
		"kelas_5": `%kelas\_5%`,
		`a\b`:     `%a\\b%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
