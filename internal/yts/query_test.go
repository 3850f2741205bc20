package yts

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		term    string
		quality Quality
	}{
		{"plain", "inception", "inception", QualityAny},
		{"trailing quality", "inception 1080p", "inception", Quality1080p},
		{"leading quality", "720p inception", "inception", Quality720p},
		{"uppercase quality", "inception 2160P", "inception", Quality2160p},
		{"mixed case quality", "inception 1080P", "inception", Quality1080p},
		{"extra whitespace", "  the   matrix  720p ", "the matrix", Quality720p},
		{"first listed quality wins", "dune 1080p 720p", "dune 1080p", Quality720p},
		{"empty", "", "", QualityAny},
		{"quality only", "1080p", "", Quality1080p},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, quality := ParseQuery(tt.text)
			assert.Equal(t, tt.term, term)
			assert.Equal(t, tt.quality, quality)
		})
	}
}

func TestParseQueryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("appended quality token is detected and stripped", prop.ForAll(
		func(base string, token string) bool {
			term, quality := ParseQuery(base + " " + token)
			return term == base && strings.EqualFold(string(quality), token)
		},
		gen.AlphaString(),
		gen.OneConstOf("720p", "1080p", "2160p", "720P", "1080P", "2160P"),
	))

	properties.Property("text without quality tokens passes through", prop.ForAll(
		func(a string, b string) bool {
			term, quality := ParseQuery(a + "   " + b)
			want := strings.Join(strings.Fields(a+" "+b), " ")
			return term == want && quality == QualityAny
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("every occurrence of the matched token is stripped", prop.ForAll(
		func(base string, token string) bool {
			term, quality := ParseQuery(token + " " + base + " " + token)
			return quality == Quality(token) &&
				!strings.Contains(strings.ToLower(term), token)
		},
		gen.AlphaString(),
		gen.OneConstOf("720p", "1080p", "2160p"),
	))

	properties.TestingRun(t)
}
