package yts

import (
	"regexp"
	"strings"
)

// Quality is a release quality filter for searches.
type Quality string

const (
	QualityAny   Quality = ""
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality2160p Quality = "2160p"
)

var qualityPatterns = []struct {
	quality Quality
	re      *regexp.Regexp
}{
	{Quality720p, regexp.MustCompile(`(?i)720p`)},
	{Quality1080p, regexp.MustCompile(`(?i)1080p`)},
	{Quality2160p, regexp.MustCompile(`(?i)2160p`)},
}

// ParseQuery splits a raw message into a search term and an optional quality
// filter. The quality token may appear anywhere in the text and in any case;
// every occurrence is removed from the returned term. Whitespace is collapsed.
func ParseQuery(text string) (string, Quality) {
	term := strings.Join(strings.Fields(text), " ")
	for _, qp := range qualityPatterns {
		if !qp.re.MatchString(term) {
			continue
		}
		term = qp.re.ReplaceAllString(term, "")
		return strings.Join(strings.Fields(term), " "), qp.quality
	}
	return term, QualityAny
}
