// Package filter implements the pre-download accept/reject policy over
// extracted metadata. Evaluation is pure and deterministic: exclusion
// keywords, then the optional inclusion set, then duration bounds, first
// failure wins.
package filter

import (
	"fmt"
	"regexp"

	"github.com/ytget/batchgrab/internal/config"
)

type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

// Filter evaluates retrieval candidates against a settings snapshot.
type Filter struct {
	exclude     []keywordPattern
	include     []keywordPattern
	minDuration int
	maxDuration int
}

// New compiles the keyword patterns from a settings snapshot. Keywords match
// case-insensitively as whole words anywhere in the title.
func New(s config.Settings) *Filter {
	f := &Filter{
		minDuration: s.MinVideoLength,
		maxDuration: s.MaxVideoLength,
	}
	for _, kw := range s.ExcludeKeywords {
		f.exclude = append(f.exclude, compileKeyword(kw))
	}
	for _, kw := range s.IncludeKeywords {
		f.include = append(f.include, compileKeyword(kw))
	}
	return f
}

func compileKeyword(keyword string) keywordPattern {
	return keywordPattern{
		keyword: keyword,
		re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`),
	}
}

// Evaluate applies the policy to one candidate. durationKnown=false exempts
// the duration checks entirely; a known zero is a real value and can trip the
// minimum bound. The returned reason is empty on accept.
func (f *Filter) Evaluate(title string, durationSec int, durationKnown bool) (bool, string) {
	for _, p := range f.exclude {
		if p.re.MatchString(title) {
			return false, fmt.Sprintf("title matches excluded keyword %q", p.keyword)
		}
	}

	if len(f.include) > 0 {
		matched := false
		for _, p := range f.include {
			if p.re.MatchString(title) {
				matched = true
				break
			}
		}
		if !matched {
			return false, "title does not match any include keyword"
		}
	}

	if durationKnown {
		if durationSec < f.minDuration {
			return false, fmt.Sprintf("duration (%ds) below minimum (%ds)", durationSec, f.minDuration)
		}
		if f.maxDuration > 0 && durationSec > f.maxDuration {
			return false, fmt.Sprintf("duration (%ds) exceeds maximum (%ds)", durationSec, f.maxDuration)
		}
	}

	return true, ""
}
