// Package matching scores a CV's keywords against a job offer's keywords.
//
// The percentage answers "what fraction of the job's requirements does this
// candidate satisfy", so the denominator is always the offer's keyword count.
package matching

import (
	"math"
	"strings"
)

// Result holds both derived CV fields.
type Result struct {
	Matched    int `json:"matched_keywords_count"`
	Percentage int `json:"match_percentage"`
}

// Score computes the matched count and the percentage in one pass. It is the
// only place derived CV fields should come from.
func Score(cvKeywords, offerKeywords []string) Result {
	return Result{
		Matched:    MatchedKeywordsCount(cvKeywords, offerKeywords),
		Percentage: MatchPercentage(cvKeywords, offerKeywords),
	}
}

// MatchedKeywordsCount returns how many CV keywords case-insensitively equal
// at least one offer keyword. Each CV entry is counted once per occurrence in
// the CV list; duplicates are not collapsed here.
func MatchedKeywordsCount(cvKeywords, offerKeywords []string) int {
	if len(cvKeywords) == 0 || len(offerKeywords) == 0 {
		return 0
	}

	offer := make(map[string]struct{}, len(offerKeywords))
	for _, k := range offerKeywords {
		offer[strings.ToLower(k)] = struct{}{}
	}

	matched := 0
	for _, k := range cvKeywords {
		if _, ok := offer[strings.ToLower(k)]; ok {
			matched++
		}
	}
	return matched
}

// MatchPercentage returns round(matched / len(offerKeywords) * 100).
// An empty offer or an empty CV scores 0.
func MatchPercentage(cvKeywords, offerKeywords []string) int {
	if len(offerKeywords) == 0 || len(cvKeywords) == 0 {
		return 0
	}
	matched := MatchedKeywordsCount(cvKeywords, offerKeywords)
	return int(math.Round(float64(matched) / float64(len(offerKeywords)) * 100))
}

// NormalizeKeywords is applied where keywords enter the system. It trims
// surrounding whitespace, drops blanks, and removes case-insensitive
// duplicates keeping the first spelling. A nil input stays nil.
func NormalizeKeywords(keywords []string) []string {
	if keywords == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	return out
}
