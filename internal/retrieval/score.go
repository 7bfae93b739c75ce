package retrieval

import (
	"strings"

	"github.com/rcliao/agent-ledger/internal/model"
)

// DefaultNoKeywordScore is the content-match score when no keywords exist.
const DefaultNoKeywordScore = 0.5

// ContentMatchScore scores content against keywords by substring presence:
// 0.7 * matched fraction + 0.3 * tier weight, clipped to [0,1]. How often a
// keyword occurs does not matter.
func ContentMatchScore(content string, keywords []string, tier model.PriorityTier) float64 {
	if len(keywords) == 0 {
		return DefaultNoKeywordScore
	}
	lc := strings.ToLower(content)
	matched := 0
	for _, k := range keywords {
		if strings.Contains(lc, k) {
			matched++
		}
	}
	return clip(0.7*float64(matched)/float64(len(keywords)) + 0.3*tier.Weight())
}

// KeywordSearchScore scores content by whole-token keyword presence:
// 0.8 * matched fraction + 0.2 * tier weight, clipped to [0,1].
func KeywordSearchScore(content string, keywords []string, tier model.PriorityTier) float64 {
	if len(keywords) == 0 {
		return clip(0.2 * tier.Weight())
	}
	tokens := map[string]bool{}
	for _, t := range tokenize(content) {
		tokens[t] = true
	}
	matched := 0
	for _, k := range keywords {
		if tokens[k] {
			matched++
		}
	}
	return clip(0.8*float64(matched)/float64(len(keywords)) + 0.2*tier.Weight())
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
