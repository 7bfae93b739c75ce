package retrieval

import (
	"math"
	"testing"

	"github.com/rcliao/agent-ledger/internal/model"
)

var tiers = []model.PriorityTier{model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestContentMatchScore(t *testing.T) {
	kw := []string{"redis", "cache", "eviction", "ttl"}
	got := ContentMatchScore("Redis CACHE sizing", kw, model.PriorityHigh)
	want := 0.7*0.5 + 0.3*0.8
	if !almost(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got := ContentMatchScore("anything", nil, model.PriorityLow); got != DefaultNoKeywordScore {
		t.Errorf("expected default score with no keywords, got %v", got)
	}
}

func TestContentMatchIsPresenceOnly(t *testing.T) {
	kw := []string{"redis", "kafka"}
	once := ContentMatchScore("redis", kw, model.PriorityMedium)
	many := ContentMatchScore("redis redis redis redis redis", kw, model.PriorityMedium)
	if once != many {
		t.Errorf("repetition changed score: %v vs %v", once, many)
	}
}

func TestKeywordSearchScore(t *testing.T) {
	kw := []string{"redis", "cache"}
	got := KeywordSearchScore("redis: cache layout", kw, model.PriorityCritical)
	if !almost(got, 1.0) {
		t.Errorf("expected 1.0, got %v", got)
	}
	// whole-token match only
	got = KeywordSearchScore("rediscache", kw, model.PriorityLow)
	if !almost(got, 0.2*0.2) {
		t.Errorf("expected substring not to count, got %v", got)
	}
}

func TestScoreBoundsAndMonotonicity(t *testing.T) {
	kw := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	contents := []string{
		"",
		"alpha",
		"alpha bravo",
		"alpha bravo charlie",
		"alpha bravo charlie delta",
		"alpha bravo charlie delta echo",
	}
	for _, tier := range tiers {
		prevCM, prevKS := -1.0, -1.0
		for _, c := range contents {
			cm := ContentMatchScore(c, kw, tier)
			ks := KeywordSearchScore(c, kw, tier)
			for _, s := range []float64{cm, ks} {
				if s < 0 || s > 1 {
					t.Errorf("score %v out of bounds for %q/%v", s, c, tier)
				}
			}
			if cm < prevCM || ks < prevKS {
				t.Errorf("score decreased with more matches at %q/%v", c, tier)
			}
			prevCM, prevKS = cm, ks
		}
	}
}
