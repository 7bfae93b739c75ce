package retrieval

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The Deploy failed! Deploy again after fixing the deploy-script; ok?")
	if len(got) == 0 || got[0] != "deploy" {
		t.Fatalf("expected most frequent keyword first, got %v", got)
	}
	for _, k := range got {
		if len(k) <= 2 {
			t.Errorf("short token %q kept", k)
		}
		if stopwords[k] {
			t.Errorf("stopword %q kept", k)
		}
	}
	want := []string{"deploy", "failed", "fixing", "script"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractKeywordsCapsAtTen(t *testing.T) {
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
	got := ExtractKeywords(text)
	if len(got) != MaxKeywords {
		t.Fatalf("expected %d keywords, got %d", MaxKeywords, len(got))
	}
	if got[0] != "alpha" || got[9] != "juliet" {
		t.Errorf("expected first-occurrence order on ties, got %v", got)
	}
}

func TestExtractKeywordsEmpty(t *testing.T) {
	if got := ExtractKeywords("a an the of it"); len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := normalizeKeywords([]string{" Redis ", "redis", "", "Cache"})
	if !reflect.DeepEqual(got, []string{"redis", "cache"}) {
		t.Errorf("unexpected %v", got)
	}

	got = normalizeKeywords([]string{"deploy-script", "Deploy"})
	if !reflect.DeepEqual(got, []string{"deploy", "script"}) {
		t.Errorf("punctuated keyword not split: %v", got)
	}
}
