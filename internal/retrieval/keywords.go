package retrieval

import (
	"sort"
	"strings"
	"unicode"
)

// MaxKeywords is the number of keywords kept by ExtractKeywords.
const MaxKeywords = 10

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true, "have": true,
	"his": true, "how": true, "its": true, "may": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "way": true, "who": true, "did": true,
	"get": true, "let": true, "put": true, "say": true, "she": true, "too": true,
	"use": true, "this": true, "that": true, "with": true, "from": true, "they": true,
	"been": true, "were": true, "will": true, "would": true, "could": true, "should": true,
	"what": true, "when": true, "where": true, "which": true, "while": true, "there": true,
	"their": true, "them": true, "then": true, "than": true, "these": true, "those": true,
	"into": true, "about": true, "some": true, "such": true, "only": true, "also": true,
	"just": true, "like": true, "more": true, "most": true, "other": true, "over": true,
	"very": true, "your": true, "yours": true, "because": true, "does": true, "doing": true,
	"here": true, "each": true, "being": true, "both": true, "same": true, "after": true,
	"before": true, "again": true, "please": true, "need": true, "want": true, "make": true,
}

// tokenize lowercases text, replaces non-alphanumerics with spaces and
// splits on whitespace.
func tokenize(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(mapped)
}

// ExtractKeywords returns up to MaxKeywords distinct terms of text ranked by
// frequency. Stopwords and tokens of two characters or fewer are dropped.
// Ties keep first-occurrence order.
func ExtractKeywords(text string) []string {
	counts := map[string]int{}
	var order []string
	for _, tok := range tokenize(text) {
		if len(tok) <= 2 || stopwords[tok] {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	return order
}

// normalizeKeywords tokenizes caller-supplied keywords the way content is
// tokenized, so "deploy-script" becomes "deploy" and "script". Duplicates
// are dropped.
func normalizeKeywords(keywords []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range keywords {
		for _, tok := range tokenize(k) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
