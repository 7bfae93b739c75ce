package compaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/agent-ledger/internal/model"
)

const (
	maxExamples   = 5
	exampleLength = 150
)

type bucket struct {
	title    string
	keywords []string
}

var buckets = []bucket{
	{"Actions", []string{"implement", "create", "build", "execute"}},
	{"Errors", []string{"error", "failed", "exception", "problem"}},
	{"Successes", []string{"success", "completed", "passed", "correct"}},
	{"State changes", []string{"status:", "state:", "updated to", "changed to"}},
}

// Summarize condenses evicted messages into a structured notice: per-bucket
// counts with a few truncated examples, the message count and the time span.
// It returns "" for no messages.
func Summarize(msgs []model.Message) string {
	if len(msgs) == 0 {
		return ""
	}

	counts := make([]int, len(buckets))
	examples := make([][]string, len(buckets))
	for _, m := range msgs {
		lc := strings.ToLower(m.Content)
		for i, b := range buckets {
			if !containsAny(lc, b.keywords) {
				continue
			}
			counts[i]++
			if len(examples[i]) < maxExamples {
				examples[i] = append(examples[i], truncate(m.Content, exampleLength))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("[Compaction summary]\n")
	fmt.Fprintf(&sb, "Messages summarized: %d\n", len(msgs))
	fmt.Fprintf(&sb, "Time span: %s to %s\n",
		msgs[0].Timestamp.Format(time.RFC3339), msgs[len(msgs)-1].Timestamp.Format(time.RFC3339))
	for i, b := range buckets {
		fmt.Fprintf(&sb, "\n%s: %d\n", b.title, counts[i])
		for _, ex := range examples[i] {
			sb.WriteString("- ")
			sb.WriteString(ex)
			sb.WriteByte('\n')
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncate shortens s to n runes on one line, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
