package chunker

import (
	"strings"
	"testing"

	"github.com/rcliao/agent-ledger/internal/model"
)

func TestChunk_EmptyInput(t *testing.T) {
	if got := Chunk("   \n", DefaultOptions()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestChunk_ShortContent(t *testing.T) {
	text := "Deployment uses blue/green rollout."
	got := Chunk(text, DefaultOptions())
	if len(got) != 1 {
		t.Fatalf("expected 1 piece, got %d", len(got))
	}
	if got[0].Text != text || got[0].StartLine != 1 {
		t.Errorf("unexpected piece %+v", got[0])
	}
}

func TestChunk_RespectsMaxCost(t *testing.T) {
	opts := Options{TargetCost: 50, MaxCost: 80}
	para := strings.Repeat("The cache is invalidated on write. ", 6) // ~210 chars
	text := strings.Join([]string{para, para, para, para}, "\n\n")

	got := Chunk(text, opts)
	if len(got) < 2 {
		t.Fatalf("expected several pieces, got %d", len(got))
	}
	for i, p := range got {
		if c := model.EstimateCost(p.Text); c > opts.MaxCost {
			t.Errorf("piece %d costs %d > max %d", i, c, opts.MaxCost)
		}
	}
}

func TestChunk_MergesSmallParagraphs(t *testing.T) {
	text := "# A\n\nShort.\n\n# B\n\nAlso short."
	got := Chunk(text, Options{TargetCost: 100, MaxCost: 200})
	if len(got) != 1 {
		t.Errorf("expected 1 merged piece, got %d", len(got))
	}
}

func TestChunk_HeadingStartsNewParagraph(t *testing.T) {
	body := strings.Repeat("filler text here. ", 20) // ~360 chars, 90 units
	text := "# One\n" + body + "\n# Two\n" + body
	got := Chunk(text, Options{TargetCost: 100, MaxCost: 120})
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(got))
	}
	if !strings.HasPrefix(got[1].Text, "# Two") {
		t.Errorf("second piece should start at heading, got %q", got[1].Text[:10])
	}
}

func TestChunk_SplitsSingleHugeLine(t *testing.T) {
	text := strings.Repeat("x", 2000)
	opts := Options{TargetCost: 100, MaxCost: 100}
	got := Chunk(text, opts)
	total := 0
	for _, p := range got {
		if model.EstimateCost(p.Text) > opts.MaxCost {
			t.Errorf("piece exceeds max cost: %d", model.EstimateCost(p.Text))
		}
		total += len(p.Text)
	}
	if total != 2000 {
		t.Errorf("expected all 2000 bytes preserved, got %d", total)
	}
}
