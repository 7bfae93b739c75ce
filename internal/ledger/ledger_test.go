package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/rcliao/agent-ledger/internal/model"
)

func checkTotal(t *testing.T, l *Ledger) {
	t.Helper()
	if got, want := l.TotalCost(), model.SumCost(l.Messages()); got != want {
		t.Fatalf("running total %d != sum of messages %d", got, want)
	}
}

func TestAppend(t *testing.T) {
	l := New(Config{MaxCost: 1000})

	m, err := l.Append(model.RoleUser, "hello world", model.Attributes{})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if m.Cost != model.EstimateCost("hello world") {
		t.Errorf("unexpected cost %d", m.Cost)
	}
	if m.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 message, got %d", l.Len())
	}
	checkTotal(t, l)
}

func TestAppendInvalid(t *testing.T) {
	l := New(Config{})

	_, err := l.Append(model.Role("tool"), "x", model.Attributes{})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage for bad role, got %v", err)
	}
	_, err = l.Append(model.RoleUser, "   ", model.Attributes{})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage for empty content, got %v", err)
	}
	if l.Len() != 0 || l.TotalCost() != 0 {
		t.Error("invalid appends must not change the ledger")
	}
}

func TestAccountingInvariant(t *testing.T) {
	l := New(Config{MaxCost: 100000})
	for i := 1; i <= 50; i++ {
		role := model.RoleUser
		if i%2 == 0 {
			role = model.RoleAssistant
		}
		if _, err := l.Append(role, strings.Repeat("y", i*7), model.Attributes{}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		checkTotal(t, l)
	}

	l.Truncate(20)
	checkTotal(t, l)
	if l.Len() != 20 {
		t.Errorf("expected 20 after truncate, got %d", l.Len())
	}

	msgs := l.Messages()
	l.Replace(msgs[:5])
	checkTotal(t, l)
}

func TestUsageAndShouldCompact(t *testing.T) {
	l := New(Config{MaxCost: 100, CompactThreshold: 0.5, RetainWindow: 2})

	// 40 chars = 10 units each
	msg := strings.Repeat("z", 40)
	for i := 0; i < 4; i++ {
		l.Append(model.RoleUser, msg, model.Attributes{})
	}
	if l.UsageFraction() != 0.4 {
		t.Errorf("expected usage 0.4, got %v", l.UsageFraction())
	}
	if l.ShouldCompact() {
		t.Error("should not compact below threshold")
	}
	l.Append(model.RoleUser, msg, model.Attributes{})
	if !l.ShouldCompact() {
		t.Error("expected compaction at threshold")
	}
}

func TestShouldCompactRespectsRetainWindow(t *testing.T) {
	l := New(Config{MaxCost: 10, CompactThreshold: 0.5, RetainWindow: 3})
	l.Append(model.RoleUser, strings.Repeat("a", 80), model.Attributes{})
	if l.UsageFraction() < 1 {
		t.Fatalf("expected usage over budget, got %v", l.UsageFraction())
	}
	if l.ShouldCompact() {
		t.Error("must not compact when len <= retain window")
	}
}

func TestTruncate(t *testing.T) {
	l := New(Config{})
	for _, c := range []string{"one", "two", "three"} {
		l.Append(model.RoleUser, c, model.Attributes{})
	}
	if n := l.Truncate(5); n != 0 {
		t.Errorf("expected no-op truncate, removed %d", n)
	}
	if n := l.Truncate(1); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if l.Messages()[0].Content != "three" {
		t.Errorf("expected newest message kept, got %q", l.Messages()[0].Content)
	}
	checkTotal(t, l)
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []Config{
		{MaxCost: 0, CompactThreshold: 0.5},
		{MaxCost: 10, CompactThreshold: 1.5},
		{MaxCost: 10, CompactThreshold: 0.5, RetainWindow: -1},
		{MaxCost: 10, CompactThreshold: 0.5, RetainWindow: 0},
	}
	for _, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
}

func TestZeroRetainWindowTakesDefault(t *testing.T) {
	l := New(Config{MaxCost: 10, CompactThreshold: 0.5})
	if got := l.Config().RetainWindow; got != DefaultRetainWindow {
		t.Errorf("expected default retain window, got %d", got)
	}
	if err := l.Config().Validate(); err != nil {
		t.Errorf("defaulted config should validate: %v", err)
	}
}
