package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rcliao/agent-ledger/internal/ledger"
	"github.com/rcliao/agent-ledger/internal/model"
	"github.com/rcliao/agent-ledger/internal/session"
)

func newReplaySession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Config{ProjectID: "p"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestReplay(t *testing.T) {
	s := newReplaySession(t)
	input := `{"role":"user","content":"deploy the api"}

{"role":"assistant","content":"done","important":true}
`
	n, err := replay(context.Background(), s, strings.NewReader(input))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 appended, got %d", n)
	}
	msgs := s.Messages()
	if msgs[0].Role != model.RoleUser || !msgs[1].Attributes.Important {
		t.Errorf("unexpected messages %+v", msgs)
	}
}

func TestReplayStopsAtBadLine(t *testing.T) {
	cases := map[string]string{
		"bad json":      "{\"role\":\"user\",\"content\":\"a\"}\n{nope\n",
		"bad role":      "{\"role\":\"user\",\"content\":\"a\"}\n{\"role\":\"robot\",\"content\":\"b\"}\n",
		"empty content": "{\"role\":\"user\",\"content\":\"a\"}\n{\"role\":\"user\",\"content\":\"\"}\n",
	}
	for name, input := range cases {
		s := newReplaySession(t)
		n, err := replay(context.Background(), s, strings.NewReader(input))
		if err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Errorf("%s: expected line 2 error, got %v", name, err)
		}
		if n != 1 {
			t.Errorf("%s: expected 1 appended, got %d", name, n)
		}
	}

	s := newReplaySession(t)
	_, err := replay(context.Background(), s, strings.NewReader(`{"role":"user","content":" "}`))
	if !errors.Is(err, ledger.ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestParsePriorities(t *testing.T) {
	tiers, err := parsePriorities([]string{"critical", " normal ", ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(tiers) != 2 || tiers[0] != model.PriorityCritical || tiers[1] != model.PriorityMedium {
		t.Errorf("unexpected tiers %v", tiers)
	}
	if _, err := parsePriorities([]string{"urgent"}); err == nil {
		t.Error("expected error for unknown priority")
	}
}
