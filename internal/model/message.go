// Package model defines the core ledger data types.
package model

import (
	"fmt"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ValidRoles are the allowed message roles.
var ValidRoles = map[Role]bool{
	RoleUser:      true,
	RoleAssistant: true,
	RoleSystem:    true,
}

// ParseRole validates s against ValidRoles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !ValidRoles[r] {
		return "", fmt.Errorf("invalid role %q (valid: user, assistant, system)", s)
	}
	return r, nil
}

// Kind tags messages that the ledger itself produced.
type Kind string

const (
	KindRegular           Kind = ""
	KindCompactionSummary Kind = "compaction_summary"
	KindRetrieved         Kind = "retrieved"
)

// Attributes carries the recognized per-message flags.
type Attributes struct {
	Important bool   `json:"important,omitempty"`
	Kind      Kind   `json:"type,omitempty"`
	SourceID  string `json:"source_id,omitempty"`
	Priority  string `json:"priority,omitempty"`
}

// Message is a single immutable ledger entry.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Cost       int        `json:"cost"`
	Attributes Attributes `json:"attributes"`
}

// CharsPerCostUnit is the content length that maps to one cost unit.
const CharsPerCostUnit = 4

// EstimateCost returns the deterministic cost of content: one unit per
// CharsPerCostUnit bytes, rounded up. Empty content costs nothing.
func EstimateCost(content string) int {
	return (len(content) + CharsPerCostUnit - 1) / CharsPerCostUnit
}

// SumCost returns the total cost of msgs.
func SumCost(msgs []Message) int {
	total := 0
	for _, m := range msgs {
		total += m.Cost
	}
	return total
}
