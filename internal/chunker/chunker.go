// Package chunker splits archived documents into record-sized pieces so a
// single archive entry never dwarfs a retrieval budget.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/rcliao/agent-ledger/internal/model"
)

const (
	DefaultTargetCost = 250
	DefaultMaxCost    = 400
)

// Options configures chunk sizes in cost units.
type Options struct {
	TargetCost int
	MaxCost    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		TargetCost: DefaultTargetCost,
		MaxCost:    DefaultMaxCost,
	}
}

// Piece is one chunk with its line span in the original text.
type Piece struct {
	Text      string
	StartLine int
	EndLine   int
}

// Chunk splits text into pieces. Text within MaxCost is returned whole.
func Chunk(text string, opts Options) []Piece {
	if opts.TargetCost <= 0 || opts.MaxCost <= 0 {
		opts = DefaultOptions()
	}
	if opts.TargetCost > opts.MaxCost {
		opts.TargetCost = opts.MaxCost
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if model.EstimateCost(text) <= opts.MaxCost {
		return []Piece{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}

	var out []Piece
	var acc *Piece
	flush := func() {
		if acc != nil {
			out = append(out, *acc)
			acc = nil
		}
	}
	for _, p := range paragraphs(text) {
		if model.EstimateCost(p.Text) > opts.MaxCost {
			flush()
			out = append(out, splitLines(p, opts)...)
			continue
		}
		if acc == nil {
			cp := p
			acc = &cp
			continue
		}
		merged := acc.Text + "\n\n" + p.Text
		if model.EstimateCost(merged) <= opts.TargetCost {
			acc.Text = merged
			acc.EndLine = p.EndLine
			continue
		}
		flush()
		cp := p
		acc = &cp
	}
	flush()
	return out
}

// paragraphs splits on blank lines and markdown headings.
func paragraphs(text string) []Piece {
	lines := strings.Split(text, "\n")
	var out []Piece
	var cur []string
	start := 1

	emit := func(end int) {
		t := strings.TrimSpace(strings.Join(cur, "\n"))
		if t != "" {
			out = append(out, Piece{Text: t, StartLine: start, EndLine: end})
		}
		cur = nil
	}

	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			emit(n - 1)
			start = n + 1
		case strings.HasPrefix(trimmed, "#") && len(cur) > 0:
			emit(n - 1)
			start = n
			cur = append(cur, line)
		default:
			if len(cur) == 0 {
				start = n
			}
			cur = append(cur, line)
		}
	}
	emit(len(lines))
	return out
}

// splitLines breaks an oversized paragraph on line boundaries, cutting
// single lines that alone exceed MaxCost.
func splitLines(p Piece, opts Options) []Piece {
	maxBytes := opts.MaxCost * model.CharsPerCostUnit
	targetBytes := opts.TargetCost * model.CharsPerCostUnit

	var out []Piece
	var cur []string
	curStart, curLen := p.StartLine, 0

	emit := func(end int) {
		t := strings.TrimSpace(strings.Join(cur, "\n"))
		if t != "" {
			out = append(out, Piece{Text: t, StartLine: curStart, EndLine: end})
		}
		cur, curLen = nil, 0
	}

	for i, line := range strings.Split(p.Text, "\n") {
		n := p.StartLine + i
		if len(line) > maxBytes {
			emit(n - 1)
			for len(line) > maxBytes {
				cut := maxBytes
				for cut > 1 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				out = append(out, Piece{Text: line[:cut], StartLine: n, EndLine: n})
				line = line[cut:]
			}
			curStart = n
		}
		if curLen+len(line) > targetBytes && len(cur) > 0 {
			emit(n - 1)
			curStart = n
		}
		cur = append(cur, line)
		curLen += len(line) + 1
	}
	emit(p.EndLine)
	return out
}
