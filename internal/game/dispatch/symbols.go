package dispatch

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed symbols.yaml
var defaultSymbolsYAML []byte

// Command is one parsed action invocation extracted from message text.
type Command struct {
	Symbol string
	Action string
	Args   []string
}

// SymbolTable maps emoji symbols to action names, with per-guild
// overrides layered on top of the embedded defaults. The longest-match
// scan order is precomputed and rebuilt only when bindings change.
// All methods are safe for concurrent use.
type SymbolTable struct {
	mu        sync.RWMutex
	defaults  map[string]string            // symbol → action
	overrides map[string]map[string]string // guildID → symbol → action
	// ordered caches the symbols of the merged table per guild, longest
	// first, so Parse never sorts per invocation.
	ordered map[string][]string
}

type symbolsDoc struct {
	Symbols []struct {
		Symbol string `yaml:"symbol"`
		Action string `yaml:"action"`
	} `yaml:"symbols"`
}

// NewSymbolTable builds a table from the embedded default vocabulary.
func NewSymbolTable() (*SymbolTable, error) {
	var doc symbolsDoc
	if err := yaml.Unmarshal(defaultSymbolsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parsing default symbol table: %w", err)
	}

	defaults := make(map[string]string, len(doc.Symbols))
	for _, s := range doc.Symbols {
		if s.Symbol == "" || s.Action == "" {
			return nil, fmt.Errorf("symbol table entry missing symbol or action: %+v", s)
		}
		if prior, dup := defaults[s.Symbol]; dup {
			return nil, fmt.Errorf("symbol %q bound to both %q and %q", s.Symbol, prior, s.Action)
		}
		defaults[s.Symbol] = s.Action
	}

	t := &SymbolTable{
		defaults:  defaults,
		overrides: make(map[string]map[string]string),
		ordered:   make(map[string][]string),
	}
	return t, nil
}

// Bind maps symbol to action for the given guild, replacing any prior
// binding of that action within the guild: one symbol per action at a
// time.
func (t *SymbolTable) Bind(guildID, symbol, action string) error {
	if symbol == "" || action == "" {
		return fmt.Errorf("dispatch: symbol and action must be non-empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.overrides[guildID] == nil {
		t.overrides[guildID] = make(map[string]string)
	}
	for sym, act := range t.overrides[guildID] {
		if act == action {
			delete(t.overrides[guildID], sym)
		}
	}
	t.overrides[guildID][symbol] = action
	delete(t.ordered, guildID) // invalidate the scan cache
	return nil
}

// ActionFor resolves a symbol within a guild, overrides first.
func (t *SymbolTable) ActionFor(guildID, symbol string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.actionForLocked(guildID, symbol)
}

func (t *SymbolTable) actionForLocked(guildID, symbol string) (string, bool) {
	if ov, ok := t.overrides[guildID]; ok {
		if action, ok := ov[symbol]; ok {
			return action, true
		}
	}
	action, ok := t.defaults[symbol]
	return action, ok
}

// scanOrder returns the guild's merged symbol set, longest byte
// sequence first, rebuilding the cache if bindings changed.
func (t *SymbolTable) scanOrder(guildID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cached, ok := t.ordered[guildID]; ok {
		return cached
	}

	seen := make(map[string]bool)
	var symbols []string
	for sym := range t.overrides[guildID] {
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	for sym := range t.defaults {
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		if len(symbols[i]) != len(symbols[j]) {
			return len(symbols[i]) > len(symbols[j])
		}
		return symbols[i] < symbols[j]
	})

	t.ordered[guildID] = symbols
	return symbols
}

// Parse scans text for the longest non-overlapping symbol matches. Each
// match captures the whitespace-delimited tokens that follow it, up to
// the next symbol, as its arguments. The return includes the text with
// all matched commands stripped (the untouched leading segment).
func (t *SymbolTable) Parse(guildID, text string) ([]Command, string) {
	symbols := t.scanOrder(guildID)
	if len(symbols) == 0 || text == "" {
		return nil, text
	}

	type match struct {
		start, end int
		symbol     string
	}
	var matches []match
	for i := 0; i < len(text); {
		matched := false
		for _, sym := range symbols {
			if strings.HasPrefix(text[i:], sym) {
				matches = append(matches, match{start: i, end: i + len(sym), symbol: sym})
				i += len(sym)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	if len(matches) == 0 {
		return nil, text
	}

	t.mu.RLock()
	var commands []Command
	for idx, m := range matches {
		action, ok := t.actionForLocked(guildID, m.symbol)
		if !ok {
			continue
		}
		segEnd := len(text)
		if idx+1 < len(matches) {
			segEnd = matches[idx+1].start
		}
		commands = append(commands, Command{
			Symbol: m.symbol,
			Action: action,
			Args:   strings.Fields(text[m.end:segEnd]),
		})
	}
	t.mu.RUnlock()

	remainder := strings.TrimSpace(text[:matches[0].start])
	return commands, remainder
}
