// ABOUTME: Classifies input lines as assignment or interpolation and executes them
// ABOUTME: Single entry point shared by the REPL and the gateway

package interp

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/2389/coven-vars/internal/vars"
)

// Result is the outcome of processing one input line.
type Result struct {
	// Text is the assignment confirmation or the interpolated input.
	Text string
	// Assigned reports whether the line was an assignment.
	Assigned bool
	// Name is the assigned variable's name; empty unless Assigned.
	Name string
}

// Processor drives the store from free-form input lines. It holds no
// state of its own beyond the store reference.
type Processor struct {
	store  *vars.Store
	logger *slog.Logger
}

// New creates a processor over the given store.
func New(store *vars.Store) *Processor {
	return &Processor{
		store:  store,
		logger: slog.Default().With("component", "interp"),
	}
}

// Process handles one input line. A line whose first `=` is not the
// leading character and has no whitespace before it is an assignment of
// everything after that `=` (the value may itself contain `=`); any
// other line is interpolated against the current store content.
func (p *Processor) Process(line string) Result {
	if name, literal, ok := splitAssignment(line); ok {
		return p.assign(name, literal)
	}
	return Result{Text: p.Interpolate(line)}
}

// splitAssignment applies the classification rule and returns the name
// and literal when the line is an assignment.
func splitAssignment(line string) (name, literal string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", false
	}
	name = line[:idx]
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return "", "", false
	}
	return name, line[idx+1:], true
}

// assign coerces the literal, writes through to the store, and builds
// the confirmation text. A persistence failure is logged but does not
// change the outcome; the in-memory write already succeeded.
func (p *Processor) assign(name, literal string) Result {
	value := vars.Coerce(literal)
	if err := p.store.Set(name, value); err != nil {
		p.logger.Warn("variable not persisted", "name", name, "error", err)
	}
	return Result{
		Text:     fmt.Sprintf("Variable '%s' set to: %s", name, value.Render()),
		Assigned: true,
		Name:     name,
	}
}

// Interpolate replaces every standalone occurrence of a variable name
// in text with that variable's rendered value. Matching is
// case-sensitive and word-bounded: the runes adjacent to an occurrence
// must not be letters, digits, or underscores. The text is scanned in
// a single pass, so substituted values are never rescanned, and when
// one name is a prefix of another the longer name wins.
func (p *Processor) Interpolate(text string) string {
	snapshot := p.store.Snapshot()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		if name == "" {
			continue // never matches a standalone word
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return text
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	var b strings.Builder
	i := 0
	for i < len(text) {
		name, found := matchAt(text, i, names)
		if found {
			b.WriteString(snapshot[name].Render())
			i += len(name)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// matchAt returns the longest variable name occurring as a standalone
// word at byte offset i.
func matchAt(text string, i int, names []string) (string, bool) {
	if !boundaryBefore(text, i) {
		return "", false
	}
	for _, name := range names {
		if strings.HasPrefix(text[i:], name) && boundaryAfter(text, i+len(name)) {
			return name, true
		}
	}
	return "", false
}

// boundaryBefore reports whether offset i starts a word: beginning of
// text, or preceded by a non-word rune.
func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

// boundaryAfter reports whether offset i ends a word: end of text, or
// followed by a non-word rune.
func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

// isWordRune matches the word class used for boundaries: letters,
// digits, underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
