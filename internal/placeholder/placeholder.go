// Package placeholder scans prompt text for named placeholders. Two delimiter
// conventions exist side by side: raw optimizer templates use [NAME], while
// saved variable-aware prompts use {{name}}. Scanning never fails; malformed
// or unterminated delimiters simply produce no occurrence.
package placeholder

import (
	"sort"
	"strings"
)

// Syntax identifies the delimiter convention of an occurrence.
type Syntax string

const (
	// SyntaxBracket is the [NAME] convention.
	SyntaxBracket Syntax = "bracket"

	// SyntaxMustache is the {{name}} convention.
	SyntaxMustache Syntax = "mustache"
)

// Occurrence is one placeholder found in a text. Start and End are half-open
// byte offsets into the exact string the occurrence was scanned from; any
// edit to the text invalidates them and requires a re-scan.
type Occurrence struct {
	Name   string `json:"name"`
	Syntax Syntax `json:"syntax"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Span returns the full delimited span, e.g. "[NAME]" or "{{ name }}".
func (o Occurrence) Span(text string) string {
	if o.Start < 0 || o.End > len(text) || o.Start > o.End {
		return ""
	}
	return text[o.Start:o.End]
}

// Wrap renders name in the given syntax.
func Wrap(name string, syntax Syntax) string {
	if syntax == SyntaxMustache {
		return "{{" + name + "}}"
	}
	return "[" + name + "]"
}

// Scanner yields occurrences of one syntax lazily, left to right,
// non-overlapping. It is restartable via Reset.
type Scanner struct {
	text   string
	syntax Syntax
	pos    int
}

// NewScanner creates a scanner over text for the given syntax.
func NewScanner(text string, syntax Syntax) *Scanner {
	return &Scanner{text: text, syntax: syntax}
}

// Reset rewinds the scanner to the start of the text.
func (s *Scanner) Reset() {
	s.pos = 0
}

// Next returns the next occurrence, or ok=false when the text is exhausted.
func (s *Scanner) Next() (Occurrence, bool) {
	for s.pos < len(s.text) {
		var occ Occurrence
		var advance int
		var found bool

		switch s.syntax {
		case SyntaxMustache:
			occ, advance, found = nextMustache(s.text, s.pos)
		default:
			occ, advance, found = nextBracket(s.text, s.pos)
		}

		s.pos = advance
		if found {
			return occ, true
		}
	}
	return Occurrence{}, false
}

// nextBracket finds the next [NAME] at or after pos. The name is every
// character strictly between the brackets, matched greedily to the nearest
// following ']'; an inner '[' is not special. Empty names produce no match.
func nextBracket(text string, pos int) (Occurrence, int, bool) {
	open := strings.IndexByte(text[pos:], '[')
	if open < 0 {
		return Occurrence{}, len(text), false
	}
	open += pos

	end := strings.IndexByte(text[open+1:], ']')
	if end < 0 {
		return Occurrence{}, len(text), false
	}
	end += open + 1

	name := text[open+1 : end]
	if name == "" {
		// "[]": skip past the opening bracket and keep scanning.
		return Occurrence{}, open + 1, false
	}

	return Occurrence{
		Name:   name,
		Syntax: SyntaxBracket,
		Start:  open,
		End:    end + 1,
	}, end + 1, true
}

// nextMustache finds the next {{name}} at or after pos. Whitespace inside the
// delimiters is stripped; whitespace-only names produce no match.
func nextMustache(text string, pos int) (Occurrence, int, bool) {
	open := strings.Index(text[pos:], "{{")
	if open < 0 {
		return Occurrence{}, len(text), false
	}
	open += pos

	end := strings.Index(text[open+2:], "}}")
	if end < 0 {
		return Occurrence{}, len(text), false
	}
	end += open + 2

	name := strings.TrimSpace(text[open+2 : end])
	if name == "" {
		return Occurrence{}, open + 2, false
	}

	return Occurrence{
		Name:   name,
		Syntax: SyntaxMustache,
		Start:  open,
		End:    end + 2,
	}, end + 2, true
}

// Scan returns all occurrences of one syntax in offset order.
func Scan(text string, syntax Syntax) []Occurrence {
	var occs []Occurrence
	sc := NewScanner(text, syntax)
	for {
		occ, ok := sc.Next()
		if !ok {
			return occs
		}
		occs = append(occs, occ)
	}
}

// ScanBoth runs both syntaxes over the text and merges the results by
// start offset. Each syntax is scanned independently; nested or mixed
// delimiters within one match are not interpreted.
func ScanBoth(text string) []Occurrence {
	occs := Scan(text, SyntaxBracket)
	occs = append(occs, Scan(text, SyntaxMustache)...)
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].Start < occs[j].Start
	})
	return occs
}

// DetectSyntax reports the convention the text already uses, so inserted
// placeholders match the surrounding document. Mustache wins when both or
// neither appear, since saved prompts are the variable-aware context.
func DetectSyntax(text string) Syntax {
	if len(Scan(text, SyntaxMustache)) > 0 {
		return SyntaxMustache
	}
	if len(Scan(text, SyntaxBracket)) > 0 {
		return SyntaxBracket
	}
	return SyntaxMustache
}

// Names returns the distinct occurrence names in first-seen order.
func Names(occs []Occurrence) []string {
	seen := make(map[string]bool, len(occs))
	names := make([]string, 0, len(occs))
	for _, occ := range occs {
		if !seen[occ.Name] {
			seen[occ.Name] = true
			names = append(names, occ.Name)
		}
	}
	return names
}
