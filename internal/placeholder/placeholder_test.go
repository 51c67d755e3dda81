package placeholder

import (
	"reflect"
	"testing"
)

func TestScan_Bracket(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Occurrence
	}{
		{
			name: "single placeholder",
			text: "Hi [NAME].",
			want: []Occurrence{{Name: "NAME", Syntax: SyntaxBracket, Start: 3, End: 9}},
		},
		{
			name: "adjacent placeholders parse separately",
			text: "[A][B]",
			want: []Occurrence{
				{Name: "A", Syntax: SyntaxBracket, Start: 0, End: 3},
				{Name: "B", Syntax: SyntaxBracket, Start: 3, End: 6},
			},
		},
		{
			name: "empty brackets skipped",
			text: "a[]b[C]",
			want: []Occurrence{{Name: "C", Syntax: SyntaxBracket, Start: 4, End: 7}},
		},
		{
			name: "unterminated bracket produces nothing",
			text: "Hello [NAME",
			want: nil,
		},
		{
			name: "inner open bracket is not special",
			text: "[A[B]",
			want: []Occurrence{{Name: "A[B", Syntax: SyntaxBracket, Start: 0, End: 5}},
		},
		{
			name: "no placeholders",
			text: "plain text",
			want: nil,
		},
		{
			name: "name keeps inner whitespace verbatim",
			text: "[FULL NAME]",
			want: []Occurrence{{Name: "FULL NAME", Syntax: SyntaxBracket, Start: 0, End: 11}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.text, SyntaxBracket)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScan_Mustache(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Occurrence
	}{
		{
			name: "plain",
			text: "Hi {{name}}.",
			want: []Occurrence{{Name: "name", Syntax: SyntaxMustache, Start: 3, End: 11}},
		},
		{
			name: "inner whitespace trimmed",
			text: "Hi {{ name }}.",
			want: []Occurrence{{Name: "name", Syntax: SyntaxMustache, Start: 3, End: 13}},
		},
		{
			name: "whitespace-only skipped",
			text: "a{{  }}b{{x}}",
			want: []Occurrence{{Name: "x", Syntax: SyntaxMustache, Start: 8, End: 13}},
		},
		{
			name: "unterminated produces nothing",
			text: "oops {{name",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.text, SyntaxMustache)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScan_TrimmedAndUntrimmedNamesMatch(t *testing.T) {
	a := Scan("{{ name }}", SyntaxMustache)
	b := Scan("{{name}}", SyntaxMustache)

	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected one occurrence each, got %d and %d", len(a), len(b))
	}
	if a[0].Name != b[0].Name {
		t.Errorf("names differ: %q vs %q", a[0].Name, b[0].Name)
	}
}

func TestScanner_Restartable(t *testing.T) {
	sc := NewScanner("[A] and [B]", SyntaxBracket)

	first, ok := sc.Next()
	if !ok || first.Name != "A" {
		t.Fatalf("first Next() = %+v, %v", first, ok)
	}

	sc.Reset()

	again, ok := sc.Next()
	if !ok || again != first {
		t.Errorf("after Reset, Next() = %+v, want %+v", again, first)
	}
}

func TestScan_Deterministic(t *testing.T) {
	text := "x [A] y {{b}} z [C]"
	first := ScanBoth(text)
	second := ScanBoth(text)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must yield identical occurrence sequences")
	}

	for i := 1; i < len(first); i++ {
		if first[i].Start < first[i-1].Start {
			t.Errorf("occurrences out of offset order at %d: %+v", i, first)
		}
	}
}

func TestScanBoth_MergesByOffset(t *testing.T) {
	occs := ScanBoth("{{first}} then [SECOND]")
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(occs))
	}
	if occs[0].Name != "first" || occs[0].Syntax != SyntaxMustache {
		t.Errorf("occs[0] = %+v", occs[0])
	}
	if occs[1].Name != "SECOND" || occs[1].Syntax != SyntaxBracket {
		t.Errorf("occs[1] = %+v", occs[1])
	}
}

func TestDetectSyntax(t *testing.T) {
	tests := []struct {
		text string
		want Syntax
	}{
		{"use [NAME] here", SyntaxBracket},
		{"use {{name}} here", SyntaxMustache},
		{"both [A] and {{b}}", SyntaxMustache},
		{"neither", SyntaxMustache},
	}

	for _, tt := range tests {
		if got := DetectSyntax(tt.text); got != tt.want {
			t.Errorf("DetectSyntax(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	if got := Wrap("NAME", SyntaxBracket); got != "[NAME]" {
		t.Errorf("Wrap bracket = %q", got)
	}
	if got := Wrap("name", SyntaxMustache); got != "{{name}}" {
		t.Errorf("Wrap mustache = %q", got)
	}
}

func TestNames_RepeatedNamesNotDeduplicatedInScan(t *testing.T) {
	occs := Scan("[X] and [X]", SyntaxBracket)
	if len(occs) != 2 {
		t.Fatalf("repeated name must yield two occurrences, got %d", len(occs))
	}
	if occs[0].Start == occs[1].Start {
		t.Error("occurrences must carry distinct offsets")
	}

	names := Names(occs)
	if len(names) != 1 || names[0] != "X" {
		t.Errorf("Names() = %v, want [X]", names)
	}
}
