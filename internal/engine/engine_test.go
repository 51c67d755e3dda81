package engine

import (
	"testing"

	"github.com/promptab/promptvar/internal/variable"
)

func vars(pairs ...string) []variable.Variable {
	out := make([]variable.Variable, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, variable.Variable{ID: pairs[i], Name: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func TestClassify(t *testing.T) {
	text := "Hi [NAME], welcome to [PLACE]."
	resolved, unresolved := Classify(text, vars("NAME", "Alice"))

	if len(resolved) != 1 || resolved[0].Name != "NAME" {
		t.Errorf("resolved = %+v", resolved)
	}
	if len(unresolved) != 1 || unresolved[0].Name != "PLACE" {
		t.Errorf("unresolved = %+v", unresolved)
	}
}

func TestClassify_RepeatedUnresolvedNamesStaySeparate(t *testing.T) {
	_, unresolved := Classify("[X] then [X]", nil)

	if len(unresolved) != 2 {
		t.Fatalf("len(unresolved) = %d, want 2", len(unresolved))
	}
	if unresolved[0].Start == unresolved[1].Start {
		t.Error("each occurrence must carry its own offsets")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		vars []variable.Variable
		want string
	}{
		{
			name: "resolved substituted, unresolved verbatim",
			text: "Hi [NAME], welcome to [PLACE].",
			vars: vars("NAME", "Alice"),
			want: "Hi Alice, welcome to [PLACE].",
		},
		{
			name: "empty value left verbatim",
			text: "Hi [NAME].",
			vars: vars("NAME", ""),
			want: "Hi [NAME].",
		},
		{
			name: "mustache and bracket together",
			text: "{{greeting}} [NAME]",
			vars: vars("greeting", "Hello", "NAME", "Bob"),
			want: "Hello Bob",
		},
		{
			name: "no placeholders",
			text: "plain",
			vars: vars("NAME", "Alice"),
			want: "plain",
		},
		{
			name: "trimmed mustache name matches",
			text: "Hi {{ name }}.",
			vars: vars("name", "Eve"),
			want: "Hi Eve.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text, tt.vars); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview_OverlappingSpans(t *testing.T) {
	// "{{a[b]c}}" scans as mustache "a[b]c" over [0,9) and bracket "b"
	// over [3,6). Both names are storable, so both can resolve at once.
	tests := []struct {
		name string
		text string
		vars []variable.Variable
		want string
	}{
		{
			name: "outer wins when both resolve",
			text: "{{a[b]c}}",
			vars: vars("a[b]c", "outer", "b", "inner"),
			want: "outer",
		},
		{
			name: "inner substituted when only it resolves",
			text: "{{a[b]c}}",
			vars: vars("b", "inner"),
			want: "{{ainnerc}}",
		},
		{
			name: "overlap then trailing occurrence",
			text: "{{a[b]c}} [X]",
			vars: vars("a[b]c", "outer", "b", "inner", "X", "tail"),
			want: "outer tail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text, tt.vars); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview_Deterministic(t *testing.T) {
	text := "Hi [NAME] and {{place}}"
	vs := vars("NAME", "Alice", "place", "home")

	if Preview(text, vs) != Preview(text, vs) {
		t.Error("preview must be a pure function of (text, variables)")
	}
}

func TestReplace(t *testing.T) {
	text := "Hi [NAME] and [NAME] again"
	got := Replace(text, 3, 9, "Bob")
	want := "Hi Bob and [NAME] again"
	if got != want {
		t.Errorf("Replace() = %q, want %q", got, want)
	}
}

func TestReplace_SliceProperty(t *testing.T) {
	// Replacing [start,end) with v yields t[:start] + v + t[end:].
	text := "abc[X]def"
	start, end := 3, 6
	v := "12345"

	got := Replace(text, start, end, v)
	want := text[:start] + v + text[end:]
	if got != want {
		t.Errorf("Replace() = %q, want %q", got, want)
	}
}

func TestBuildView_EndToEnd(t *testing.T) {
	view := BuildView("Hi [NAME], welcome to [PLACE].", vars("NAME", "Alice"))

	if len(view.Resolved) != 1 || view.Resolved[0].Name != "NAME" {
		t.Errorf("Resolved = %+v", view.Resolved)
	}
	if len(view.Unresolved) != 1 || view.Unresolved[0].Name != "PLACE" {
		t.Errorf("Unresolved = %+v", view.Unresolved)
	}
	if view.Preview != "Hi Alice, welcome to [PLACE]." {
		t.Errorf("Preview = %q", view.Preview)
	}
}
