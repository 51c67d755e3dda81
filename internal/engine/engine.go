// Package engine composes the placeholder parser and the variable store:
// it classifies occurrences as resolved or unresolved, builds substitution
// previews, and drives the interactive single-occurrence replacement flow.
package engine

import (
	"strings"

	"github.com/promptab/promptvar/internal/placeholder"
	"github.com/promptab/promptvar/internal/variable"
)

// View is the UI-facing picture of one text against one variable snapshot.
// Occurrences are computed fresh from the (text, variables) pair and carry
// offsets valid only for that exact text.
type View struct {
	Text       string                   `json:"text"`
	Resolved   []placeholder.Occurrence `json:"resolved"`
	Unresolved []placeholder.Occurrence `json:"unresolved"`
	Preview    string                   `json:"preview"`
}

// Classify splits the occurrences of text into resolved and unresolved
// against the given variables. Repeated unresolved names stay separate
// occurrences; each carries distinct offsets for independent resolution.
func Classify(text string, vars []variable.Variable) (resolved, unresolved []placeholder.Occurrence) {
	byName := indexByName(vars)
	for _, occ := range placeholder.ScanBoth(text) {
		if _, ok := byName[occ.Name]; ok {
			resolved = append(resolved, occ)
		} else {
			unresolved = append(unresolved, occ)
		}
	}
	return resolved, unresolved
}

// Preview substitutes every occurrence whose name matches a variable with a
// non-empty value; everything else is left verbatim. Pure function: the same
// (text, variables) pair always yields the same output.
func Preview(text string, vars []variable.Variable) string {
	byName := indexByName(vars)

	occs := placeholder.ScanBoth(text)
	if len(occs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, occ := range occs {
		if occ.Start < last {
			// A mustache span can contain a bracket span. The outer
			// occurrence already consumed this region; first match wins.
			continue
		}
		v, ok := byName[occ.Name]
		if !ok || v.Value == "" {
			continue
		}
		b.WriteString(text[last:occ.Start])
		b.WriteString(v.Value)
		last = occ.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// BuildView assembles the full view model for one (text, variables) pair.
func BuildView(text string, vars []variable.Variable) View {
	resolved, unresolved := Classify(text, vars)
	return View{
		Text:       text,
		Resolved:   resolved,
		Unresolved: unresolved,
		Preview:    Preview(text, vars),
	}
}

// Replace substitutes text[start:end) with value. Offsets must come from a
// parse of this exact text; the result must be re-parsed before any further
// selection, since every occurrence after the edited span has shifted.
func Replace(text string, start, end int, value string) string {
	return text[:start] + value + text[end:]
}

// indexByName builds a name lookup over the variable snapshot.
func indexByName(vars []variable.Variable) map[string]variable.Variable {
	byName := make(map[string]variable.Variable, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}
	return byName
}
