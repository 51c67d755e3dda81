package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/promptab/promptvar/internal/config"
	"github.com/promptab/promptvar/internal/engine"
	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/history"
	"github.com/promptab/promptvar/internal/placeholder"
	"github.com/promptab/promptvar/internal/variable"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *variable.Store
	buffer   *history.Buffer
	cfg      *config.Config
	renderer *Renderer
}

// HandleVariables handles GET /variables, the variable library page.
func (h *Handlers) HandleVariables(w http.ResponseWriter, r *http.Request) {
	vars, err := h.store.List(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "variables", VariablesPageData{
		PageData: PageData{
			Title:   "Variables",
			Version: h.renderer.version,
			Nav:     "variables",
		},
		Variables: vars,
	})
}

// HandleVariableUpsert handles POST /variables, creating or overwriting a variable.
func (h *Handlers) HandleVariableUpsert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	v, err := h.store.UpsertByName(r.Context(),
		strings.TrimSpace(r.FormValue("name")),
		r.FormValue("value"),
		r.FormValue("description"),
		r.FormValue("category"),
	)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, v)
		return
	}

	http.Redirect(w, r, "/variables", http.StatusFound)
}

// HandleVariableDelete handles POST /variables/{id}/delete.
func (h *Handlers) HandleVariableDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("variable ID is required"))
		return
	}

	if err := h.store.RemoveByID(r.Context(), id); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}

	http.Redirect(w, r, "/variables", http.StatusFound)
}

// HandlePreview handles GET /preview, resolving a text against the library.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	h.renderPreview(w, r, text)
}

// HandleReplace handles POST /preview/replace: replace one occurrence and
// show the updated text. Offsets must come from the page's current text; a
// mismatch means the text was edited since and the selection is rejected.
func (h *Handlers) HandleReplace(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	text := r.FormValue("text")
	start, err := strconv.Atoi(r.FormValue("start"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("start must be an integer"))
		return
	}
	end, err := strconv.Atoi(r.FormValue("end"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("end must be an integer"))
		return
	}

	session := engine.NewSession(text, h.store)

	selected, ok := findOccurrence(text, start, end)
	if !ok {
		h.renderer.renderError(w, r, errors.NewInvalidState("no occurrence at the given offsets; re-scan the text"))
		return
	}
	if err := session.Select(r.Context(), selected); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if value, given := r.Form["value"]; given && value[0] != "" {
		err = session.ConfirmValue(r.Context(), value[0])
	} else {
		err = session.ConfirmExisting(r.Context())
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderPreview(w, r, session.Text())
}

// HandleHistory handles GET /history, the recent optimization outcomes.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.buffer.List(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData: PageData{
			Title:   "History",
			Version: h.renderer.version,
			Nav:     "history",
		},
		Entries: entries,
	})
}

// HandleHistoryClear handles POST /history/clear.
func (h *Handlers) HandleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := h.buffer.Clear(r.Context()); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{"cleared": true})
		return
	}

	http.Redirect(w, r, "/history", http.StatusFound)
}

// renderPreview builds the view model for one text and renders the preview page.
func (h *Handlers) renderPreview(w http.ResponseWriter, r *http.Request, text string) {
	data := PreviewPageData{
		PageData: PageData{
			Title:   "Preview",
			Version: h.renderer.version,
			Nav:     "preview",
		},
		Text:    text,
		HasText: text != "",
	}

	if text != "" {
		vars, err := h.store.List(r.Context())
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.View = engine.BuildView(text, vars)
		data.RenderedHTML = renderMarkdown(data.View.Preview)
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, data.View)
		return
	}

	h.renderer.renderPage(w, r, "preview", data)
}

// findOccurrence locates the occurrence of text spanning exactly [start,end).
func findOccurrence(text string, start, end int) (placeholder.Occurrence, bool) {
	for _, occ := range placeholder.ScanBoth(text) {
		if occ.Start == start && occ.End == end {
			return occ, true
		}
	}
	return placeholder.Occurrence{}, false
}
