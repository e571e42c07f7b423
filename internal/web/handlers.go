package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/ops"
	"github.com/minitcraft/minit/internal/render"
)

// Handlers contains HTTP route handlers for the preview UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /meetings: list meetings, newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	jenis := r.URL.Query().Get("jenis")
	input := ops.ListInput{
		Jenis:          jenis,
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Mesyuarat",
			Version: h.renderer.version,
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Jenis:      jenis,
		Deleted:    input.IncludeDeleted,
	})
}

// HandleDetail handles GET /meetings/{id}: the minutes rendered as HTML.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	meeting, ok := h.fetch(w, r)
	if !ok {
		return
	}

	doc, err := render.HTMLFragment(render.Markdown(meeting.Record))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   render.DocumentTitle(meeting.Jenis) + " " + meeting.Siri,
			Version: h.renderer.version,
		},
		Meeting:      meeting,
		DocumentHTML: doc,
	})
}

// HandleRecord handles GET /meetings/{id}/record.json: the stored record.
func (h *Handlers) HandleRecord(w http.ResponseWriter, r *http.Request) {
	meeting, ok := h.fetch(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", attachment(meeting.Siri, meeting.Jenis, ".json"))
	renderJSON(w, http.StatusOK, meeting.Record)
}

// HandleNextDraft handles GET /meetings/{id}/next.json: the next meeting's
// draft derived from this one. Nothing is stored.
func (h *Handlers) HandleNextDraft(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := ops.Next(r.Context(), h.db, h.cfg, ops.NextInput{ID: id, DryRun: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	w.Header().Set("X-Minit-Matters-Source", string(result.Report.MattersSource))
	w.Header().Set("Content-Disposition", attachment(result.Record.Header.Siri, result.Record.Header.Jenis, ".json"))
	renderJSON(w, http.StatusOK, result.Record)
}

// HandleDocument handles GET /meetings/{id}/document/{format}: the
// standalone minutes document as Markdown or HTML.
func (h *Handlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(r.PathValue("format"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
		return
	}
	meeting, ok := h.fetch(w, r)
	if !ok {
		return
	}

	data, err := render.Render(meeting.Record, format)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	switch format {
	case render.FormatHTML:
		// The standalone page carries its own stylesheet
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", attachment(meeting.Siri, meeting.Jenis, format.Extension()))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// fetch loads the meeting named by the {id} path value, rendering the
// error response itself when that fails.
func (h *Handlers) fetch(w http.ResponseWriter, r *http.Request) (*ops.FetchOutput, bool) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("meeting ID is required"))
		return nil, false
	}

	meeting, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return nil, false
	}
	return meeting, true
}

func attachment(siri, jenis, ext string) string {
	return fmt.Sprintf("attachment; filename=%q", ops.SanitizeForFilename(siri)+"-"+jenis+ext)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
