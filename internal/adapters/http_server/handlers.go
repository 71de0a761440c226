// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"revscrap/internal/adapters/observability"
	"revscrap/internal/app"
	"revscrap/internal/domain"
)

type Handlers struct{ Svc *app.ExportService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const indexHTML = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Revscrap</title></head>
<body>
<h1>REVIEW SCRAPER</h1>
<form action="/v1/export" method="get">
  <input type="text" name="url" size="70" placeholder="Enter app url...">
  <button type="submit">Export CSV</button>
</form>
</body>
</html>
`

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.index)
	s.mux.Get("/v1/export", h.exportCSV)
	s.mux.Post("/v1/export", h.exportCSV)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(indexHTML)); err != nil {
		log.Error().Err(err).Msg("failed to write index body")
	}
}

// exportCSV runs the pipeline for one storefront URL and streams the result
// back as a download. A request without a url parameter at all is a form
// submit that never happened and is ignored rather than rejected.
func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed form data")
		return
	}
	if _, ok := r.Form["url"]; !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	params := app.ExportParams{
		Country: r.Form.Get("country"),
		Lang:    r.Form.Get("lang"),
	}
	if ls := r.Form.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		params.Limit = l
	}

	res, err := h.Svc.Export(r.Context(), r.Form.Get("url"), params)
	if err != nil {
		writeExportError(w, err)
		return
	}
	observability.ObserveExport(string(res.Platform), "ok")
	observability.AddReviewsFetched(string(res.Platform), res.Rows)

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		log.Error().Err(err).Msg("failed to write export body")
	}
}

func writeExportError(w http.ResponseWriter, err error) {
	var fetchErr *domain.FetchError
	var malformed *domain.MalformedRecordError
	switch {
	case errors.Is(err, domain.ErrUnsupportedURL):
		writeProblem(w, http.StatusBadRequest, "Invalid URL", domain.ErrUnsupportedURL.Error())
	case errors.As(err, &fetchErr):
		observability.ObserveExport(string(fetchErr.Platform), "error")
		log.Error().Err(err).Str("platform", string(fetchErr.Platform)).Msg("export fetch failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Fetch Failed", fetchErr.Error())
	case errors.As(err, &malformed):
		observability.ObserveExport(string(malformed.Platform), "error")
		log.Error().Err(err).Str("platform", string(malformed.Platform)).Msg("export hit malformed upstream data")
		writeProblem(w, http.StatusInternalServerError, "Malformed Upstream Data", "the review service returned an unreadable record")
	default:
		log.Error().Err(err).Msg("export failed")
		writeProblem(w, http.StatusInternalServerError, "Export Failed", "")
	}
}
