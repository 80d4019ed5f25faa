package server

import (
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bookdash/pkg/books"
	"github.com/matzehuels/bookdash/pkg/buildinfo"
	"github.com/matzehuels/bookdash/pkg/errors"
	"github.com/matzehuels/bookdash/pkg/render"
	"github.com/matzehuels/bookdash/pkg/views"
)

// maxInches bounds the width and height query parameters.
const maxInches = 40

// columns is the dashboard layout, left to right.
var columns = [2][]views.Name{
	{views.Trend, views.TopBooks},
	{views.TopAuthors, views.GenreDistribution, views.SalesByDecade},
}

type panel struct {
	Name  views.Name
	Label string
	Src   string
}

type dashboardData struct {
	Title    string
	Columns  [2][]panel
	Source   string
	Records  int
	Skipped  int
	LoadedAt time.Time
	Version  string
}

type failureData struct {
	Title   string
	Status  int
	Code    errors.Code
	Message string
}

// handleDashboard serves the dashboard page.
// GET /
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ds, err := s.runner.Dataset(r.Context())
	if err != nil {
		s.renderFailure(w, err)
		return
	}

	data := dashboardData{
		Title:    Title,
		Source:   ds.Source,
		Records:  ds.Len(),
		Skipped:  ds.Stats.Skipped,
		LoadedAt: ds.LoadedAt,
		Version:  buildinfo.Get().Version,
	}
	for i, col := range columns {
		for _, n := range col {
			data.Columns[i] = append(data.Columns[i], panel{
				Name:  n,
				Label: n.Label(),
				Src:   "/charts/" + string(n) + render.FormatSVG.Ext(),
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.Error("failed to execute dashboard template", "error", err)
	}
}

// renderFailure serves the failed page. The load is not retried; the next
// request tries again.
func (s *Server) renderFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logger.Error("dashboard unavailable", "status", status, "error", err)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := failureData{
		Title:   Title,
		Status:  status,
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	}
	if err := s.pages.ExecuteTemplate(w, "error.html", data); err != nil {
		s.logger.Error("failed to execute error template", "error", err)
	}
}

// handleChart serves one rendered view.
// GET /charts/{name}.{format}
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	if ext == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "chart %q has no format extension", file))
		return
	}
	f, err := render.ParseFormat(ext)
	if err != nil {
		s.writeError(w, err)
		return
	}
	name, err := views.Parse(strings.TrimSuffix(file, ext))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ro, err := s.renderOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, hit, err := s.runner.ArtifactWithCacheInfo(r.Context(), name, f, ro)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	if f == render.FormatXLSX || f == render.FormatPDF {
		w.Header().Set("Content-Disposition", `attachment; filename="`+string(name)+f.Ext()+`"`)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleListViews returns every view as a JSON document.
// GET /api/views
func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	vs, _, err := s.runner.Views(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	docs := make([]render.Document, len(vs))
	for i, v := range vs {
		docs[i] = render.NewDocument(v, render.SpecFor(v.Name))
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleGetView returns one view as a JSON document.
// GET /api/views/{name}
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	name, err := views.Parse(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ds, err := s.runner.Dataset(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.runner.View(r.Context(), name, ds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render.NewDocument(v, render.SpecFor(name)))
}

type statsResponse struct {
	Source      string          `json:"source"`
	Fingerprint string          `json:"fingerprint"`
	Policy      string          `json:"policy"`
	LoadedAt    time.Time       `json:"loaded_at"`
	Cached      bool            `json:"cached"`
	TotalSales  float64         `json:"total_sales"`
	Load        books.LoadStats `json:"load"`
	Build       buildinfo.Info  `json:"build"`
}

// handleStats reports how the current dataset was loaded.
// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ds, hit, err := s.runner.DatasetWithCacheInfo(r.Context(), false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Source:      ds.Source,
		Fingerprint: ds.Fingerprint,
		Policy:      string(s.runner.Store.Policy()),
		LoadedAt:    ds.LoadedAt,
		Cached:      hit,
		TotalSales:  ds.TotalSales(),
		Load:        ds.Stats,
		Build:       buildinfo.Get(),
	})
}

// handleHealth reports liveness. It does not touch the data source.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderOptions reads the optional width and height query parameters.
func (s *Server) renderOptions(r *http.Request) (render.Options, error) {
	ro := s.render
	for _, p := range []struct {
		key string
		dst *float64
	}{{"width", &ro.Width}, {"height", &ro.Height}} {
		raw := r.URL.Query().Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v > maxInches {
			return render.Options{}, errors.New(errors.ErrCodeInvalidInput, "%s must be a number of inches in (0, %d], got %q", p.key, maxInches, raw)
		}
		*p.dst = v
	}
	return ro, nil
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Details []string    `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err), Details: errors.Details(err)}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeDataUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeInvalidView:
		return http.StatusNotFound
	case errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeClosed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
