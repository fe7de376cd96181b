package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"monthledger/internal/core"
	"monthledger/internal/export"
	applog "monthledger/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady reports whether templates loaded and how busy the session store is.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil || s.templates.Lookup("index.html") == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["sessions"] = map[string]interface{}{
		"active": s.ledgers.ActiveSessions(),
		"status": "ok",
	}
	checks["requests_total"] = s.traceMiddleware.TotalRequests()

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// pageData feeds index.html; Ledger is the partial's data.
type pageData struct {
	Ledger  ledgerData
	Formats []string
	Export  string
}

// ledgerData feeds ledger.html.
type ledgerData struct {
	View core.View
}

func (d ledgerData) Empty() bool { return d.View.IsEmpty() }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldOperation, applog.OpRender)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	id := s.session(w, r)
	view, err := s.ledgers.View(r.Context(), id)
	if err != nil {
		errorResponse(err).Write(w)
		return
	}

	data := pageData{
		Ledger:  ledgerData{View: view},
		Formats: export.Formats(),
		Export:  s.opts.ExportFormat,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err.Error(), "template", "index.html")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
