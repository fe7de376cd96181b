package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"monthledger/internal/core"
	"monthledger/internal/export"
	applog "monthledger/internal/log"
	"monthledger/internal/middleware/trace"
)

// handleLedger renders the ledger partial for the caller's session.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	id := s.session(w, r)
	view, err := s.ledgers.View(r.Context(), id)
	if err != nil {
		s.fail(w, r, applog.OpView, err)
		return
	}
	s.renderLedger(w, r, view, NewHTMXResponse())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		s.logger.WarnContext(r.Context(), "Parse form error",
			applog.FieldOperation, applog.OpParseForm, applog.FieldPath, r.URL.Path)
		resp.Write(w)
		return
	}

	id := s.session(w, r)
	view, err := s.ledgers.Generate(r.Context(), id, ParseGenerateForm(r.PostForm))
	if err != nil {
		s.fail(w, r, applog.OpGenerate, err)
		return
	}

	months := len(view.Entries)
	s.renderLedger(w, r, view, NewHTMXResponse().
		TriggerLedgerGenerated(months).
		TriggerSuccessNotification(fmt.Sprintf("Ledger generated: %d %s", months, plural(months, "month", "months"))))
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := s.session(w, r)
	view, err := s.ledgers.RecordPayments(r.Context(), id, ParsePaymentForm(r.PostForm))
	if err != nil {
		s.fail(w, r, applog.OpPayments, err)
		return
	}

	s.renderLedger(w, r, view, NewHTMXResponse().
		TriggerPaymentsRecorded(len(view.Entries)).
		TriggerSuccessNotification("Ledger updated"))
}

// handleExport streams the ledger as a download in the requested format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.opts.ExportFormat
	}
	exporter, err := export.ForFormat(format)
	if err != nil {
		s.fail(w, r, applog.OpExport, err)
		return
	}

	id := s.session(w, r)
	view, err := s.ledgers.View(r.Context(), id)
	if err == nil && view.IsEmpty() {
		err = export.ErrEmptyLedger
	}
	if err != nil {
		s.fail(w, r, applog.OpExport, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, view); err != nil {
		s.fail(w, r, applog.OpExport, err)
		return
	}

	filename := export.Filename(s.opts.ExportFilename, exporter)
	s.logger.InfoContext(r.Context(), "Ledger exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldSessionID, id,
		applog.FieldFormat, exporter.Extension(),
		applog.FieldFile, filename,
		applog.FieldMonths, len(view.Entries))

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// renderLedger executes the ledger partial and writes it through resp.
func (s *Server) renderLedger(w http.ResponseWriter, r *http.Request, view core.View, resp *HTMXResponseBuilder) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "ledger.html", ledgerData{View: view}); err != nil {
		s.logger.ErrorContext(r.Context(), "Ledger template execution failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err.Error())
		InternalServerError("Error rendering ledger").Write(w)
		return
	}
	resp.BodyHTML(buf.String()).Write(w)
}

// fail maps err to a response; unexpected errors are logged at error level.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := errorResponse(err)
	if resp.statusCode >= http.StatusInternalServerError {
		requestID := trace.GetRequestID(r.Context())
		applog.NewStructuredLogger(s.logger).LogError(r.Context(), "Request failed", err,
			applog.ComponentHTTP, op,
			applog.NewFields().
				WithRequestID(requestID).
				WithHTTPRequest(r.Method, r.URL.Path, r.UserAgent()))
		if requestID != "" {
			resp = InternalServerError("Something went wrong (ref " + requestID + ")")
		}
	}
	resp.Write(w)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
