package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"monthledger/internal/core"
	applog "monthledger/internal/log"
	"monthledger/internal/middleware/security"
	"monthledger/internal/middleware/trace"
	"monthledger/internal/services"
	appweb "monthledger/web"
)

const sessionCookie = "ledger_session"

// Options configures the web surface.
type Options struct {
	Logger         *applog.Logger
	ExportFilename string
	ExportFormat   string
	SessionTTL     time.Duration
	// SecureCookies marks the session cookie Secure; set behind TLS.
	SecureCookies bool
	// OnShutdown runs once, before the listener is closed.
	OnShutdown func()
}

type Server struct {
	http.Server
	templates *template.Template
	ledgers   *services.LedgerService
	logger    *applog.Logger
	opts      Options
	startedAt time.Time

	traceMiddleware *trace.Middleware
	shutdownOnce    sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledgers *services.LedgerService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	if opts.ExportFilename == "" {
		opts.ExportFilename = "ledger_report"
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = "pdf"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}

	mux := http.NewServeMux()
	s := &Server{
		ledgers:         ledgers,
		logger:          opts.Logger.WithComponent(applog.ComponentHTTP),
		opts:            opts,
		startedAt:       time.Now(),
		traceMiddleware: trace.NewMiddleware(opts.Logger),
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/ledger", s.handleLedger)
	mux.HandleFunc("/ledger/generate", s.handleGenerate)
	mux.HandleFunc("/ledger/payments", s.handlePayments)
	mux.HandleFunc("/ledger/export", s.handleExport)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.traceMiddleware.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	return s
}

// Shutdown runs the shutdown hook once and then shuts the HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.opts.OnShutdown != nil {
			s.opts.OnShutdown()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// session returns the caller's session id, creating a session and setting
// the cookie when the request carries none or an expired one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	current := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		current = c.Value
	}
	id := s.ledgers.Open(r.Context(), current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.opts.SessionTTL.Seconds()),
			HttpOnly: true,
			Secure:   s.opts.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Session cookie issued",
			applog.FieldSessionID, id, applog.FieldClientIP, clientIP(r))
	}
	return id
}

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
}
