package http

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/charts"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/remote"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	appweb "expensetracker/web"
)

// DefaultMaxPhotoBytes bounds photo uploads when Options leaves it unset.
const DefaultMaxPhotoBytes = 5 << 20

// Options configures a Server. Backend is required.
type Options struct {
	Addr      string
	Backend   remote.Backend
	Photos    remote.PhotoReader      // nil when photos live elsewhere
	Publisher services.EventPublisher // nil disables expense events
	Sessions  *session.Store
	Logger    *applog.Logger

	RateLimitPerMinute int
	MaxPhotoBytes      int64
	SessionTTL         time.Duration
	SecureCookies      bool

	// Ready is probed by /readyz when set.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	templates *template.Template
	backend   remote.Backend
	photos    remote.PhotoReader
	publisher services.EventPublisher
	sessions  *session.Store
	logger    *applog.Logger
	ready     func(ctx context.Context) error
	charts    *charts.Generator

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	maxPhotoBytes int64
	sessionTTL    time.Duration
	secureCookies bool
	startedAt     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(12 * time.Hour)
	}
	maxPhoto := opts.MaxPhotoBytes
	if maxPhoto <= 0 {
		maxPhoto = DefaultMaxPhotoBytes
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	detector := security.NewDetector()
	s := &Server{
		backend:          opts.Backend,
		photos:           opts.Photos,
		publisher:        opts.Publisher,
		sessions:         sessions,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		ready:            opts.Ready,
		charts:           charts.NewGenerator(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		maxPhotoBytes:    maxPhoto,
		sessionTTL:       ttl,
		secureCookies:    opts.SecureCookies,
		startedAt:        time.Now(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)

	guarded := func(h http.HandlerFunc) http.Handler {
		return security.NoStore(s.RequireSession(h))
	}
	mux.Handle("GET /{$}", guarded(s.handleIndex))
	mux.Handle("POST /categories", guarded(s.handleCreateCategory))
	mux.Handle("POST /expenses", guarded(s.handleCreateExpense))
	mux.Handle("GET /ui/expenses", guarded(s.handleExpenseList))
	mux.Handle("GET /expenses/chart.png", guarded(s.handleExpenseChart))
	mux.Handle("GET "+remote.PhotoPathPrefix+"{id}", s.RequireSession(http.HandlerFunc(s.handlePhoto)))

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return h
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		TriggerErrorNotification("Too many requests. Please try again later.").
		Write(w)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a template into a buffer first so a failing template never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path)
		s.internalError(w, r)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Template execution failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentTemplate))
		s.internalError(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// internalError answers 500 with the request id so a user report can be
// matched to the access log.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request) {
	msg := "Something went wrong."
	if id := trace.GetRequestID(r.Context()); id != "" {
		msg += " Reference: " + id
	}
	InternalServerError(msg).Write(w)
}

// renderFragment is render for HTMX responses that also carry triggers.
func (s *Server) renderFragment(r *http.Request, resp *HTMXResponseBuilder, name string, data any) *HTMXResponseBuilder {
	if s.templates == nil {
		return resp
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Fragment execution failed", err, applog.OpRender, nil)
		return resp
	}
	return resp.BodyHTML(buf.String())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["backend"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"rejected":       s.rateLimiter.Hits(),
	}
	checks["sessions"] = s.sessions.Len()

	tm := s.traceMiddleware.GetMetrics()
	checks["trace"] = map[string]any{
		"total_requests":       tm.TotalRequests,
		"last_response_micros": tm.LastResponseMicros,
	}
	dm := s.securityDetector.GetMetrics()
	checks["security"] = map[string]any{
		"suspicious_requests": dm.SuspiciousRequests,
		"blocked_requests":    dm.BlockedRequests,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
