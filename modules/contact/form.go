package contact

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/contactguard/pkg/clientip"
	"github.com/dmitrymomot/contactguard/pkg/csrf"
	"github.com/dmitrymomot/contactguard/pkg/formguard"
	"github.com/dmitrymomot/contactguard/pkg/logger"
	"github.com/dmitrymomot/contactguard/pkg/session"
	svc "github.com/dmitrymomot/contactguard/svc/contact"
)

// FormService serves the contact page and accepts submissions.
type FormService struct {
	pipeline   *svc.Handler
	sessionMgr *session.Manager
	issuer     *csrf.Issuer
	views      *Views
	metrics    *Metrics
	log        *slog.Logger
	guardAttr  string
	successURL string
}

type FormOption func(*FormService)

func WithFormLogger(l *slog.Logger) FormOption {
	return func(s *FormService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *Metrics) FormOption {
	return func(s *FormService) { s.metrics = m }
}

func WithViews(v *Views) FormOption {
	return func(s *FormService) {
		if v != nil {
			s.views = v
		}
	}
}

// WithSuccessURL sets where a dispatched submission is redirected.
func WithSuccessURL(url string) FormOption {
	return func(s *FormService) {
		if url != "" {
			s.successURL = url
		}
	}
}

func NewFormService(pipeline *svc.Handler, sessionMgr *session.Manager, opts ...FormOption) (*FormService, error) {
	attr, err := formguard.NewConfig(svc.GuardFields()).Attr()
	if err != nil {
		return nil, err
	}
	s := &FormService{
		pipeline:   pipeline,
		sessionMgr: sessionMgr,
		issuer:     csrf.NewIssuer(sessionMgr),
		views:      DefaultViews(),
		log:        logger.Nop(),
		guardAttr:  attr,
		successURL: "/contact?success=1",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("contact_form"))
	return s, nil
}

func (s *FormService) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(s.sessionMgr.Middleware)
	r.Get("/", s.show)
	r.Post("/", s.submit)
	return r
}

func (s *FormService) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := s.issuer.Issue(ctx, session.FromContext(ctx))
	if err != nil {
		s.log.ErrorContext(ctx, "failed to issue csrf token", logger.Error(err))
		http.Error(w, svc.MessageTryLater, http.StatusInternalServerError)
		return
	}
	s.render(ctx, w, http.StatusOK, FormPageParams{
		Success:   r.URL.Query().Get("success") == "1",
		CSRFToken: token,
	})
}

func (s *FormService) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sub := svc.SubmissionFromForm(clientID(r), r.PostForm)
	out, err := s.pipeline.Handle(ctx, session.FromContext(ctx), sub)
	s.metrics.observeSubmission(err)

	if err == nil {
		http.Redirect(w, r, s.successURL, http.StatusSeeOther)
		return
	}

	params := FormPageParams{Values: sub.Values}
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, svc.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", out.Decision.RetryAfterHeader())
		params.Notice = svc.PublicMessage(err)
	case errors.Is(err, svc.ErrInvalidToken):
		status = http.StatusForbidden
		params.Notice = svc.PublicMessage(err)
	case errors.Is(err, svc.ErrValidationFailed):
		status = http.StatusUnprocessableEntity
		params.Errors = out.Results.Messages()
	default:
		params.Notice = svc.PublicMessage(err)
	}

	// A fresh session lets a visitor whose session expired retry after the
	// re-render.
	sess, serr := s.sessionMgr.Ensure(ctx, w, r)
	if serr == nil {
		params.CSRFToken, serr = s.issuer.Issue(ctx, sess)
	}
	if serr != nil {
		s.log.ErrorContext(ctx, "failed to prepare form re-render", logger.Error(serr))
	}
	s.render(ctx, w, status, params)
}

func (s *FormService) render(ctx context.Context, w http.ResponseWriter, status int, p FormPageParams) {
	p.GuardAttr = s.guardAttr
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.views.FormPage(p).Render(ctx, w); err != nil {
		s.log.ErrorContext(ctx, "failed to render contact page", logger.Error(err))
	}
}

// clientID is the rate-limit identifier for r: the resolved client IP, or
// the connection's remote host when no resolver ran.
func clientID(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
