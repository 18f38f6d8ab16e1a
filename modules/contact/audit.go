package contact

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/contactguard/pkg/logger"
	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
	"github.com/dmitrymomot/contactguard/pkg/selfcheck"
	svc "github.com/dmitrymomot/contactguard/svc/contact"
)

// NewHarness builds a self-check over the contact field rules. The
// rate-limit probe uses policy on a private store.
func NewHarness(policy ratelimit.Policy) *selfcheck.Harness {
	return selfcheck.New(func(field, value string) bool {
		return svc.Validate(field, value).Valid
	}, selfcheck.WithPolicy(policy))
}

// AuditConfig controls access to the self-check endpoint.
type AuditConfig struct {
	// Token, when set, must be presented as "Authorization: Bearer <token>".
	Token string `env:"AUDIT_TOKEN"`
	// Rate is the sustained runs per second across all callers.
	Rate  float64 `env:"AUDIT_RATE" envDefault:"0.2"`
	Burst int     `env:"AUDIT_BURST" envDefault:"3"`
}

// AuditService serves the self-check report.
type AuditService struct {
	harness *selfcheck.Harness
	limiter *rate.Limiter
	token   string
	metrics *Metrics
	log     *slog.Logger
}

func NewAuditService(harness *selfcheck.Harness, cfg AuditConfig, metrics *Metrics, log *slog.Logger) *AuditService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditService{
		harness: harness,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), max(cfg.Burst, 1)),
		token:   cfg.Token,
		metrics: metrics,
		log:     log.With(logger.Component("security_audit")),
	}
}

func (s *AuditService) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.run)
	return r
}

func (s *AuditService) run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="security-audit"`)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if !s.limiter.Allow() {
		w.Header().Set("Retry-After", "5")
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}

	report := s.harness.Run(ctx, selfcheck.RunOptions{Secure: isSecure(r)})
	s.metrics.observeAudit(report.Passed())
	if !report.Passed() {
		s.log.WarnContext(ctx, "security self-check failed", slog.Any("checks", report.Failed()))
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Selfcheck-Result", map[bool]string{true: "pass", false: "fail"}[report.Passed()])
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			s.log.ErrorContext(ctx, "failed to encode report", logger.Error(err))
		}
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report.String()))
}

func (s *AuditService) authorized(r *http.Request) bool {
	if s.token == "" {
		return true
	}
	presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) == 1
}
