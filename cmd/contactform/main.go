// Command contactform serves the protected contact form.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrymomot/contactguard/modules/contact"
	"github.com/dmitrymomot/contactguard/pkg/audit"
	"github.com/dmitrymomot/contactguard/pkg/clientip"
	"github.com/dmitrymomot/contactguard/pkg/config"
	"github.com/dmitrymomot/contactguard/pkg/cookie"
	"github.com/dmitrymomot/contactguard/pkg/email"
	"github.com/dmitrymomot/contactguard/pkg/httpserver"
	"github.com/dmitrymomot/contactguard/pkg/logger"
	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
	"github.com/dmitrymomot/contactguard/pkg/redis"
	"github.com/dmitrymomot/contactguard/pkg/requestid"
	"github.com/dmitrymomot/contactguard/pkg/session"
	svc "github.com/dmitrymomot/contactguard/svc/contact"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	// TrustProxy enables forwarding headers for client IP resolution. Only
	// set it behind a proxy that overwrites them.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
	// IdentifierSalt, when set, stores hashed client identifiers in
	// security events.
	IdentifierSalt string `env:"AUDIT_IDENTIFIER_SALT"`
	AuditStream    string `env:"AUDIT_STREAM" envDefault:"security_events"`
	AuditStreamLen int64  `env:"AUDIT_STREAM_MAXLEN" envDefault:"10000"`
}

type configs struct {
	app     appConfig
	http    httpserver.Config
	redis   redis.Config
	session session.Config
	cookie  cookie.Config
	email   email.Config
	contact svc.Config
	audit   contact.AuditConfig
}

func loadConfigs() (configs, error) {
	var c configs
	err := errors.Join(
		config.Load(&c.app),
		config.Load(&c.http),
		config.Load(&c.redis),
		config.Load(&c.session),
		config.Load(&c.cookie),
		config.Load(&c.email),
		config.Load(&c.contact),
		config.Load(&c.audit),
	)
	if err != nil {
		return c, err
	}
	return c, c.contact.Validate()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfigs()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.app.Env, "contactguard"),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	}
	if cfg.app.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.app.LogLevel)); err != nil {
			return fmt.Errorf("parse LOG_LEVEL: %w", err)
		}
		logOpts = append(logOpts, logger.WithLevel(lvl))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	var (
		rateStore    ratelimit.Store = ratelimit.NewMemoryStore()
		sessionStore session.Store   = session.NewMemoryStore()
		eventStore   audit.Storage   = audit.NewLogStorage(log)
		checks                       = map[string]contact.Check{}
	)
	if cfg.redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.redis)
		if err != nil {
			return err
		}
		defer client.Close()

		rateStore = ratelimit.NewRedisStore(client, cfg.redis.KeyPrefix)
		sessionStore = session.NewRedisStore(client, cfg.redis.KeyPrefix)
		eventStore = audit.MultiStorage{
			eventStore,
			audit.NewRedisStreamStorage(client, cfg.redis.KeyPrefix+cfg.app.AuditStream, cfg.app.AuditStreamLen),
		}
		checks["redis"] = redis.Healthcheck(client)
		log.InfoContext(ctx, "using redis stores")
	} else {
		go sweepSessions(ctx, sessionStore.(*session.MemoryStore), cfg.session.TTL)
		log.WarnContext(ctx, "REDIS_URL not set, using in-memory stores")
	}

	cookies, err := cookie.NewFromConfig(cfg.cookie)
	if err != nil {
		return fmt.Errorf("cookies: %w", err)
	}
	sessions := session.NewManager(sessionStore, cookies, cfg.session, session.WithLogger(log))

	limiter, err := ratelimit.NewLimiter(rateStore, cfg.contact.Policy)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	sender, err := email.NewSender(cfg.email)
	if err != nil {
		return err
	}
	if !cfg.email.PostmarkEnabled() {
		log.WarnContext(ctx, "postmark not configured, writing emails to disk", slog.String("dir", cfg.email.DevOutputDir))
	}

	recorderOpts := []audit.Option{audit.WithRequestIDExtractor(requestid.FromContext)}
	if cfg.app.IdentifierSalt != "" {
		recorderOpts = append(recorderOpts, audit.WithIdentifierHashing(cfg.app.IdentifierSalt))
	}

	pipeline := svc.NewHandler(limiter, svc.NewEmailNotifier(sender, cfg.contact.Recipient),
		svc.WithEventRecorder(audit.NewRecorder(eventStore, recorderOpts...)),
		svc.WithLogger(log),
		svc.WithSubject(cfg.contact.Subject),
		svc.WithDispatchTimeout(cfg.contact.DispatchTimeout),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := contact.NewMetrics(registry)

	form, err := contact.NewFormService(pipeline, sessions,
		contact.WithFormLogger(log),
		contact.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	auditSvc := contact.NewAuditService(contact.NewHarness(cfg.contact.Policy), cfg.audit, metrics, log)
	if cfg.audit.Token == "" {
		log.WarnContext(ctx, "AUDIT_TOKEN not set, security audit endpoint is public")
	}

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware(clientip.NewResolver(clientip.WithTrustedProxy(cfg.app.TrustProxy))),
		middleware.Recoverer,
	)
	r.Mount("/", contact.Router(contact.RouterOptions{
		Form:    form,
		Audit:   auditSvc,
		Metrics: metrics.Handler(),
		Health:  contact.Health(checks),
	}))

	return httpserver.New(cfg.http, r, httpserver.WithLogger(log)).Run(ctx)
}

// sweepSessions drops expired in-memory sessions until ctx is done.
func sweepSessions(ctx context.Context, store *session.MemoryStore, every time.Duration) {
	ticker := time.NewTicker(max(every/4, time.Minute))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.DeleteExpired(ctx); n > 0 {
				slog.DebugContext(ctx, "expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
