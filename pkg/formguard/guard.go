package formguard

import (
	"embed"
	"net/http"
	"sync"
	"time"
)

//go:embed assets/guard.js
var assets embed.FS

// ScriptPath is where AssetHandler expects to be mounted.
const ScriptPath = "/assets/guard.js"

// AssetHandler serves guard.js.
func AssetHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := assets.ReadFile("assets/guard.js")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(b)
	})
}

// Guard is the Go model of guard.js for one form.
type Guard struct {
	cfg      Config
	sched    Scheduler
	throttle *Throttle
	onResult func(field, message string)

	mu        sync.Mutex
	debounced map[string]*Debouncer
}

// NewGuard reports debounced field results through onResult; message is ""
// when the field is valid.
func NewGuard(cfg Config, sched Scheduler, onResult func(field, message string)) *Guard {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Guard{
		cfg:       cfg,
		sched:     sched,
		throttle:  NewThrottle(cfg.MaxSubmissions, time.Duration(cfg.CooldownMS)*time.Millisecond),
		onResult:  onResult,
		debounced: make(map[string]*Debouncer),
	}
}

// Input schedules a check of field after the debounce delay, replacing any
// check still pending for that field.
func (g *Guard) Input(field, value string) {
	f, ok := g.field(field)
	if !ok {
		return
	}
	g.debouncer(field).Trigger(func() {
		if g.onResult != nil {
			g.onResult(field, f.Check(value))
		}
	})
}

// Submit checks every field synchronously and consults the local throttle.
// It returns the messages for failing fields in declaration order and
// whether the submission may be sent. Pending debounced checks are cancelled.
func (g *Guard) Submit(now time.Time, values map[string]string) (messages []string, allowed bool, retryAfter time.Duration) {
	g.mu.Lock()
	for _, d := range g.debounced {
		d.Cancel()
	}
	g.mu.Unlock()

	for _, f := range g.cfg.Fields {
		if msg := f.Check(values[f.Name]); msg != "" {
			messages = append(messages, msg)
		}
	}
	if len(messages) > 0 {
		return messages, false, 0
	}
	allowed, retryAfter = g.throttle.Allow(now)
	return nil, allowed, retryAfter
}

func (g *Guard) field(name string) (Field, bool) {
	for _, f := range g.cfg.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (g *Guard) debouncer(field string) *Debouncer {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.debounced[field]
	if !ok {
		d = NewDebouncer(g.sched, time.Duration(g.cfg.DebounceMS)*time.Millisecond)
		g.debounced[field] = d
	}
	return d
}
