package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/contactguard/pkg/formguard"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions selects what the contact module mounts. Nil entries are
// skipped.
type RouterOptions struct {
	Form    Mountable
	Audit   Mountable
	Metrics http.Handler
	Health  http.Handler
}

// Router assembles the contact module.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/", contact.Router(contact.RouterOptions{
//	    Form:    formSvc,
//	    Audit:   auditSvc,
//	    Metrics: metrics.Handler(),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(SecurityHeaders)

	if opts.Form != nil {
		r.Mount("/contact", opts.Form.Handle())
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/contact", http.StatusFound)
		})
		r.Method(http.MethodGet, formguard.ScriptPath, formguard.AssetHandler())
	}
	if opts.Audit != nil {
		r.Mount("/_security/audit", opts.Audit.Handle())
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Health != nil {
		r.Method(http.MethodGet, "/healthz", opts.Health)
	}
	return r
}
