package clientip

import (
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders lists proxy headers in priority order.
var DefaultHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// Resolver extracts the client IP from a request.
type Resolver struct {
	trustProxy bool
	headers    []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTrustedProxy makes the resolver consult proxy headers before RemoteAddr.
func WithTrustedProxy(trust bool) Option {
	return func(r *Resolver) { r.trustProxy = trust }
}

// WithHeaders overrides the header priority list.
func WithHeaders(headers ...string) Option {
	return func(r *Resolver) {
		if len(headers) > 0 {
			r.headers = headers
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{headers: DefaultHeaders}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the normalized client IP or an empty string when neither
// the headers nor RemoteAddr carry a valid address.
func (res *Resolver) Resolve(r *http.Request) string {
	if res.trustProxy {
		for _, h := range res.headers {
			v := r.Header.Get(h)
			if v == "" {
				continue
			}
			// X-Forwarded-For may carry a chain; the first valid entry is the client.
			for part := range strings.SplitSeq(v, ",") {
				if ip := normalize(part); ip != "" {
					return ip
				}
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
