package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/contactguard/pkg/clientip"
)

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trust      bool
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr with port", remoteAddr: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "remote addr without port", remoteAddr: "192.0.2.11", want: "192.0.2.11"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "garbage remote addr", remoteAddr: "not-an-ip", want: ""},
		{
			name:       "untrusted proxy headers are ignored",
			remoteAddr: "192.0.2.10:1",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5"},
			want:       "192.0.2.10",
		},
		{
			name:       "trusted forwarded chain takes first valid",
			trust:      true,
			remoteAddr: "192.0.2.10:1",
			headers:    map[string]string{"X-Forwarded-For": "bogus, 203.0.113.5, 10.0.0.1"},
			want:       "203.0.113.5",
		},
		{
			name:       "cloudflare header wins",
			trust:      true,
			remoteAddr: "192.0.2.10:1",
			headers: map[string]string{
				"CF-Connecting-IP": "198.51.100.7",
				"X-Real-IP":        "203.0.113.9",
			},
			want: "198.51.100.7",
		},
		{
			name:       "invalid headers fall back to remote addr",
			trust:      true,
			remoteAddr: "192.0.2.10:1",
			headers:    map[string]string{"X-Real-IP": "<script>"},
			want:       "192.0.2.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			res := clientip.NewResolver(clientip.WithTrustedProxy(tt.trust))
			assert.Equal(t, tt.want, res.Resolve(req))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.44:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.44", got)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	ex := clientip.LoggerExtractor()
	_, ok := ex(context.Background())
	assert.False(t, ok)

	attr, ok := ex(clientip.WithContext(context.Background(), "192.0.2.1"))
	assert.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "192.0.2.1", attr.Value.String())
}
