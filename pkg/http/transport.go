package http

import (
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// payloadKey carries the serialized request body so the logging
// transport can emit it without re-reading the request stream.
type payloadKey struct{}

type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(clone)
}

// WithBearerToken attaches an Authorization header to every request.
// An empty token leaves requests untouched.
func WithBearerToken(token string) Option {
	return WithRoundTripper(func(next http.RoundTripper) http.RoundTripper {
		return &bearerTransport{token: token, next: next}
	})
}

type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	}
	if payload, ok := req.Context().Value(payloadKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.ByteString("payload", payload))
	}
	ctxzap.Debug(req.Context(), "outbound HTTP request", fields...)

	return t.next.RoundTrip(req)
}

// WithRequestLogging logs method, URL and JSON payload of every
// outbound request at debug level through the context logger.
func WithRequestLogging() Option {
	return WithRoundTripper(func(next http.RoundTripper) http.RoundTripper {
		return &loggingTransport{next: next}
	})
}
