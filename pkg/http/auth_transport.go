package http

import "net/http"

const bearerScheme = "Bearer "

// authTransport puts a credential header on every request that does not
// already carry one.
type authTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(t.header) != "" {
		return t.transport.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set(t.header, t.value)
	return t.transport.RoundTrip(authed)
}

// WithAuthToken sends token as a bearer Authorization header. An empty token
// leaves requests unchanged.
func WithAuthToken(token string) HttpOpts {
	return WithAPIKeyHeader("Authorization", bearerScheme, token)
}

// WithAPIKeyHeader sends prefix+key in header, for services that take the key
// outside the Authorization header.
func WithAPIKeyHeader(header, prefix, key string) HttpOpts {
	if key == "" {
		return func(*httpConfig) {}
	}

	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    http.CanonicalHeaderKey(header),
			value:     prefix + key,
			transport: rt,
		}
	})
}

type headerTransport struct {
	key       string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" || req.Header.Get(t.key) != "" {
		return t.transport.RoundTrip(req)
	}

	withHeader := req.Clone(req.Context())
	withHeader.Header.Set(t.key, t.value)
	return t.transport.RoundTrip(withHeader)
}
