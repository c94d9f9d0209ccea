package http

import (
	"net/http"
	"time"
)

type HttpOpts func(*httpConfig)

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.connClientTimeout = timeout
	}
}

// WithRequestTimeout bounds plain requests. Streams ignore it.
func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.requestTimeout = timeout
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.clientKeepAlive = keepAlive
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.responseHeaderTimeout = timeout
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *httpConfig) {
		c.idleConnTimeout = timeout
	}
}

// WithMaxIdleConnsPerHost sizes the keep-alive pool per upstream. Non-positive
// values keep the default.
func WithMaxIdleConnsPerHost(maxConns int) HttpOpts {
	return func(c *httpConfig) {
		if maxConns > 0 {
			c.maxIdleConnsPerHost = maxConns
		}
	}
}

// WithUserAgent sets the User-Agent of requests that do not set one.
func WithUserAgent(userAgent string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{key: "User-Agent", value: userAgent, transport: rt}
	})
}

// WithTransport wraps the round tripper; wrappers apply in call order.
func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.transports = append(c.transports, transport)
	}
}
