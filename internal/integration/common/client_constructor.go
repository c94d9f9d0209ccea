package common

import (
	"github.com/futig/planner-backend/internal/config"
	pkgHTTP "github.com/futig/planner-backend/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "planner-backend"

// NewServiceConnector builds the HTTP connector for one upstream service.
// Outbound requests are logged with the service name.
func NewServiceConnector(service string, cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger.With(zap.String("service", service)),
		BaseURL: cfg.Url,
	}

	auth := pkgHTTP.WithAuthToken(cfg.Token)
	if cfg.AuthHeader != "" {
		auth = pkgHTTP.WithAPIKeyHeader(cfg.AuthHeader, "", cfg.Token)
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithMaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithUserAgent(userAgent),
		auth,
	)
}
