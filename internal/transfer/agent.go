package transfer

import (
	"fmt"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/infra/config"
	"github.com/datallboy/gofetch/internal/infra/logger"
)

// New returns the transfer agent selected by cfg.Agent. "auto" prefers curl
// and falls back to the native client when curl is not installed.
func New(cfg config.DownloadConfig, log *logger.Logger) (app.Transferer, error) {
	switch cfg.Agent {
	case config.AgentCurl:
		c, err := NewCLICurl(cfg.LogDir, cfg.RateLimit, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.AgentHTTP:
		return NewHTTPClient(cfg.RateLimit, cfg.LogDir, log), nil
	case config.AgentAuto:
		if c, err := NewCLICurl(cfg.LogDir, cfg.RateLimit, log); err == nil {
			return c, nil
		}
		log.Debug("curl not found, using the native http agent")
		return NewHTTPClient(cfg.RateLimit, cfg.LogDir, log), nil
	default:
		return nil, fmt.Errorf("unknown transfer agent %q", cfg.Agent)
	}
}
