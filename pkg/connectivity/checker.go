// Package connectivity decides whether the completion provider is reachable
// so the pipelines can short-circuit to the offline path.
package connectivity

import (
	"context"
	"net/http"
	"time"

	"github.com/one-million-why/why-engine/pkg/config"
	"github.com/one-million-why/why-engine/pkg/observability/logging"
)

// Checker reports whether the engine should take the online path.
type Checker interface {
	Online(ctx context.Context) bool
}

// Static always reports a fixed answer. Used when offline mode is forced by
// configuration, and as the default when no probe URL is configured.
type Static bool

func (s Static) Online(context.Context) bool { return bool(s) }

// HTTPProbe decides by issuing a HEAD request against a configured URL.
type HTTPProbe struct {
	client *http.Client
	url    string
}

// NewHTTPProbe builds a probe for url bounded by timeout.
func NewHTTPProbe(url string, timeout time.Duration) *HTTPProbe {
	return &HTTPProbe{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (p *HTTPProbe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		logging.Debugf("connectivity probe to %s failed: %v", p.url, err)
		return false
	}
	resp.Body.Close()
	return true
}

// NewFromConfig builds the checker the configuration asks for.
func NewFromConfig(cfg *config.EngineConfig) Checker {
	if cfg.Offline.Forced {
		logging.Infof("offline mode forced by configuration")
		return Static(false)
	}
	if cfg.Offline.ProbeURL != "" {
		return NewHTTPProbe(cfg.Offline.ProbeURL, time.Duration(cfg.Offline.ProbeTimeoutSeconds)*time.Second)
	}
	return Static(true)
}
