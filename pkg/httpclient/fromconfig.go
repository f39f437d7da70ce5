package httpclient

import (
	"fmt"
	"net/http"

	"connkit/pkg/budget"
	"connkit/pkg/cache"
	"connkit/pkg/config"
	"connkit/pkg/logger"
)

// NewFromConfig builds a Client from a loaded configuration: name, per-call
// timeout, retry defaults, budget policies in declared order, logging, and
// the optional in-process response cache. Options apply afterwards and win.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
		WithLogger(log),
		WithRetryDefaults(cfg.Retry.MaxRetries, cfg.Retry.MaxTime, cfg.Retry.Factor),
	}

	if len(cfg.Budget) > 0 {
		policies := make([]budget.Policy, 0, len(cfg.Budget))
		for _, p := range cfg.Budget {
			var limiter budget.Limiter
			if p.Interval > 0 {
				limiter = budget.NewFixedInterval(p.Interval)
			} else {
				limiter = budget.NewCallRate(p.Calls, p.Window)
			}
			policies = append(policies, budget.Policy{
				Matcher: budget.RequestMatcher{Method: p.Method, PathPrefix: p.PathPrefix},
				Limiter: limiter,
			})
		}
		base = append(base, WithBudget(budget.New(policies...)))
	}

	if cfg.Client.UseCache {
		base = append(base, WithCache(cache.NewMemory()))
	}

	return New(cfg.Client.Name, append(base, opts...)...), nil
}
