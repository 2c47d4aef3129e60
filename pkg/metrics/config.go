package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every poolman metric name.
const DefaultNamespace = "poolman"

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registry to use. If nil, uses prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace overrides the default "poolman" namespace for metrics.
	Namespace string

	// Labels are additional constant labels added to all metrics.
	Labels prometheus.Labels
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
	}
}

// Build returns the registry described by cfg, or nil when metrics are
// disabled. Components treat a nil *Registry as "do not record".
func (cfg Config) Build() *Registry {
	if !cfg.Enabled {
		return nil
	}
	if (cfg.Registry == nil || cfg.Registry == prometheus.DefaultRegisterer) &&
		(cfg.Namespace == "" || cfg.Namespace == DefaultNamespace) &&
		len(cfg.Labels) == 0 {
		return DefaultRegistry
	}
	return NewRegistryWithConfig(cfg)
}
