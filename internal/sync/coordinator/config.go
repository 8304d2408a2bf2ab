package coordinator

import (
	"time"

	"github.com/stacklok/pipeline-tracker/internal/config"
)

// schedule holds the timing of reconciliation passes
type schedule struct {
	interval time.Duration
	timeout  time.Duration
}

// scheduleFromConfig reads the reconcile section, falling back to the defaults
func scheduleFromConfig(cfg *config.Config) schedule {
	if cfg == nil {
		return schedule{interval: config.DefaultReconcileInterval, timeout: config.DefaultReconcileTimeout}
	}
	return schedule{
		interval: cfg.GetReconcileInterval(),
		timeout:  cfg.GetReconcileTimeout(),
	}
}
