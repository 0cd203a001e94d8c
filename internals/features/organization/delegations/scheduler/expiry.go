// file: internals/features/organization/delegations/scheduler/expiry.go
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
)

// StartExpiryScheduler runs ExpireLapsed on spec (e.g. "@every 15m") until the
// returned cron is stopped.
func StartExpiryScheduler(ctx context.Context, reg *service.Registry, spec string) (*cron.Cron, error) {
	log := zap.L().Named("delegation-expiry")
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		n, err := reg.ExpireLapsed(runCtx)
		if err != nil {
			log.Error("expire delegations failed", zap.Error(err))
			return
		}
		log.Debug("expiry sweep done", zap.Int("expired", n))
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info("delegation expiry scheduled", zap.String("spec", spec))
	return c, nil
}
