package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	authService "github.com/sudoneoox/Picton/internals/features/users/auth/service"
)

// RegisterBlacklistCleanup adds a daily purge of expired revoked tokens to c.
func RegisterBlacklistCleanup(ctx context.Context, c *cron.Cron, svc *authService.Service) error {
	log := zap.L().Named("cleanup")
	_, err := c.AddFunc("@daily", func() {
		n, err := svc.PurgeExpired(ctx)
		if err != nil {
			log.Error("token blacklist cleanup failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("token blacklist cleaned", zap.Int64("deleted", n))
		}
	})
	return err
}
