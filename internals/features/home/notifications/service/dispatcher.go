// file: internals/features/home/notifications/service/dispatcher.go
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/features/home/notifications/model"
)

// Notification is a fire-and-forget message for one user.
type Notification struct {
	UserID  uint
	Title   string
	Message string
	Kind    string
	Tags    []string
}

// Notifier never reports failure to the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Nop drops everything.
var Nop Notifier = NotifierFunc(func(context.Context, Notification) {})

/* =========================================================
   Dispatcher: bounded queue drained by worker goroutines that
   write user_notifications rows. Callers enqueue after commit.
========================================================= */

type Dispatcher struct {
	db      *gorm.DB
	log     *zap.Logger
	workers int

	mu     sync.RWMutex
	queue  chan Notification
	closed bool
	g      *errgroup.Group
}

func NewDispatcher(db *gorm.DB, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Dispatcher{
		db:      db,
		log:     zap.L().Named("notifications"),
		workers: workers,
		queue:   make(chan Notification, buffer),
	}
}

// Start launches the workers. They exit once Close has drained the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	d.g = g
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for n := range d.queue {
				d.deliver(gctx, n)
			}
			return nil
		})
	}
}

func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	if n.UserID == 0 {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher closed, notification dropped", zap.Uint("user_id", n.UserID), zap.String("title", n.Title))
		return
	}
	select {
	case d.queue <- n:
	case <-ctx.Done():
		d.log.Warn("notification dropped", zap.Uint("user_id", n.UserID), zap.Error(ctx.Err()))
	default:
		d.log.Warn("notification queue full, dropped", zap.Uint("user_id", n.UserID), zap.String("title", n.Title))
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	row := model.NotificationModel{
		NotificationUserID:  n.UserID,
		NotificationTitle:   n.Title,
		NotificationMessage: n.Message,
		NotificationKind:    n.Kind,
		NotificationTags:    n.Tags,
	}
	if err := d.db.WithContext(context.WithoutCancel(ctx)).Create(&row).Error; err != nil {
		d.log.Error("notification write failed", zap.Uint("user_id", n.UserID), zap.Error(err))
		return
	}
	d.log.Debug("notification delivered", zap.Uint("user_id", n.UserID), zap.String("kind", n.Kind))
}

// Close stops accepting work and waits until the queue is drained.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	if d.g == nil {
		return nil
	}
	return d.g.Wait()
}
