package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/features/home/notifications/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

type Inbox struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewInbox(db *gorm.DB) *Inbox {
	return &Inbox{DB: db, Now: time.Now}
}

func (s *Inbox) List(ctx context.Context, userID uint, unreadOnly bool, p helper.Paging) ([]model.NotificationModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.NotificationModel{}).Where("notification_user_id = ?", userID)
	if unreadOnly {
		q = q.Where("notification_is_read = ?", false)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.NotificationModel
	err := q.Session(&gorm.Session{}).Order("notification_created_at DESC, notification_id DESC").
		Offset(p.Offset).Limit(p.Limit).Find(&rows).Error
	return rows, total, err
}

// MarkRead only touches the caller's own notification.
func (s *Inbox) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.DB.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_id = ? AND notification_user_id = ?", notificationID, userID).
		Updates(map[string]any{
			"notification_is_read": true,
			"notification_read_at": s.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return helper.NotFound("notification", notificationID)
	}
	return nil
}
