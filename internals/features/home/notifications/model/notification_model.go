package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationModel is one inbox entry for one user.
type NotificationModel struct {
	NotificationID        uint                        `gorm:"column:notification_id;primaryKey;autoIncrement" json:"notification_id"`
	NotificationUserID    uint                        `gorm:"column:notification_user_id;not null;index:idx_notification_user_read,priority:1" json:"notification_user_id"`
	NotificationTitle     string                      `gorm:"column:notification_title;type:varchar(255);not null" json:"notification_title"`
	NotificationMessage   string                      `gorm:"column:notification_message;type:text" json:"notification_message"`
	NotificationKind      string                      `gorm:"column:notification_kind;type:varchar(30);not null" json:"notification_kind"`
	NotificationTags      datatypes.JSONSlice[string] `gorm:"column:notification_tags" json:"notification_tags"`
	NotificationIsRead    bool                        `gorm:"column:notification_is_read;not null;default:false;index:idx_notification_user_read,priority:2" json:"notification_is_read"`
	NotificationReadAt    *time.Time                  `gorm:"column:notification_read_at" json:"notification_read_at,omitempty"`
	NotificationCreatedAt time.Time                   `gorm:"column:notification_created_at;autoCreateTime" json:"notification_created_at"`
}

func (NotificationModel) TableName() string {
	return "user_notifications"
}
