package model

import "time"

// TokenBlacklistModel holds revoked access tokens until they would have expired anyway.
type TokenBlacklistModel struct {
	ID        uint      `gorm:"column:token_blacklist_id;primaryKey;autoIncrement" json:"id"`
	TokenHash string    `gorm:"column:token_blacklist_token_hash;size:64;not null;uniqueIndex" json:"-"`
	UserID    uint      `gorm:"column:token_blacklist_user_id;not null;index" json:"user_id"`
	ExpiredAt time.Time `gorm:"column:token_blacklist_expired_at;not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"column:token_blacklist_created_at;autoCreateTime" json:"created_at"`
}

func (TokenBlacklistModel) TableName() string {
	return "token_blacklist"
}
