// file: internals/features/users/auth/service/auth_service.go
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sudoneoox/Picton/internals/features/users/auth/model"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

type Service struct {
	DB     *gorm.DB
	Users  *userService.Service
	Secret string
	TTL    time.Duration
	Now    func() time.Time
	log    *zap.Logger
}

func New(db *gorm.DB, users *userService.Service, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{DB: db, Users: users, Secret: secret, TTL: ttl, Now: time.Now, log: zap.L().Named("auth")}
}

type LoginResult struct {
	AccessToken string               `json:"access_token"`
	ExpiresAt   time.Time            `json:"expires_at"`
	User        *userModel.UserModel `json:"user"`
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	u, err := s.Users.Authenticate(ctx, login, password)
	if err != nil {
		s.log.Info("login rejected", zap.String("login", login))
		return nil, err
	}
	token, exp, err := helperAuth.IssueAccessToken(s.Secret, s.TTL, u.ID, u.UserName, u.Role, u.IsSuperuser, s.Now())
	if err != nil {
		return nil, err
	}
	s.log.Info("login", zap.Uint("user_id", u.ID))
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: u}, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Logout revokes the token until its own expiry.
func (s *Service) Logout(ctx context.Context, raw string, userID uint, exp time.Time) error {
	row := model.TokenBlacklistModel{TokenHash: hashToken(raw), UserID: userID, ExpiredAt: exp.UTC()}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (s *Service) IsRevoked(ctx context.Context, raw string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.TokenBlacklistModel{}).
		Where("token_blacklist_token_hash = ?", hashToken(raw)).
		Count(&n).Error
	return n > 0, err
}

// PurgeExpired drops blacklist rows whose tokens can no longer be presented.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("token_blacklist_expired_at < ?", s.Now().UTC()).
		Delete(&model.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}
