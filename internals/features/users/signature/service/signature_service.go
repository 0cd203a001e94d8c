// file: internals/features/users/signature/service/signature_service.go
package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
)

// Signatures stores each user's signature image as WebP in the blob store.
type Signatures struct {
	DB    *gorm.DB
	Store storage.BlobStore
	log   *zap.Logger
}

func New(db *gorm.DB, store storage.BlobStore) *Signatures {
	return &Signatures{DB: db, Store: store, log: zap.L().Named("signatures")}
}

type Status struct {
	HasSignature bool   `json:"has_signature"`
	URL          string `json:"signature_url,omitempty"`
}

func (s *Signatures) user(ctx context.Context, userID uint) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", userID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("user", userID)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Signatures) Check(ctx context.Context, userID uint) (*Status, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := &Status{HasSignature: u.HasSignature}
	if u.HasSignature && u.SignatureKey != "" {
		st.URL = s.Store.PublicURL(u.SignatureKey)
	}
	return st, nil
}

// Upload validates the image, converts it to WebP and replaces any previous signature.
func (s *Signatures) Upload(ctx context.Context, userID uint, data []byte) (*Status, error) {
	if len(data) == 0 {
		return nil, helper.Invalid("signature", "file is empty")
	}
	if len(data) > storage.MaxImageBytes {
		return nil, helper.Invalid("signature", "file is larger than %d bytes", storage.MaxImageBytes)
	}
	if _, err := storage.SniffImage(data); err != nil {
		return nil, helper.Invalid("signature", "%v", err)
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	webp, err := storage.ToWebP(data, storage.DefaultSignatureWebP)
	if err != nil {
		return nil, helper.Invalid("signature", "could not decode image: %v", err)
	}
	key := storage.JoinKey("signatures", strconv.FormatUint(uint64(userID), 10), uuid.NewString()+".webp")
	if err := storage.PutBytes(ctx, s.Store, key, webp, "image/webp"); err != nil {
		return nil, fmt.Errorf("store signature: %w", err)
	}
	if err := s.DB.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"has_signature": true, "signature_key": key}).Error; err != nil {
		_ = s.Store.Delete(ctx, key)
		return nil, err
	}

	if old := u.SignatureKey; old != "" && old != key {
		if err := s.Store.Delete(ctx, old); err != nil {
			s.log.Warn("old signature not deleted", zap.String("key", old), zap.Error(err))
		}
	}
	s.log.Info("signature uploaded", zap.Uint("user_id", userID), zap.Int("bytes", len(webp)))
	return &Status{HasSignature: true, URL: s.Store.PublicURL(key)}, nil
}
