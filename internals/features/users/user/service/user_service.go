// file: internals/features/users/user/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

const (
	personalIDMin      = 1000000
	personalIDMax      = 9999999
	personalIDAttempts = 20
)

var ErrPersonalIDExhausted = errors.New("could not allocate a unique personal id")

type Service struct {
	DB *gorm.DB
	// RandPersonalID returns a candidate in [1000000, 9999999].
	RandPersonalID func() int
}

func New(db *gorm.DB) *Service {
	return &Service{
		DB: db,
		RandPersonalID: func() int {
			return personalIDMin + rand.Intn(personalIDMax-personalIDMin+1)
		},
	}
}

type CreateInput struct {
	UserName    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        constants.Role
	IsSuperuser bool
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Create inserts the user and then allocates a personal id.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.UserModel, error) {
	if in.Role == "" {
		in.Role = constants.RoleStudent
	}
	if !in.Role.Valid() {
		return nil, helper.Invalid("role", "unknown role %q", in.Role)
	}
	if strings.TrimSpace(in.UserName) == "" {
		return nil, helper.Invalid("user_name", "is required")
	}
	if len(in.Password) < 8 {
		return nil, helper.Invalid("password", "must be at least 8 characters")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.UserModel{
		UserName:    in.UserName,
		Email:       in.Email,
		Password:    hash,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Role:        in.Role,
		IsSuperuser: in.IsSuperuser,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.Invalid("user_name", "user name or email already taken")
		}
		return nil, err
	}

	pid, err := s.AssignPersonalID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.PersonalID = &pid
	return u, nil
}

// AssignPersonalID gives a user without one a random 7-digit id. Collisions are
// detected by the unique index and retried, never pre-checked.
func (s *Service) AssignPersonalID(ctx context.Context, userID uint) (string, error) {
	var existing model.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "personal_id").First(&existing, userID).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return "", helper.NotFound("user", userID)
		}
		return "", err
	}
	if existing.PersonalID != nil && *existing.PersonalID != "" {
		return *existing.PersonalID, nil
	}

	for attempt := 1; attempt <= personalIDAttempts; attempt++ {
		candidate := strconv.Itoa(s.RandPersonalID())
		res := s.DB.WithContext(ctx).Model(&model.UserModel{}).
			Where("id = ? AND personal_id IS NULL", userID).
			Update("personal_id", candidate)
		if res.Error == nil {
			if res.RowsAffected == 0 {
				// assigned concurrently
				var u model.UserModel
				if err := s.DB.WithContext(ctx).Select("id", "personal_id").First(&u, userID).Error; err != nil {
					return "", err
				}
				if u.PersonalID != nil {
					return *u.PersonalID, nil
				}
				continue
			}
			return candidate, nil
		}
		if !helper.IsUniqueViolation(res.Error) {
			return "", fmt.Errorf("assign personal id: %w", res.Error)
		}
		zap.L().Debug("personal id collision, retrying", zap.Uint("user_id", userID), zap.Int("attempt", attempt))
	}
	return "", ErrPersonalIDExhausted
}

// GenerateMissingPersonalIDs backfills every user without a personal id.
func (s *Service) GenerateMissingPersonalIDs(ctx context.Context) (int, error) {
	var ids []uint
	if err := s.DB.WithContext(ctx).Model(&model.UserModel{}).
		Where("personal_id IS NULL OR personal_id = ''").
		Order("id").Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		// empty strings are normalised to NULL so the retry loop can claim them
		if err := s.DB.WithContext(ctx).Model(&model.UserModel{}).
			Where("id = ? AND personal_id = ''", id).
			Update("personal_id", gorm.Expr("NULL")).Error; err != nil {
			return n, err
		}
		if _, err := s.AssignPersonalID(ctx, id); err != nil {
			return n, fmt.Errorf("user %d: %w", id, err)
		}
		n++
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*model.UserModel, error) {
	var u model.UserModel
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.NotFound("user", id)
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate accepts either the user name or the email as login.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*model.UserModel, error) {
	login = strings.TrimSpace(login)
	var u model.UserModel
	err := s.DB.WithContext(ctx).
		Where("user_name = ? OR email = ?", login, strings.ToLower(login)).
		First(&u).Error
	if err != nil {
		if helper.IsRecordNotFound(err) {
			return nil, helper.Forbidden("invalid credentials")
		}
		return nil, err
	}
	if !u.IsActive || !CheckPassword(u.Password, password) {
		return nil, helper.Forbidden("invalid credentials")
	}
	return &u, nil
}
