// Package users manages operator accounts. Every user value leaving this
// package has its password blanked.
package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xelth-com/eckassets/internal/apperr"
	"github.com/xelth-com/eckassets/internal/models"
	"github.com/xelth-com/eckassets/internal/utils"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// ErrInvalidCredentials is returned by Authenticate for any mismatch,
// including unknown or deactivated accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service manages users
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// CreateInput describes a new account
type CreateInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role,omitempty"`
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Invalid("malformed email %q", email)
	}
	return email, nil
}

// Create stores a new active user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Invalid("password must be at least %d characters", MinPasswordLength)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name is required")
	}
	role := in.Role
	if role == "" {
		role = models.RoleStaff
	}
	if !role.Valid() {
		return nil, apperr.Invalid("unknown role %q", role)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user.Sanitize(), nil
}

// Authenticate checks the credentials of an active user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user.Sanitize(), nil
}

// Get returns a user, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// ListFilter narrows List
type ListFilter struct {
	Role     models.UserRole
	IsActive *bool
	Search   string
	models.Pagination
}

// List returns one page of users ordered by name.
func (s *Service) List(ctx context.Context, f ListFilter) (models.Page[models.User], error) {
	p := f.Pagination.Normalize()

	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.Page[models.User]{}, err
	}

	var items []models.User
	if err := q.Order("name ASC").Order("id ASC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&items).Error; err != nil {
		return models.Page[models.User]{}, err
	}
	for i := range items {
		items[i].Sanitize()
	}
	return models.NewPage(items, total, p), nil
}

// UpdateInput holds the editable fields; nil leaves a field unchanged.
type UpdateInput struct {
	Email    *string          `json:"email,omitempty"`
	Password *string          `json:"password,omitempty"`
	Name     *string          `json:"name,omitempty"`
	Role     *models.UserRole `json:"role,omitempty"`
	IsActive *bool            `json:"isActive,omitempty"`
}

// Update edits an account. A new password is hashed before storing.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.User, error) {
	changes := map[string]interface{}{"updated_at": time.Now().UTC()}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		changes["email"] = email
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, apperr.Invalid("password must be at least %d characters", MinPasswordLength)
		}
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		changes["password"] = hash
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("name must not be empty")
		}
		changes["name"] = name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Invalid("unknown role %q", *in.Role)
		}
		changes["role"] = *in.Role
	}
	if in.IsActive != nil {
		changes["is_active"] = *in.IsActive
	}

	db := s.db.WithContext(ctx)
	res := db.Model(&models.User{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("user", id)
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// Deactivate soft-deletes an account. History and schedules keep their
// reference to it.
func (s *Service) Deactivate(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Update(ctx, id, UpdateInput{IsActive: models.Ptr(false)})
	if err != nil {
		return nil, err
	}
	s.log.Info("user deactivated", zap.Uint("user_id", id))
	return user, nil
}
