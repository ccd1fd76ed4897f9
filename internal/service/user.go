package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pdfdesk/backend/internal/db"
	"github.com/pdfdesk/backend/internal/model"
)

// UserService covers registration and administrative user management.
type UserService struct {
	users UserStore
	auth  *AuthService
}

func NewUserService(users UserStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	hash, err := s.auth.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	status := req.Status
	if status == "" {
		status = model.StatusActive
	}

	user, err := s.users.Insert(ctx, &model.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, ErrConflict
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetMe returns the caller's own record without the password hash.
func (s *UserService) GetMe(ctx context.Context, identity model.Identity) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) ChangeStatus(ctx context.Context, id string, status model.Status) (*model.User, error) {
	if status != model.StatusActive && status != model.StatusBlocked {
		return nil, ErrInvalidInput
	}
	user, err := s.users.UpdateStatusByID(ctx, id, status)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
