package services

import (
	"context"
	"errors"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
	"github.com/jabenlo/pstep-bank-store/pkg/prom"
	"golang.org/x/crypto/bcrypt"
)

// AuthService covers teacher registration, both login flows and the teacher
// profile. Students have no password; their classroom id is the credential.
type AuthService struct {
	users    *repository.UserRepository
	students *repository.StudentRepository
}

func NewAuthService(users *repository.UserRepository, students *repository.StudentRepository) *AuthService {
	return &AuthService{
		users:    users,
		students: students,
	}
}

func (s *AuthService) RegisterTeacher(ctx context.Context, username, password string) (*model.User, error) {
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleTeacher,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("teacher registered", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *AuthService) LoginTeacher(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	prom.IncCounterVec(prom.SystemAuth, prom.MetricLogins, "teacher")
	return user, nil
}

// LoginStudent authenticates by classroom id alone.
func (s *AuthService) LoginStudent(ctx context.Context, externalID string) (*model.Student, error) {
	student, err := s.students.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	prom.IncCounterVec(prom.SystemAuth, prom.MetricLogins, "student")
	return student, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile changes the username and, when newPassword is non-empty, the
// password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, username, newPassword string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if username != "" && username != user.Username {
		if _, err := s.users.FindByUsername(ctx, username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user.Username = username
	}

	if newPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
