package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/policy"
	repo "github.com/oksasatya/classroom-tasks/internal/domain/repository"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
)

const minPasswordLen = 6

var validate = validator.New()

type UserService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Logger: logger}
}

type SignupInput struct {
	Email     string
	Password  string
	Role      string
	TeacherID string
}

type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// normalizeEmail trims surrounding space only. Emails are case-sensitive as stored.
func normalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// Signup registers a user. Students must name an existing teacher; teachers
// must not name anyone.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, invalid("email", "must be a valid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters long", minPasswordLen))
	}
	if len(in.Password) > helpers.MaxPasswordBytes {
		return nil, invalid("password", fmt.Sprintf("must be at most %d characters long", helpers.MaxPasswordBytes))
	}
	role := entity.Role(in.Role)
	if !role.Valid() {
		return nil, invalid("role", "must be one of: student, teacher")
	}

	teacherID := strings.TrimSpace(in.TeacherID)
	var teacherRef *string
	switch role {
	case entity.RoleStudent:
		if teacherID == "" {
			return nil, invalid("teacherId", "teacherId required for students")
		}
		ref, err := s.Repo.GetByID(ctx, teacherID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("lookup teacher: %w", err)
		}
		if err := policy.ValidateTeacherReference(ref); err != nil {
			return nil, err
		}
		teacherRef = &ref.ID
	case entity.RoleTeacher:
		if teacherID != "" {
			return nil, invalid("teacherId", "teachers cannot have a teacher")
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Email: email, PasswordHash: hash, Role: role, TeacherID: teacherRef}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, repo.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user signed up")
	}
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing a token.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return nil, err
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// ListTeachers backs the signup form's teacher picker.
func (s *UserService) ListTeachers(ctx context.Context) ([]entity.User, error) {
	return s.Repo.ListByRole(ctx, entity.RoleTeacher)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListMyStudents returns the students assigned to the requesting teacher.
func (s *UserService) ListMyStudents(ctx context.Context, req policy.Requester) ([]entity.User, error) {
	if req.Role != entity.RoleTeacher {
		return nil, policy.ErrNotAuthorized
	}
	return s.Repo.ListByTeacher(ctx, req.ID)
}
