package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TokenClaims is the identity carried by a bearer token.
type TokenClaims struct {
	UserID   uint
	Username string
	Role     models.Role
}

type AuthService struct {
	users    models.UserRepository
	secret   []byte
	tokenTTL time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

func NewAuthService(users models.UserRepository, secret string, tokenTTL time.Duration, logger *logrus.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Signup registers a CLIENT account.
func (s *AuthService) Signup(req *models.SignupRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: username and a password of at least 6 characters are required", ErrValidation)
	}

	exists, err := s.users.ExistsByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username %q is already taken", ErrConflict, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:      username,
		PasswordHash:  string(hash),
		FullName:      strings.TrimSpace(req.FullName),
		Email:         strings.TrimSpace(req.Email),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Role:          models.RoleClient,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User signed up")

	return &models.AuthResponse{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// Login checks credentials and issues a signed token.
func (s *AuthService) Login(req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("user_id", user.ID).Warn("Login rejected")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{UserID: user.ID, Username: user.Username, Role: user.Role, Token: token}, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      s.now().Add(s.tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry and returns the identity.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}

	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return nil, fmt.Errorf("%w: invalid role", ErrUnauthorized)
	}
	username, _ := claims["username"].(string)

	return &TokenClaims{UserID: uint(id), Username: username, Role: models.Role(role)}, nil
}

// Me resolves the current user.
func (s *AuthService) Me(userID uint) (*models.AuthResponse, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, userLookupError(err, strconv.FormatUint(uint64(userID), 10))
	}
	return &models.AuthResponse{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// ListUsers returns every account, or only those with role when it is set.
func (s *AuthService) ListUsers(role models.Role) ([]models.UserSummary, error) {
	users, err := s.users.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		summaries = append(summaries, models.UserSummary{ID: u.ID, Name: u.FullName, Role: u.Role})
	}
	return summaries, nil
}

// EnsureAdmin creates an ADMIN account when username is not yet taken.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return false, fmt.Errorf("%w: admin username and a password of at least 6 characters are required", ErrValidation)
	}

	exists, err := s.users.ExistsByUsername(username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     "Administrator",
		Role:         models.RoleAdmin,
	}
	if err := s.users.Create(admin); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.WithField("user_id", admin.ID).Info("Admin account created")
	return true, nil
}
