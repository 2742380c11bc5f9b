package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/middleware"
	"github.com/aosagula/adm/internal/port"
	"github.com/aosagula/adm/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and token refresh.
type AuthService struct {
	users      port.UserStore
	orgs       port.OrganizationStore
	audit      *AuditService
	accessCfg  middleware.JWTConfig
	refreshCfg middleware.JWTConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(users port.UserStore, orgs port.OrganizationStore, audit *AuditService, cfg *config.Config) *AuthService {
	return &AuthService{
		users: users,
		orgs:  orgs,
		audit: audit,
		accessCfg: middleware.JWTConfig{
			Secret:    cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: time.Duration(cfg.JWTExpirationHours) * time.Hour,
		},
		refreshCfg: middleware.JWTConfig{
			Secret:    cfg.JWTRefreshSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: time.Duration(cfg.RefreshExpirationDays) * 24 * time.Hour,
		},
	}
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	OrganizationID string
	IPAddress      string
	UserAgent      string
}

// Register creates an account in an active organization, hashes the password
// with bcrypt, assigns the default role when one is configured and returns a
// signed token pair so the new user is logged in immediately.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenPair, error) {
	org, err := s.orgs.GetOrganization(ctx, in.OrganizationID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, fmt.Errorf("organization %s: %w", in.OrganizationID, port.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if !org.IsActive {
		return nil, fmt.Errorf("organization %s disabled: %w", org.Slug, port.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		Email:          in.Email,
		PasswordHash:   string(hash),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		OrganizationID: in.OrganizationID,
		IsActive:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	role, err := s.users.DefaultRole(ctx)
	if err != nil {
		slog.Error("default role lookup failed", "error", err)
	} else if role != nil {
		if err := s.users.AssignRole(ctx, user.ID, role.ID); err != nil {
			slog.Error("default role assignment failed", "user", user.ID, "role", role.ID, "error", err)
		} else {
			user.Roles = append(user.Roles, *role)
		}
	}

	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventCreate,
		Resource:    "users",
		ResourceID:  user.ID,
		Action:      "register",
		Description: fmt.Sprintf("User %s registered", user.Email),
		UserID:      user.ID,
		IPAddress:   in.IPAddress,
		UserAgent:   in.UserAgent,
	})
	slog.Info("user registered", "user", user.ID, "email", user.Email)
	return s.issueTokens(user)
}

// Login verifies credentials and returns an access/refresh token pair. Failed
// attempts leave an AUTH_FAILED audit row with no user attached.
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			s.recordFailedLogin(ctx, email, ip, userAgent)
			return nil, fmt.Errorf("invalid credentials: %w", port.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		s.recordFailedLogin(ctx, email, ip, userAgent)
		return nil, fmt.Errorf("account disabled: %w", port.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailedLogin(ctx, email, ip, userAgent)
		return nil, fmt.Errorf("invalid credentials: %w", port.ErrUnauthorized)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.SetLastLogin(ctx, user.ID, now); err != nil {
		slog.Error("last login update failed", "user", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventAuthLogin,
		Resource:    "auth",
		ResourceID:  user.ID,
		Action:      "login",
		Description: fmt.Sprintf("User %s logged in", user.Email),
		UserID:      user.ID,
		IPAddress:   ip,
		UserAgent:   userAgent,
	})
	slog.Info("user logged in", "user", user.ID)
	return pair, nil
}

func (s *AuthService) recordFailedLogin(ctx context.Context, email, ip, userAgent string) {
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventAuthFailed,
		Resource:    "auth",
		Action:      "login",
		Description: fmt.Sprintf("Failed login attempt for %s", email),
		IPAddress:   ip,
		UserAgent:   userAgent,
	})
}

// Refresh validates a refresh token and issues a fresh token pair with the
// user's current roles and permissions.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := middleware.ParseToken(refreshToken, s.refreshCfg.Secret, s.refreshCfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), port.ErrUnauthorized)
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", port.ErrUnauthorized)
	}
	return s.issueTokens(user)
}

// Logout records the logout event. Tokens are stateless; nothing is revoked.
func (s *AuthService) Logout(ctx context.Context, p *domain.Principal, ip, userAgent string) {
	s.audit.Record(ctx, AuditEvent{
		EventType:   domain.EventAuthLogout,
		Resource:    "auth",
		ResourceID:  p.UserID,
		Action:      "logout",
		Description: fmt.Sprintf("User %s logged out", p.Email),
		UserID:      p.UserID,
		IPAddress:   ip,
		UserAgent:   userAgent,
	})
}

// Profile returns the authenticated user with roles expanded.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *AuthService) issueTokens(user *domain.User) (*TokenPair, error) {
	access, err := middleware.GenerateToken(user, s.accessCfg)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := middleware.GenerateToken(user, s.refreshCfg)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
