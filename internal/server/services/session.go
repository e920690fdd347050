// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, login, refreshing access
// tokens, and logout over the user and refresh-token repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avolkovs/healthtrack/internal/common"
	"github.com/avolkovs/healthtrack/internal/dbx"
	"github.com/avolkovs/healthtrack/internal/logging"
	"github.com/avolkovs/healthtrack/internal/server/auth"
	"github.com/avolkovs/healthtrack/internal/server/metrics"
	"github.com/avolkovs/healthtrack/internal/server/models"
	"github.com/avolkovs/healthtrack/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AuthResult is returned by every operation that issues tokens.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // access token lifetime, seconds
	User         *models.User
}

// RegisterParams carries the fields accepted at registration.
type RegisterParams struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	DateOfBirth *time.Time
	Gender      string
}

// SessionService orchestrates the session lifecycle:
//   - Register: create a user with the default role and mint tokens
//   - Login: verify credentials, replace any prior refresh token, mint tokens
//   - Refresh: mint a new access token against a stored refresh token
//   - Logout: revoke the caller's refresh token
//
// The refresh-token string is deliberately reused across Refresh calls
// rather than rotated, matching the upstream behavior. Rotation-on-refresh
// would be the hardened alternative.
type SessionService struct {
	db                   *sql.DB
	repos                repomanager.RepositoryManager
	codec                *auth.TokenCodec
	hasher               *auth.PasswordHasher
	refreshTokenValidity time.Duration
	log                  logging.Logger
}

// NewSessionService constructs a SessionService from its collaborators.
func NewSessionService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	codec *auth.TokenCodec,
	hasher *auth.PasswordHasher,
	refreshTokenValidity time.Duration,
	log logging.Logger,
) *SessionService {
	return &SessionService{
		db:                   db,
		repos:                m,
		codec:                codec,
		hasher:               hasher,
		refreshTokenValidity: refreshTokenValidity,
		log:                  log.With("module", "session"),
	}
}

// Register creates a new enabled user with the default role and issues an
// access token plus a refresh-token record. Returns common.ErrDuplicateEmail
// when the email is already registered.
func (s *SessionService) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	users := s.repos.Users(s.db)

	exists, err := users.ExistsByEmail(ctx, p.Email)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("register", "fail").Inc()
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		metrics.AuthTotal.WithLabelValues("register", "fail").Inc()
		return nil, common.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		PhoneNumber:  p.PhoneNumber,
		DateOfBirth:  p.DateOfBirth,
		Gender:       p.Gender,
		Enabled:      true,
		Roles:        []string{common.DefaultRoleName},
	}

	refresh, err := s.newRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Users(tx).Create(ctx, user); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		role, err := s.defaultRole(ctx, tx)
		if err != nil {
			return fmt.Errorf("error resolving default role: %w", err)
		}
		if err := s.repos.Roles(tx).Assign(ctx, user.ID, role.ID); err != nil {
			return fmt.Errorf("error assigning role: %w", err)
		}
		if _, err := s.repos.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidity); err != nil {
			return fmt.Errorf("error storing refresh token: %w", err)
		}
		return nil
	}); err != nil {
		metrics.AuthTotal.WithLabelValues("register", "fail").Inc()
		return nil, err
	}

	s.log.Info(ctx, "user registered", "email", user.Email)
	metrics.AuthTotal.WithLabelValues("register", "ok").Inc()

	return s.authResult(user, refresh)
}

// Login verifies the credentials and, on success, replaces the user's
// previous refresh-token record with a new one. A wrong password, an
// unknown email, or a disabled/locked account all yield
// common.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	users := s.repos.Users(s.db)

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("login", "fail").Inc()
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "login for unknown email", "email", email)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	principal := auth.PrincipalFromUser(user)
	if !principal.CanAuthenticate() {
		metrics.AuthTotal.WithLabelValues("login", "fail").Inc()
		s.log.Warn(ctx, "login for disabled or locked account", "email", email)
		return nil, common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.AuthTotal.WithLabelValues("login", "fail").Inc()
		s.log.Warn(ctx, "login with invalid password", "email", email)
		return nil, common.ErrInvalidCredentials
	}

	refresh, err := s.newRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	// Delete-then-insert inside one transaction; together with the unique
	// index on refresh_tokens.user_id this keeps at most one record per
	// user even for concurrent logins on the same account.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tokens := s.repos.RefreshTokens(tx)
		if err := tokens.DeleteByUserID(ctx, user.ID); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if _, err := tokens.Create(ctx, user.ID, refresh, s.refreshTokenValidity); err != nil {
			return fmt.Errorf("error storing refresh token: %w", err)
		}
		return nil
	}); err != nil {
		metrics.AuthTotal.WithLabelValues("login", "fail").Inc()
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "email", user.Email)
	metrics.AuthTotal.WithLabelValues("login", "ok").Inc()

	return s.authResult(user, refresh)
}

// Refresh validates a refresh-token string and mints a new access token
// bound to the same refresh token. An unknown token yields
// common.ErrInvalidToken, a revoked one common.ErrTokenRevoked, and an
// expired one is deleted and yields common.ErrTokenExpired (so a repeat
// call reports common.ErrInvalidToken).
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	tokens := s.repos.RefreshTokens(s.db)

	rec, err := tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("refresh", "fail").Inc()
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if rec.Revoked {
		metrics.AuthTotal.WithLabelValues("refresh", "fail").Inc()
		return nil, common.ErrTokenRevoked
	}

	if rec.Expired(time.Now()) {
		metrics.AuthTotal.WithLabelValues("refresh", "fail").Inc()
		if err := tokens.Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		return nil, common.ErrTokenExpired
	}

	user, err := s.repos.Users(s.db).FindByID(ctx, rec.UserID)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("refresh", "fail").Inc()
		if errors.Is(err, common.ErrorNotFound) {
			// The owning account is gone; do not leak that through a
			// distinct error kind.
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	metrics.AuthTotal.WithLabelValues("refresh", "ok").Inc()

	return s.authResult(user, rec.Token)
}

// Logout revokes the refresh-token record of the user identified by
// subjectEmail. Logout is idempotent: a missing or already revoked record
// is not an error. An unknown subject yields common.ErrUserNotFound.
func (s *SessionService) Logout(ctx context.Context, subjectEmail string) error {
	user, err := s.repos.Users(s.db).FindByEmail(ctx, subjectEmail)
	if err != nil {
		metrics.AuthTotal.WithLabelValues("logout", "fail").Inc()
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return common.ErrorInternal
	}

	tokens := s.repos.RefreshTokens(s.db)

	rec, err := tokens.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.AuthTotal.WithLabelValues("logout", "ok").Inc()
			return nil
		}
		metrics.AuthTotal.WithLabelValues("logout", "fail").Inc()
		return fmt.Errorf("error searching refresh token: %w", err)
	}

	if !rec.Revoked {
		if err := tokens.Revoke(ctx, rec.Token); err != nil {
			metrics.AuthTotal.WithLabelValues("logout", "fail").Inc()
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
	}

	s.log.Info(ctx, "user logged out", "email", subjectEmail)
	metrics.AuthTotal.WithLabelValues("logout", "ok").Inc()
	return nil
}

// --- helpers below ---

func (s *SessionService) newRefreshToken() (string, error) {
	return common.MakeRandHexString(common.RefreshTokenByteLength)
}

// defaultRole finds the default role, creating it on first use.
func (s *SessionService) defaultRole(ctx context.Context, db dbx.DBTX) (*models.Role, error) {
	repo := s.repos.Roles(db)

	role, err := repo.FindByName(ctx, common.DefaultRoleName)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return repo.Create(ctx, &models.Role{ID: uuid.NewString(), Name: common.DefaultRoleName})
}

func (s *SessionService) authResult(user *models.User, refresh string) (*AuthResult, error) {
	access, err := s.codec.Issue(user.Email, nil)
	if err != nil {
		return nil, common.ErrorInternal
	}

	metrics.IssuedTokens.WithLabelValues("access").Inc()
	metrics.IssuedTokens.WithLabelValues("refresh").Inc()

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    common.TokenTypeBearer,
		ExpiresIn:    int64(s.codec.TTL().Seconds()),
		User:         user,
	}, nil
}
