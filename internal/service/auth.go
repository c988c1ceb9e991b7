package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Skotchmaster/doc_service/internal/hash"
	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/models"
	"github.com/Skotchmaster/doc_service/internal/repo"
	"github.com/Skotchmaster/doc_service/internal/tokens"
)

const minPasswordLen = 6

var (
	errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	errInvalidRefresh     = fmt.Errorf("%w: invalid or expired refresh token", ErrUnauthorized)
)

type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Credential, error)
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	FindByID(ctx context.Context, id uint) (*models.Credential, error)
	Create(ctx context.Context, cred *models.Credential) error
	Save(ctx context.Context, cred *models.Credential) error
	ReplaceAccessToken(ctx context.Context, id uint, refreshToken, accessToken string) error
}

type AuthService struct {
	Store  CredentialStore
	Codec  *tokens.Codec
	Events EventPublisher
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Identity is the caller resolved from a verified access token.
type Identity struct {
	UserID       uint
	CredentialID uint
	Username     string
	Role         models.Role
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && addr.Name == ""
}

func (in RegisterInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.Username) == "" {
		problems = append(problems, "username is required")
	}
	if len(in.Password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(in.Password) > hash.MaxPasswordBytes {
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", hash.MaxPasswordBytes))
	}
	if !validEmail(in.Email) {
		problems = append(problems, "email must be a valid email address")
	}
	if !models.Role(in.Role).Valid() {
		problems = append(problems, "role must be one of admin, editor, viewer")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Credential, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if err := in.validate(); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	cred := &models.Credential{
		Username:     in.Username,
		PasswordHash: pwHash,
		User:         models.User{Email: in.Email, Role: models.Role(in.Role)},
	}
	if err := s.Store.Create(ctx, cred); err != nil {
		switch {
		case errors.Is(err, repo.ErrUsernameTaken):
			l.Warn("register_error", "status", 409, "reason", "username taken")
			return nil, fmt.Errorf("%w: username already exists", ErrConflict)
		case errors.Is(err, repo.ErrEmailTaken):
			l.Warn("register_error", "status", 409, "reason", "email taken")
			return nil, fmt.Errorf("%w: email already exists", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, cred.UserID, map[string]any{
		"type":     "user_registered",
		"userID":   cred.UserID,
		"username": cred.Username,
		"role":     cred.User.Role,
	})
	l.Info("register_successful", "credential_id", cred.ID)
	return cred, nil
}

func subjectOf(cred *models.Credential) tokens.Subject {
	return tokens.Subject{
		CredentialID: cred.ID,
		Username:     cred.Username,
		Role:         string(cred.User.Role),
	}
}

// Login overwrites any tokens stored on the credential, which ends the
// previous session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	cred, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			hash.CompareDummy(password)
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, errInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(cred.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, errInvalidCredentials
	}

	access, _, err := s.Codec.IssueAccess(subjectOf(cred))
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	refresh, _, err := s.Codec.IssueRefresh(subjectOf(cred))
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	cred.AccessToken = &access
	cred.RefreshToken = &refresh
	if err := s.Store.Save(ctx, cred); err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, cred.UserID, map[string]any{
		"type":   "user_logged_in",
		"userID": cred.UserID,
	})
	l.Info("login_successful", "credential_id", cred.ID)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges the current refresh token for a new access token. The
// refresh token itself is kept until the next login or logout.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return "", fmt.Errorf("%w: refreshToken is required", ErrValidation)
	}

	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "verify", "error", err)
		return "", errInvalidRefresh
	}
	credID, err := claims.CredentialID()
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "subject", "error", err)
		return "", errInvalidRefresh
	}

	cred, err := s.Store.FindByID(ctx, credID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "unknown credential")
			return "", errInvalidRefresh
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return "", err
	}
	if cred.RefreshToken == nil || *cred.RefreshToken != refreshToken {
		l.Warn("refresh_failed", "status", 401, "reason", "superseded or revoked")
		return "", errInvalidRefresh
	}

	access, _, err := s.Codec.IssueAccess(subjectOf(cred))
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return "", err
	}
	if err := s.Store.ReplaceAccessToken(ctx, cred.ID, refreshToken, access); err != nil {
		if errors.Is(err, repo.ErrStaleSession) {
			l.Warn("refresh_failed", "status", 401, "reason", "lost race")
			return "", errInvalidRefresh
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return "", err
	}

	l.Info("refresh_successful", "credential_id", cred.ID)
	return access, nil
}

// Logout revokes the session of id. When refreshToken is non-empty it must be
// the one stored for the credential. Logging out a revoked session succeeds.
func (s *AuthService) Logout(ctx context.Context, id Identity, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	cred, err := s.Store.FindByID(ctx, id.CredentialID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("logout_failed", "status", 401, "reason", "unknown credential")
			return fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	if cred.RefreshToken == nil {
		l.Info("logout_noop", "credential_id", cred.ID)
		return nil
	}
	if refreshToken != "" && *cred.RefreshToken != refreshToken {
		l.Warn("logout_failed", "status", 401, "reason", "refresh token mismatch")
		return errInvalidRefresh
	}

	cred.AccessToken = nil
	cred.RefreshToken = nil
	if err := s.Store.Save(ctx, cred); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return err
	}

	publish(ctx, s.Events, TopicUserEvents, cred.UserID, map[string]any{
		"type":   "user_logged_out",
		"userID": cred.UserID,
	})
	l.Info("logout_successful", "credential_id", cred.ID)
	return nil
}

// Authenticate resolves a raw access token to the caller identity. Every
// failure other than a store error is reported as ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	claims, err := s.Codec.VerifyAccess(accessToken)
	if err != nil {
		l.Debug("authenticate_failed", "reason", "verify", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	credID, err := claims.CredentialID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	cred, err := s.Store.FindByID(ctx, credID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Debug("authenticate_failed", "reason", "unknown credential")
			return nil, fmt.Errorf("%w: unknown credential", ErrUnauthorized)
		}
		l.Error("authenticate_failed", "status", 500, "error", err)
		return nil, err
	}
	if cred.RefreshToken == nil {
		l.Debug("authenticate_failed", "reason", "session revoked")
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	}
	if cred.AccessToken == nil || *cred.AccessToken != accessToken {
		l.Debug("authenticate_failed", "reason", "superseded access token")
		return nil, fmt.Errorf("%w: superseded access token", ErrUnauthorized)
	}

	return &Identity{
		UserID:       cred.UserID,
		CredentialID: cred.ID,
		Username:     cred.Username,
		Role:         cred.User.Role,
	}, nil
}
