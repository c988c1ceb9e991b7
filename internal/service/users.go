package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/Skotchmaster/doc_service/internal/hash"
	"github.com/Skotchmaster/doc_service/internal/logging"
	"github.com/Skotchmaster/doc_service/internal/models"
	"github.com/Skotchmaster/doc_service/internal/repo"
)

const (
	generatedPasswordLen = 12
	passwordAlphabet     = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type UsersService struct {
	Repo   *repo.GormRepo
	Blobs  BlobStorage
	Index  DocumentIndex
	Events EventPublisher
}

type CreatedUser struct {
	ID       uint        `json:"id"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Password string      `json:"password"`
}

func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordLen)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func (s *UsersService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UsersService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// Create adds a user whose username is its email. The generated password is
// returned once and only its hash is stored.
func (s *UsersService) Create(ctx context.Context, email, role string) (*CreatedUser, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	if !validEmail(email) {
		return nil, fmt.Errorf("%w: email must be a valid email address", ErrValidation)
	}
	if role == "" {
		role = string(models.RoleViewer)
	}
	if !models.Role(role).Valid() {
		return nil, fmt.Errorf("%w: role must be one of admin, editor, viewer", ErrValidation)
	}

	password, err := generatePassword()
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "password generation", "error", err)
		return nil, err
	}
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	cred := &models.Credential{
		Username:     email,
		PasswordHash: pwHash,
		User:         models.User{Email: email, Role: models.Role(role)},
	}
	if err := s.Repo.Create(ctx, cred); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("create_user_error", "status", 409, "reason", "email taken")
			return nil, fmt.Errorf("%w: email already exists", ErrConflict)
		}
		if errors.Is(err, repo.ErrUsernameTaken) {
			l.Warn("create_user_error", "status", 409, "reason", "username taken")
			return nil, fmt.Errorf("%w: username %q already exists", ErrConflict, email)
		}
		l.Error("create_user_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, cred.UserID, map[string]any{
		"type":   "user_created",
		"userID": cred.UserID,
		"role":   cred.User.Role,
	})
	l.Info("user_created", "user_id", cred.UserID)
	return &CreatedUser{ID: cred.UserID, Email: email, Role: cred.User.Role, Password: password}, nil
}

func (s *UsersService) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update_role")

	if !models.Role(role).Valid() {
		return nil, fmt.Errorf("%w: role must be one of admin, editor, viewer", ErrValidation)
	}
	user, err := s.Repo.UpdateUserRole(ctx, id, models.Role(role))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		l.Error("update_role_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, user.ID, map[string]any{
		"type":   "user_role_changed",
		"userID": user.ID,
		"role":   user.Role,
	})
	l.Info("role_updated", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Delete removes the user together with its credential, documents and
// ingestion jobs. Stored blobs and search entries are removed afterwards on a
// best-effort basis.
func (s *UsersService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "users.delete")

	keys, err := s.Repo.DocumentStorageKeys(ctx, id)
	if err != nil {
		l.Error("delete_user_error", "status", 500, "error", err)
		return err
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		l.Error("delete_user_error", "status", 500, "error", err)
		return err
	}

	if s.Blobs != nil {
		for _, key := range keys {
			if err := s.Blobs.Remove(ctx, key); err != nil {
				l.Warn("blob_remove_failed", "key", key, "error", err)
			}
		}
	}

	if s.Index != nil {
		if err := s.Index.DeleteOwner(ctx, id); err != nil {
			l.Warn("index_remove_failed", "user_id", id, "error", err)
		}
	}

	publish(ctx, s.Events, TopicUserEvents, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	l.Info("user_deleted", "user_id", id, "documents", len(keys))
	return nil
}
