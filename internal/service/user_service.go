package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxUsernameLength = 32

// Identity is an already-verified principal from the identity provider.
type Identity struct {
	UID   string
	Email string
	Name  string
}

type UserService interface {
	// EnsureUser returns the local user for identity, provisioning it on first sight.
	EnsureUser(ctx context.Context, identity Identity) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Usernames maps ids to usernames; unknown ids are omitted.
	Usernames(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

type userService struct {
	repo repository.UserRepository
	deps Deps
}

func NewUserService(repo repository.UserRepository, deps Deps) UserService {
	return &userService{repo: repo, deps: deps}
}

func (s *userService) EnsureUser(ctx context.Context, identity Identity) (*model.User, error) {
	if identity.UID == "" {
		return nil, invalid("missing_uid", "Identity has no uid")
	}
	u, err := s.repo.FindByUID(ctx, identity.UID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("service: find user by uid: %w", err)
	}

	username, err := s.uniqueUsername(ctx, usernameBase(identity))
	if err != nil {
		return nil, err
	}
	u = &model.User{UID: identity.UID, Username: username}
	if email := strings.ToLower(strings.TrimSpace(identity.Email)); email != "" {
		if _, err := s.repo.FindByEmail(ctx, email); errors.Is(err, gorm.ErrRecordNotFound) {
			u.Email = &email
		}
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent request provisioned the same uid.
			if existing, ferr := s.repo.FindByUID(ctx, identity.UID); ferr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("service: create user: %w", err)
	}
	s.deps.log(ctx).Info("user provisioned", zap.Uint64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *userService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i < 100; i++ {
		taken, err := s.repo.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("service: check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", policy("username_exhausted", "Could not allocate a username")
}

// usernameBase derives a lowercase handle from the display name or email.
func usernameBase(identity Identity) string {
	src := identity.Name
	if strings.TrimSpace(src) == "" {
		src, _, _ = strings.Cut(identity.Email, "@")
	}
	var b strings.Builder
	for _, r := range strings.ToLower(src) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
		if b.Len() >= maxUsernameLength-2 {
			break
		}
	}
	out := strings.Trim(b.String(), "_.-")
	if out == "" {
		return "user"
	}
	return out
}

func (s *userService) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errUserNotFound, "find user")
	}
	return u, nil
}

func (s *userService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, notFoundAs(err, errUserNotFound, "find user by username")
	}
	return u, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFoundAs(err, errUserNotFound, "find user by email")
	}
	return u, nil
}

func (s *userService) Usernames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: load users: %w", err)
	}
	out := make(map[uint64]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out, nil
}
