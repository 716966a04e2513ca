package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

// UserService exposes the user directory. Accounts carry no credentials;
// resolving a principal is a plain lookup.
type UserService struct {
	store  persistence.Store
	logger *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(store persistence.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// ResolvePrincipal returns the principal for a known user id.
func (s *UserService) ResolvePrincipal(ctx context.Context, userID string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("UserService is nil")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Principal{}, ErrUnauthorized
	}
	user, err := s.store.Users().GetUser(ctx, userID)
	if err != nil {
		return Principal{}, mapRepoError("user", userID, err)
	}
	return PrincipalFromUser(user), nil
}

// GetUser returns one user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	if s == nil {
		return domain.User{}, fmt.Errorf("UserService is nil")
	}
	user, err := s.store.Users().GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, mapRepoError("user", userID, err)
	}
	return user, nil
}

// ListUsers returns every user for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]domain.User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.store.Users().ListUsers(ctx)
}

// UpdateUserProfile replaces the editable profile fields of a user. Users may
// edit themselves; administrators may edit anyone.
func (s *UserService) UpdateUserProfile(ctx context.Context, params UpdateUserProfileParams) (user domain.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUserProfile",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update profile", err)
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if params.Principal.UserID != params.UserID && !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input := UserProfileInput{
		Name:         strings.TrimSpace(params.Input.Name),
		Department:   strings.TrimSpace(params.Input.Department),
		ProfileImage: strings.TrimSpace(params.Input.ProfileImage),
	}
	if vErr := validateStruct(input); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		existing, err := tx.Users().GetUser(ctx, params.UserID)
		if err != nil {
			return mapRepoError("user", params.UserID, err)
		}
		existing.Name = input.Name
		existing.Department = input.Department
		existing.ProfileImage = input.ProfileImage
		if err := tx.Users().UpdateUser(ctx, existing); err != nil {
			return mapRepoError("user", params.UserID, err)
		}
		user = existing
		return nil
	})
	if err != nil {
		user = domain.User{}
	}
	return
}
