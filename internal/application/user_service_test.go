package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/testfixtures"
)

func TestResolvePrincipal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCampus(t, testfixtures.NewMemoryStore(t), application.BookingServiceDeps{})

	principal, err := c.services.Users.ResolvePrincipal(ctx, " "+c.owner.ID+" ")
	require.NoError(t, err)
	require.Equal(t, application.Principal{UserID: c.owner.ID, Name: "Dr. Rivera", Role: domain.RoleStaff}, principal)

	_, err = c.services.Users.ResolvePrincipal(ctx, "")
	require.ErrorIs(t, err, application.ErrUnauthorized)

	_, err = c.services.Users.ResolvePrincipal(ctx, "ghost")
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestListUsersIsAdminOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCampus(t, testfixtures.NewMemoryStore(t), application.BookingServiceDeps{})

	_, err := c.services.Users.ListUsers(ctx, c.principal(c.owner))
	require.ErrorIs(t, err, application.ErrUnauthorized)

	users, err := c.services.Users.ListUsers(ctx, c.principal(c.admin))
	require.NoError(t, err)
	require.Len(t, users, 3)
}

func TestUpdateUserProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCampus(t, testfixtures.NewMemoryStore(t), application.BookingServiceDeps{})

	updated, err := c.services.Users.UpdateUserProfile(ctx, application.UpdateUserProfileParams{
		Principal: c.principal(c.student),
		UserID:    c.student.ID,
		Input: application.UserProfileInput{
			Name:         " Samantha Student ",
			Department:   "Mathematics",
			ProfileImage: "https://img.example.edu/sam.png",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Samantha Student", updated.Name)
	require.Equal(t, c.student.Email, updated.Email)
	require.Equal(t, c.student.Role, updated.Role)

	stored, err := c.services.Users.GetUser(ctx, c.student.ID)
	require.NoError(t, err)
	require.Equal(t, "Mathematics", stored.Department)

	_, err = c.services.Users.UpdateUserProfile(ctx, application.UpdateUserProfileParams{
		Principal: c.principal(c.owner),
		UserID:    c.student.ID,
		Input:     application.UserProfileInput{Name: "Hijacked"},
	})
	require.ErrorIs(t, err, application.ErrUnauthorized)

	_, err = c.services.Users.UpdateUserProfile(ctx, application.UpdateUserProfileParams{
		Principal: c.principal(c.admin),
		UserID:    c.student.ID,
		Input:     application.UserProfileInput{Name: "", ProfileImage: "not a url"},
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.FieldErrors, "name")
	require.Contains(t, vErr.FieldErrors, "profile_image")

	_, err = c.services.Users.UpdateUserProfile(ctx, application.UpdateUserProfileParams{
		Principal: c.principal(c.admin),
		UserID:    "ghost",
		Input:     application.UserProfileInput{Name: "Ghost"},
	})
	require.ErrorIs(t, err, application.ErrNotFound)
}
