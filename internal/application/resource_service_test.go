package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/testfixtures"
)

func validResourceInput() application.ResourceInput {
	return application.ResourceInput{
		Title:       "  Podcast Studio ",
		Description: "Soundproofed booth with two microphones.",
		Category:    domain.CategoryAVEquipment,
		Location:    "Media Centre",
		Capacity:    2,
		Equipment:   []string{" Microphone ", "", "Mixer"},
	}
}

func TestCreateResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCampus(t, testfixtures.NewMemoryStore(t), application.BookingServiceDeps{})

	resource, err := c.services.Resources.CreateResource(ctx, application.CreateResourceParams{
		Principal: c.principal(c.owner),
		Input:     validResourceInput(),
	})
	require.NoError(t, err)
	require.Equal(t, "Podcast Studio", resource.Title)
	require.Equal(t, domain.ResourcePublished, resource.Status)
	require.Equal(t, []string{"Microphone", "Mixer"}, resource.Equipment)
	require.Equal(t, c.owner.ID, resource.OwnerID)
	require.Equal(t, "Dr. Rivera", resource.OwnerName)
	require.Zero(t, resource.BookingCount)
	require.Zero(t, resource.ReviewCount)

	stored, err := c.services.Resources.GetResource(ctx, resource.ID)
	require.NoError(t, err)
	require.Equal(t, resource.Title, stored.Title)

	_, err = c.services.Resources.CreateResource(ctx, application.CreateResourceParams{
		Principal: c.principal(c.student),
		Input:     validResourceInput(),
	})
	require.ErrorIs(t, err, application.ErrUnauthorized)

	invalid := validResourceInput()
	invalid.Title = " "
	invalid.Capacity = -1
	invalid.Category = "spaceship"
	_, err = c.services.Resources.CreateResource(ctx, application.CreateResourceParams{
		Principal: c.principal(c.admin),
		Input:     invalid,
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.FieldErrors, "title")
	require.Contains(t, vErr.FieldErrors, "capacity")
	require.Contains(t, vErr.FieldErrors, "category")
}

func TestArchiveResource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCampus(t, testfixtures.NewMemoryStore(t), application.BookingServiceDeps{})

	_, err := c.services.Resources.ArchiveResource(ctx, c.principal(c.student), c.room.ID)
	require.ErrorIs(t, err, application.ErrUnauthorized)

	archived, err := c.services.Resources.ArchiveResource(ctx, c.principal(c.owner), c.room.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ResourceArchived, archived.Status)

	_, err = c.services.Resources.ArchiveResource(ctx, c.principal(c.owner), c.room.ID)
	require.ErrorIs(t, err, application.ErrInvalidTransition)

	_, err = c.services.Resources.ArchiveResource(ctx, c.principal(c.admin), c.lab.ID)
	require.NoError(t, err, "administrators may archive any resource")

	_, err = c.services.Resources.ArchiveResource(ctx, c.principal(c.admin), "missing")
	require.ErrorIs(t, err, application.ErrNotFound)

	stored, err := c.store.Resources().GetResource(ctx, c.room.ID)
	require.NoError(t, err, "archived resources stay readable")
	require.Equal(t, domain.ResourceArchived, stored.Status)
}

func TestListResourcesAndReviews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newCampus(t, testfixtures.NewMemoryStore(t), application.BookingServiceDeps{})
	draft := testfixtures.NewResource(c.admin, testfixtures.WithResourceStatus(domain.ResourceDraft), testfixtures.WithCategory(domain.CategoryTutoring))
	testfixtures.MustCreateResources(t, c.store, draft)

	all, err := c.services.Resources.ListResources(ctx, application.ResourceQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	published, err := c.services.Resources.ListResources(ctx, application.ResourceQuery{Status: domain.ResourcePublished})
	require.NoError(t, err)
	require.Len(t, published, 2)

	tutoring, err := c.services.Resources.ListResources(ctx, application.ResourceQuery{Category: domain.CategoryTutoring})
	require.NoError(t, err)
	require.Len(t, tutoring, 1)
	require.Equal(t, draft.ID, tutoring[0].ID)

	_, err = c.services.Resources.ListResources(ctx, application.ResourceQuery{Status: "gone"})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.FieldErrors, "status")

	review := domain.Review{ID: "review-1", ResourceID: c.room.ID, UserID: c.student.ID, UserName: "Sam Student", Rating: 5, Comment: "Great light"}
	require.NoError(t, c.store.Reviews().CreateReview(ctx, review))

	reviews, err := c.services.Resources.ListReviews(ctx, c.room.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "Great light", reviews[0].Comment)

	_, err = c.services.Resources.ListReviews(ctx, "missing")
	require.ErrorIs(t, err, application.ErrNotFound)
}

func TestPublishResourceOpensBooking(t *testing.T) {
	t.Parallel()

	for name, open := range testfixtures.StoreFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			c := newCampus(t, open(t), application.BookingServiceDeps{})
			input := validResourceInput()
			input.Status = domain.ResourceDraft
			draft, err := c.services.Resources.CreateResource(ctx, application.CreateResourceParams{
				Principal: c.principal(c.owner),
				Input:     input,
			})
			require.NoError(t, err)
			require.Equal(t, domain.ResourceDraft, draft.Status)

			_, err = c.services.Bookings.CreateBooking(ctx, application.CreateBookingParams{
				Principal: c.principal(c.student),
				Input:     c.input(draft, 0),
			})
			var vErr *application.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Contains(t, vErr.FieldErrors, "resource_id")

			_, err = c.services.Resources.PublishResource(ctx, c.principal(c.student), draft.ID)
			require.ErrorIs(t, err, application.ErrUnauthorized)

			published, err := c.services.Resources.PublishResource(ctx, c.principal(c.owner), draft.ID)
			require.NoError(t, err)
			require.Equal(t, domain.ResourcePublished, published.Status)

			_, err = c.services.Resources.PublishResource(ctx, c.principal(c.owner), draft.ID)
			require.ErrorIs(t, err, application.ErrInvalidTransition)

			booked, err := c.services.Bookings.CreateBooking(ctx, application.CreateBookingParams{
				Principal: c.principal(c.student),
				Input:     c.input(published, 0),
			})
			require.NoError(t, err)
			require.Equal(t, domain.BookingApproved, booked.Booking.Status)

			_, err = c.services.Resources.ArchiveResource(ctx, c.principal(c.owner), draft.ID)
			require.NoError(t, err)
			reopened, err := c.services.Resources.PublishResource(ctx, c.principal(c.admin), draft.ID)
			require.NoError(t, err, "archived resources can be published again")
			require.Equal(t, domain.ResourcePublished, reopened.Status)
			require.Equal(t, 1, reopened.BookingCount)

			_, err = c.services.Resources.PublishResource(ctx, c.principal(c.admin), "missing")
			require.ErrorIs(t, err, application.ErrNotFound)
		})
	}
}

func TestUpdateResource(t *testing.T) {
	t.Parallel()

	for name, open := range testfixtures.StoreFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			c := newCampus(t, open(t), application.BookingServiceDeps{})
			c.book(t, c.student, c.room, 0)

			input := validResourceInput()
			input.Title = " Study Room A (renovated) "
			input.RequiresApproval = true
			input.Status = domain.ResourceDraft
			updated, err := c.services.Resources.UpdateResource(ctx, application.UpdateResourceParams{
				Principal:  c.principal(c.owner),
				ResourceID: c.room.ID,
				Input:      input,
			})
			require.NoError(t, err)
			require.Equal(t, "Study Room A (renovated)", updated.Title)
			require.Equal(t, []string{"Microphone", "Mixer"}, updated.Equipment)
			require.True(t, updated.RequiresApproval)
			require.Equal(t, domain.ResourcePublished, updated.Status, "status moves only through publish and archive")
			require.Equal(t, c.owner.ID, updated.OwnerID)
			require.Equal(t, 1, updated.BookingCount)

			stored, err := c.store.Resources().GetResource(ctx, c.room.ID)
			require.NoError(t, err)
			require.Equal(t, updated.Title, stored.Title)
			require.True(t, stored.RequiresApproval)

			_, err = c.services.Resources.UpdateResource(ctx, application.UpdateResourceParams{
				Principal:  c.principal(c.student),
				ResourceID: c.room.ID,
				Input:      validResourceInput(),
			})
			require.ErrorIs(t, err, application.ErrUnauthorized)

			invalid := validResourceInput()
			invalid.Capacity = 0
			_, err = c.services.Resources.UpdateResource(ctx, application.UpdateResourceParams{
				Principal:  c.principal(c.admin),
				ResourceID: c.room.ID,
				Input:      invalid,
			})
			var vErr *application.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Contains(t, vErr.FieldErrors, "capacity")

			_, err = c.services.Resources.UpdateResource(ctx, application.UpdateResourceParams{
				Principal:  c.principal(c.admin),
				ResourceID: "missing",
				Input:      validResourceInput(),
			})
			require.ErrorIs(t, err, application.ErrNotFound)
		})
	}
}
