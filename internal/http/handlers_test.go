package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/idempotency"
	"github.com/campushub/resource-hub/internal/metrics"
	"github.com/campushub/resource-hub/internal/testfixtures"
)

type apiFixture struct {
	handler http.Handler
	clock   *testfixtures.Clock

	owner   domain.User
	student domain.User
	admin   domain.User
	room    domain.Resource
	lab     domain.Resource
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	store := testfixtures.NewMemoryStore(t)
	factory := testfixtures.NewServiceFactory()
	api := &apiFixture{
		clock:   factory.Clock,
		owner:   testfixtures.NewUser(testfixtures.WithRole(domain.RoleStaff), testfixtures.WithUserName("Dr. Rivera")),
		student: testfixtures.NewUser(testfixtures.WithUserName("Sam Student")),
		admin:   testfixtures.NewUser(testfixtures.WithRole(domain.RoleAdmin)),
	}
	api.room = testfixtures.NewResource(api.owner, testfixtures.WithResourceTitle("Study Room A"))
	api.lab = testfixtures.NewResource(api.owner, testfixtures.WithResourceTitle("Microscope"), testfixtures.RequiringApproval())
	testfixtures.MustCreateUsers(t, store, api.owner, api.student, api.admin)
	testfixtures.MustCreateResources(t, store, api.room, api.lab)

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	require.NoError(t, err)

	services := factory.NewServices(store, application.BookingServiceDeps{
		Idempotency: idempotency.NewMemoryStore(time.Hour, 100, factory.Clock.NowFunc()),
		Metrics:     recorder,
	})
	logger := testfixtures.DiscardLogger()

	api.handler = NewRouter(RouterConfig{
		Resources:     NewResourceHandler(services.Resources, logger),
		Bookings:      NewBookingHandler(services.Bookings, services.Queries, logger),
		Messages:      NewMessageHandler(services.Messaging, logger),
		Notifications: NewNotificationHandler(services.Notifications, logger),
		Users:         NewUserHandler(services.Users, logger),
		Export:        NewExportHandler(services.Queries, logger),
		Principal:     RequirePrincipal(services.Users, logger),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Middleware:    []func(http.Handler) http.Handler{RequestLogger(logger)},
	})
	return api
}

func (a *apiFixture) do(t *testing.T, as *domain.User, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if as != nil {
		req.Header.Set(UserIDHeader, as.ID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	recorder := httptest.NewRecorder()
	a.handler.ServeHTTP(recorder, req)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&out), recorder.Body.String())
	return out
}

func (a *apiFixture) bookingBody(resource domain.Resource, offset time.Duration) bookingRequest {
	start := testfixtures.ReferenceTime().Add(24*time.Hour + offset)
	return bookingRequest{
		ResourceID: resource.ID,
		Start:      start.Format(time.RFC3339),
		End:        start.Add(time.Hour).Format(time.RFC3339),
		Notes:      "group study",
	}
}

func TestPublicAndGuardedRoutes(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	health := api.do(t, nil, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, health.Code)
	require.Equal(t, "ok", health.Body.String())

	require.Equal(t, http.StatusUnauthorized, api.do(t, nil, http.MethodGet, "/bookings", nil).Code)

	ghost := domain.User{ID: "ghost"}
	unknown := api.do(t, &ghost, http.MethodGet, "/bookings", nil)
	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, "AUTH_UNKNOWN_USER", decode[errorResponse](t, unknown).ErrorCode)

	require.Equal(t, http.StatusMethodNotAllowed, api.do(t, &api.student, http.MethodPatch, "/bookings", nil).Code)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	created := api.do(t, &api.student, http.MethodPost, "/bookings", api.bookingBody(api.lab, 0))
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	pending := decode[createBookingResponse](t, created)
	require.Equal(t, "pending", pending.Booking.Status)
	require.Equal(t, "none", pending.Booking.Recurrence)
	require.NotNil(t, pending.Notification)
	require.Equal(t, string(domain.NotificationBookingPending), pending.Notification.Type)
	require.False(t, pending.Replayed)

	path := "/bookings/" + pending.Booking.ID
	forbidden := api.do(t, &api.student, http.MethodPost, path+"/approve", nil)
	require.Equal(t, http.StatusForbidden, forbidden.Code)
	require.Equal(t, "AUTH_FORBIDDEN", decode[errorResponse](t, forbidden).ErrorCode)

	approved := api.do(t, &api.owner, http.MethodPost, path+"/approve", nil)
	require.Equal(t, http.StatusOK, approved.Code, approved.Body.String())
	result := decode[transitionResponse](t, approved)
	require.Equal(t, "approved", result.Booking.Status)
	require.NotNil(t, result.Notification)
	require.Equal(t, api.student.ID, result.Notification.UserID)

	again := api.do(t, &api.owner, http.MethodPost, path+"/reject", nil)
	require.Equal(t, http.StatusConflict, again.Code)
	conflict := decode[errorResponse](t, again)
	require.Equal(t, "INVALID_TRANSITION", conflict.ErrorCode)
	require.Equal(t, "The booking is approved and cannot be rejected.", conflict.Message)

	cancelled := api.do(t, &api.student, http.MethodPost, path+"/cancel", nil)
	require.Equal(t, http.StatusOK, cancelled.Code)
	cancelResult := decode[transitionResponse](t, cancelled)
	require.Equal(t, "cancelled", cancelResult.Booking.Status)
	require.Nil(t, cancelResult.Notification, "cancel notifies nobody")

	got := api.do(t, &api.owner, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, got.Code)
	require.Equal(t, "cancelled", decode[bookingResponse](t, got).Booking.Status)

	require.Equal(t, http.StatusNotFound, api.do(t, &api.owner, http.MethodGet, "/bookings/missing", nil).Code)
}

func TestCreateBookingErrors(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	bad := api.do(t, &api.student, http.MethodPost, "/bookings", "{not json")
	require.Equal(t, http.StatusBadRequest, bad.Code)

	inverted := api.bookingBody(api.room, 0)
	inverted.Start, inverted.End = inverted.End, inverted.Start
	invalid := api.do(t, &api.student, http.MethodPost, "/bookings", inverted)
	require.Equal(t, http.StatusUnprocessableEntity, invalid.Code)
	body := decode[errorResponse](t, invalid)
	require.Equal(t, "INVALID_INPUT", body.ErrorCode)
	require.Contains(t, body.Errors, "end")

	missing := api.bookingBody(api.room, 0)
	missing.ResourceID = "nowhere"
	require.Equal(t, http.StatusNotFound, api.do(t, &api.student, http.MethodPost, "/bookings", missing).Code)
}

func TestCreateBookingIdempotencyOverHTTP(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	body := api.bookingBody(api.room, 0)
	first := api.do(t, &api.student, http.MethodPost, "/bookings", body, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, first.Code)
	original := decode[createBookingResponse](t, first)
	require.Equal(t, "approved", original.Booking.Status)

	replay := api.do(t, &api.student, http.MethodPost, "/bookings", body, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusOK, replay.Code)
	replayed := decode[createBookingResponse](t, replay)
	require.True(t, replayed.Replayed)
	require.Equal(t, original.Booking.ID, replayed.Booking.ID)
	require.Nil(t, replayed.Notification)

	changed := api.bookingBody(api.room, 3*time.Hour)
	reused := api.do(t, &api.student, http.MethodPost, "/bookings", changed, IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusConflict, reused.Code)
	require.Equal(t, "IDEMPOTENCY_CONFLICT", decode[errorResponse](t, reused).ErrorCode)

	overlap := api.do(t, &api.admin, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusCreated, overlap.Code)
	warned := decode[createBookingResponse](t, overlap)
	require.Len(t, warned.Warnings, 1, "overlaps are reported, not rejected")
	require.Equal(t, original.Booking.ID, warned.Warnings[0].BookingID)
}

func TestBookingListings(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	require.Equal(t, http.StatusCreated, api.do(t, &api.student, http.MethodPost, "/bookings", api.bookingBody(api.room, 0)).Code)
	require.Equal(t, http.StatusCreated, api.do(t, &api.student, http.MethodPost, "/bookings", api.bookingBody(api.lab, 2*time.Hour)).Code)

	mine := decode[listBookingsResponse](t, api.do(t, &api.student, http.MethodGet, "/bookings", nil))
	require.Len(t, mine.Bookings, 2)

	pending := decode[listBookingsResponse](t, api.do(t, &api.student, http.MethodGet, "/bookings?status=pending", nil))
	require.Len(t, pending.Bookings, 1)

	require.Equal(t, http.StatusUnprocessableEntity, api.do(t, &api.student, http.MethodGet, "/bookings?status=lost", nil).Code)
	require.Equal(t, http.StatusForbidden, api.do(t, &api.student, http.MethodGet, "/bookings?user_id="+api.admin.ID, nil).Code)

	managed := decode[listBookingsResponse](t, api.do(t, &api.owner, http.MethodGet, "/bookings/managed?status=pending", nil))
	require.Len(t, managed.Bookings, 1)

	api.clock.Advance(25*time.Hour + 30*time.Minute)
	upcoming := decode[listBookingsResponse](t, api.do(t, &api.student, http.MethodGet, "/bookings/upcoming", nil))
	require.Len(t, upcoming.Bookings, 1)

	completed := decode[listBookingsResponse](t, api.do(t, &api.student, http.MethodGet, "/bookings?status=completed", nil))
	require.Len(t, completed.Bookings, 1)
	require.Equal(t, "completed", completed.Bookings[0].Status)
	require.Equal(t, "approved", completed.Bookings[0].StoredStatus)
}

func TestMessagesAndNotificationsOverHTTP(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	created := decode[createBookingResponse](t, api.do(t, &api.student, http.MethodPost, "/bookings", api.bookingBody(api.room, 0)))
	thread := "/bookings/" + created.Booking.ID + "/messages"

	sent := api.do(t, &api.student, http.MethodPost, thread, sendMessageRequest{Content: "Is the projector working?"})
	require.Equal(t, http.StatusCreated, sent.Code, sent.Body.String())
	message := decode[messageResponse](t, sent).Message
	require.Equal(t, api.owner.ID, message.ReceiverID)

	require.Equal(t, http.StatusUnprocessableEntity, api.do(t, &api.student, http.MethodPost, thread, sendMessageRequest{Content: "  "}).Code)

	listed := decode[listMessagesResponse](t, api.do(t, &api.owner, http.MethodGet, thread, nil))
	require.Len(t, listed.Messages, 1)

	threads := decode[listThreadsResponse](t, api.do(t, &api.owner, http.MethodGet, "/threads", nil))
	require.Len(t, threads.Threads, 1)
	require.Equal(t, 1, threads.Threads[0].UnreadCount)

	read := decode[countResponse](t, api.do(t, &api.owner, http.MethodPost, thread+"/read", nil))
	require.Equal(t, 1, read.Count)

	unread := decode[countResponse](t, api.do(t, &api.student, http.MethodGet, "/notifications/unread-count", nil))
	require.Equal(t, 1, unread.Count, "messages never notify; only the booking did")

	inbox := decode[listNotificationsResponse](t, api.do(t, &api.student, http.MethodGet, "/notifications?unread_only=true&limit=5", nil))
	require.Len(t, inbox.Notifications, 1)
	require.Equal(t, http.StatusBadRequest, api.do(t, &api.student, http.MethodGet, "/notifications?limit=many", nil).Code)

	markOne := api.do(t, &api.student, http.MethodPost, "/notifications/"+inbox.Notifications[0].ID+"/read", nil)
	require.Equal(t, http.StatusOK, markOne.Code)
	require.True(t, decode[notificationResponse](t, markOne).Notification.Read)

	all := decode[countResponse](t, api.do(t, &api.student, http.MethodPost, "/notifications/read", nil))
	require.Zero(t, all.Count)
}

func TestDraftResourceBecomesBookableOncePublished(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	draft := resourceRequest{
		Title:       "Darkroom",
		Description: "Film developing station.",
		Category:    "lab-equipment",
		Location:    "Arts Annex",
		Capacity:    1,
		Status:      "draft",
	}
	created := api.do(t, &api.owner, http.MethodPost, "/resources", draft)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	resource := decode[resourceResponse](t, created).Resource
	require.Equal(t, "draft", resource.Status)

	body := api.bookingBody(domain.Resource{ID: resource.ID}, 0)
	require.Equal(t, http.StatusUnprocessableEntity, api.do(t, &api.student, http.MethodPost, "/bookings", body).Code)

	draft.Title = "Darkroom B"
	draft.Status = "published"
	updated := api.do(t, &api.owner, http.MethodPut, "/resources/"+resource.ID, draft)
	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	edited := decode[resourceResponse](t, updated).Resource
	require.Equal(t, "Darkroom B", edited.Title)
	require.Equal(t, "draft", edited.Status, "editing never changes status")

	require.Equal(t, http.StatusForbidden, api.do(t, &api.student, http.MethodPost, "/resources/"+resource.ID+"/publish", nil).Code)
	published := api.do(t, &api.owner, http.MethodPost, "/resources/"+resource.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, published.Code, published.Body.String())
	require.Equal(t, "published", decode[resourceResponse](t, published).Resource.Status)

	again := api.do(t, &api.owner, http.MethodPost, "/resources/"+resource.ID+"/publish", nil)
	require.Equal(t, http.StatusConflict, again.Code)

	booked := api.do(t, &api.student, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusCreated, booked.Code, booked.Body.String())
}

func TestResourceAndUserRoutes(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	resources := decode[listResourcesResponse](t, api.do(t, &api.student, http.MethodGet, "/resources?status=published", nil))
	require.Len(t, resources.Resources, 2)

	studio := resourceRequest{
		Title:       "Podcast Studio",
		Description: "Soundproofed booth.",
		Category:    "av-equipment",
		Location:    "Media Centre",
		Capacity:    2,
		Equipment:   []string{"Microphone"},
	}
	require.Equal(t, http.StatusForbidden, api.do(t, &api.student, http.MethodPost, "/resources", studio).Code)
	created := api.do(t, &api.owner, http.MethodPost, "/resources", studio)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	resource := decode[resourceResponse](t, created).Resource
	require.Equal(t, "Dr. Rivera", resource.OwnerName)

	got := decode[resourceResponse](t, api.do(t, &api.student, http.MethodGet, "/resources/"+resource.ID, nil))
	require.Equal(t, "Podcast Studio", got.Resource.Title)

	reviews := decode[listReviewsResponse](t, api.do(t, &api.student, http.MethodGet, "/resources/"+resource.ID+"/reviews", nil))
	require.Empty(t, reviews.Reviews)

	require.Equal(t, http.StatusForbidden, api.do(t, &api.student, http.MethodDelete, "/resources/"+resource.ID, nil).Code)
	archived := decode[resourceResponse](t, api.do(t, &api.owner, http.MethodDelete, "/resources/"+resource.ID, nil))
	require.Equal(t, "archived", archived.Resource.Status)

	require.Equal(t, http.StatusForbidden, api.do(t, &api.student, http.MethodGet, "/users", nil).Code)
	users := decode[listUsersResponse](t, api.do(t, &api.admin, http.MethodGet, "/users", nil))
	require.Len(t, users.Users, 3)

	updated := api.do(t, &api.student, http.MethodPut, "/users/"+api.student.ID, userProfileRequest{Name: "Samantha", Department: "Maths"})
	require.Equal(t, http.StatusOK, updated.Code)
	require.Equal(t, "Samantha", decode[userResponse](t, updated).User.Name)

	profile := decode[userResponse](t, api.do(t, &api.owner, http.MethodGet, "/users/"+api.student.ID, nil))
	require.Equal(t, "Maths", profile.User.Department)
}

func TestExportAndMetrics(t *testing.T) {
	t.Parallel()
	api := newAPI(t)

	require.Equal(t, http.StatusCreated, api.do(t, &api.student, http.MethodPost, "/bookings", api.bookingBody(api.room, 0)).Code)

	require.Equal(t, http.StatusForbidden, api.do(t, &api.owner, http.MethodGet, "/admin/bookings/export", nil).Code)

	exported := api.do(t, &api.admin, http.MethodGet, "/admin/bookings/export", nil)
	require.Equal(t, http.StatusOK, exported.Code)
	require.Equal(t, xlsxContentType, exported.Header().Get("Content-Type"))

	workbook, err := excelize.OpenReader(exported.Body)
	require.NoError(t, err)
	defer workbook.Close()
	rows, err := workbook.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	scraped := api.do(t, nil, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, scraped.Code)
	require.Contains(t, scraped.Body.String(), `campushub_booking_created_total{status="approved"} 1`)
}
