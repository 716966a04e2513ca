// Package memory provides the in-process entity store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

var _ persistence.Store = (*Storage)(nil)

// Storage keeps every collection in maps guarded by a RWMutex. Values are
// copied on the way in and on the way out so callers never alias stored data.
//
// Transactions are serialised and roll back by restoring a snapshot. Writes
// issued outside WithinTx are not isolated from a concurrent rollback.
type Storage struct {
	txMu  sync.Mutex
	mu    sync.RWMutex
	state *state
}

type state struct {
	users         *table[domain.User]
	resources     *table[domain.Resource]
	bookings      *table[domain.Booking]
	notifications *table[domain.Notification]
	messages      *table[domain.Message]
	reviews       *table[domain.Review]
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{state: newState()}
}

func newState() *state {
	return &state{
		users:         newTable[domain.User](),
		resources:     newTable[domain.Resource](),
		bookings:      newTable[domain.Booking](),
		notifications: newTable[domain.Notification](),
		messages:      newTable[domain.Message](),
		reviews:       newTable[domain.Review](),
	}
}

func (st *state) clone() *state {
	return &state{
		users:         st.users.clone(),
		resources:     st.resources.clone(),
		bookings:      st.bookings.clone(),
		notifications: st.notifications.clone(),
		messages:      st.messages.clone(),
		reviews:       st.reviews.clone(),
	}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

func (s *Storage) Users() persistence.UserRepository                 { return s }
func (s *Storage) Resources() persistence.ResourceRepository         { return s }
func (s *Storage) Bookings() persistence.BookingRepository           { return s }
func (s *Storage) Notifications() persistence.NotificationRepository { return s }
func (s *Storage) Messages() persistence.MessageRepository           { return s }
func (s *Storage) Reviews() persistence.ReviewRepository             { return s }

// WithinTx runs fn while holding the transaction lock. When fn fails or
// panics every collection is restored to its state before the call.
func (s *Storage) WithinTx(ctx context.Context, fn func(ctx context.Context, tx persistence.Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	rollback := func() {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, s); err != nil {
		rollback()
		return err
	}
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user. Emails are unique without regard to case.
func (s *Storage) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}
	if !s.state.users.insert(user.ID, user) {
		return fmt.Errorf("memory: user %s: %w", user.ID, persistence.ErrDuplicate)
	}
	return nil
}

// UpdateUser replaces an existing user.
func (s *Storage) UpdateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}
	if !s.state.users.replace(user.ID, user) {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Storage) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.state.users.get(id)
	if !ok {
		return domain.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// ListUsers returns all users ordered by CreatedAt ascending.
func (s *Storage) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	users := s.state.users.values(nil)
	s.mu.RUnlock()

	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Storage) ensureUniqueEmailLocked(id, email string) error {
	lower := strings.ToLower(email)
	for _, r := range s.state.users.rows {
		if r.value.ID == id {
			continue
		}
		if strings.ToLower(r.value.Email) == lower {
			return fmt.Errorf("memory: email %s: %w", email, persistence.ErrDuplicate)
		}
	}
	return nil
}

// --- ResourceRepository implementation ---

// CreateResource stores a new resource.
func (s *Storage) CreateResource(_ context.Context, resource domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.resources.insert(resource.ID, domain.CloneResource(resource)) {
		return fmt.Errorf("memory: resource %s: %w", resource.ID, persistence.ErrDuplicate)
	}
	return nil
}

// UpdateResource replaces an existing resource.
func (s *Storage) UpdateResource(_ context.Context, resource domain.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.resources.replace(resource.ID, domain.CloneResource(resource)) {
		return persistence.ErrNotFound
	}
	return nil
}

// GetResource retrieves a resource by ID.
func (s *Storage) GetResource(_ context.Context, id string) (domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.state.resources.get(id)
	if !ok {
		return domain.Resource{}, persistence.ErrNotFound
	}
	return domain.CloneResource(resource), nil
}

// ListResources returns matching resources ordered by CreatedAt ascending.
func (s *Storage) ListResources(_ context.Context, filter persistence.ResourceFilter) ([]domain.Resource, error) {
	s.mu.RLock()
	resources := s.state.resources.values(filter.Matches)
	s.mu.RUnlock()

	for i := range resources {
		resources[i] = domain.CloneResource(resources[i])
	}
	sort.SliceStable(resources, func(i, j int) bool {
		if resources[i].CreatedAt.Equal(resources[j].CreatedAt) {
			return resources[i].ID < resources[j].ID
		}
		return resources[i].CreatedAt.Before(resources[j].CreatedAt)
	})
	return resources, nil
}

// --- BookingRepository implementation ---

// CreateBooking stores a new booking.
func (s *Storage) CreateBooking(_ context.Context, booking domain.Booking) error {
	if err := checkBooking(booking); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.resources.get(booking.ResourceID); !ok {
		return fmt.Errorf("memory: booking resource %s: %w", booking.ResourceID, persistence.ErrConstraintViolation)
	}
	if !s.state.bookings.insert(booking.ID, booking) {
		return fmt.Errorf("memory: booking %s: %w", booking.ID, persistence.ErrDuplicate)
	}
	return nil
}

// UpdateBooking replaces an existing booking.
func (s *Storage) UpdateBooking(_ context.Context, booking domain.Booking) error {
	if err := checkBooking(booking); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.bookings.replace(booking.ID, booking) {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (s *Storage) GetBooking(_ context.Context, id string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.state.bookings.get(id)
	if !ok {
		return domain.Booking{}, persistence.ErrNotFound
	}
	return booking, nil
}

// ListBookings returns matching bookings ordered by Start ascending.
func (s *Storage) ListBookings(_ context.Context, filter persistence.BookingFilter) ([]domain.Booking, error) {
	s.mu.RLock()
	bookings := s.state.bookings.values(filter.Matches)
	s.mu.RUnlock()

	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Start.Equal(bookings[j].Start) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].Start.Before(bookings[j].Start)
	})
	return bookings, nil
}

func checkBooking(booking domain.Booking) error {
	if !booking.Status.Stored() {
		return fmt.Errorf("memory: booking status %q: %w", booking.Status, persistence.ErrConstraintViolation)
	}
	if !booking.Start.Before(booking.End) {
		return fmt.Errorf("memory: booking %s ends before it starts: %w", booking.ID, persistence.ErrConstraintViolation)
	}
	return nil
}

// --- NotificationRepository implementation ---

// CreateNotification stores a new notification.
func (s *Storage) CreateNotification(_ context.Context, notification domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.notifications.insert(notification.ID, notification) {
		return fmt.Errorf("memory: notification %s: %w", notification.ID, persistence.ErrDuplicate)
	}
	return nil
}

// UpdateNotification replaces an existing notification.
func (s *Storage) UpdateNotification(_ context.Context, notification domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.notifications.replace(notification.ID, notification) {
		return persistence.ErrNotFound
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *Storage) GetNotification(_ context.Context, id string) (domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notification, ok := s.state.notifications.get(id)
	if !ok {
		return domain.Notification{}, persistence.ErrNotFound
	}
	return notification, nil
}

// ListNotifications returns matching notifications, most recent first. Ties on
// CreatedAt fall back to reverse insertion order.
func (s *Storage) ListNotifications(_ context.Context, filter persistence.NotificationFilter) ([]domain.Notification, error) {
	s.mu.RLock()
	rows := s.state.notifications.rowsMatching(filter.Matches)
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].value.CreatedAt.Equal(rows[j].value.CreatedAt) {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].value.CreatedAt.After(rows[j].value.CreatedAt)
	})
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	notifications := make([]domain.Notification, len(rows))
	for i, r := range rows {
		notifications[i] = r.value
	}
	return notifications, nil
}

// --- MessageRepository implementation ---

// CreateMessage appends a message to its thread.
func (s *Storage) CreateMessage(_ context.Context, message domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.bookings.get(message.ThreadID); !ok {
		return fmt.Errorf("memory: message thread %s: %w", message.ThreadID, persistence.ErrConstraintViolation)
	}
	if !s.state.messages.insert(message.ID, message) {
		return fmt.Errorf("memory: message %s: %w", message.ID, persistence.ErrDuplicate)
	}
	return nil
}

// UpdateMessage replaces an existing message.
func (s *Storage) UpdateMessage(_ context.Context, message domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.messages.replace(message.ID, message) {
		return persistence.ErrNotFound
	}
	return nil
}

// ListMessages returns matching messages in chronological order.
func (s *Storage) ListMessages(_ context.Context, filter persistence.MessageFilter) ([]domain.Message, error) {
	s.mu.RLock()
	rows := s.state.messages.rowsMatching(filter.Matches)
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].value.CreatedAt.Equal(rows[j].value.CreatedAt) {
			return rows[i].seq < rows[j].seq
		}
		return rows[i].value.CreatedAt.Before(rows[j].value.CreatedAt)
	})

	messages := make([]domain.Message, len(rows))
	for i, r := range rows {
		messages[i] = r.value
	}
	return messages, nil
}

// --- ReviewRepository implementation ---

// CreateReview stores a review. A user may review a resource once.
func (s *Storage) CreateReview(_ context.Context, review domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("memory: review rating %d: %w", review.Rating, persistence.ErrConstraintViolation)
	}
	if _, ok := s.state.resources.get(review.ResourceID); !ok {
		return fmt.Errorf("memory: review resource %s: %w", review.ResourceID, persistence.ErrConstraintViolation)
	}
	for _, r := range s.state.reviews.rows {
		if r.value.ResourceID == review.ResourceID && r.value.UserID == review.UserID {
			return fmt.Errorf("memory: review by %s for %s: %w", review.UserID, review.ResourceID, persistence.ErrDuplicate)
		}
	}
	if !s.state.reviews.insert(review.ID, review) {
		return fmt.Errorf("memory: review %s: %w", review.ID, persistence.ErrDuplicate)
	}
	return nil
}

// ListReviews returns the reviews of a resource, most recent first.
func (s *Storage) ListReviews(_ context.Context, resourceID string) ([]domain.Review, error) {
	s.mu.RLock()
	reviews := s.state.reviews.values(func(r domain.Review) bool { return r.ResourceID == resourceID })
	s.mu.RUnlock()

	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID < reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}
