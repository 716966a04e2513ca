// Package seed populates an entity store from a YAML record set.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

// Dataset is the YAML layout of a seed file.
type Dataset struct {
	Users         []User         `yaml:"users"`
	Resources     []Resource     `yaml:"resources"`
	Bookings      []Booking      `yaml:"bookings"`
	Reviews       []Review       `yaml:"reviews"`
	Messages      []Message      `yaml:"messages"`
	Notifications []Notification `yaml:"notifications"`
}

type User struct {
	ID           string    `yaml:"id"`
	Email        string    `yaml:"email"`
	Name         string    `yaml:"name"`
	Role         string    `yaml:"role"`
	Department   string    `yaml:"department"`
	ProfileImage string    `yaml:"profile_image"`
	CreatedAt    time.Time `yaml:"created_at"`
}

type Resource struct {
	ID                string    `yaml:"id"`
	Title             string    `yaml:"title"`
	Description       string    `yaml:"description"`
	Category          string    `yaml:"category"`
	Location          string    `yaml:"location"`
	Capacity          int       `yaml:"capacity"`
	Status            string    `yaml:"status"`
	OwnerID           string    `yaml:"owner_id"`
	OwnerName         string    `yaml:"owner_name"`
	Equipment         []string  `yaml:"equipment"`
	AvailabilityRules string    `yaml:"availability_rules"`
	RequiresApproval  bool      `yaml:"requires_approval"`
	Rating            float64   `yaml:"rating"`
	ReviewCount       int       `yaml:"review_count"`
	BookingCount      int       `yaml:"booking_count"`
	CreatedAt         time.Time `yaml:"created_at"`
	UpdatedAt         time.Time `yaml:"updated_at"`
}

type Booking struct {
	ID            string    `yaml:"id"`
	ResourceID    string    `yaml:"resource_id"`
	ResourceTitle string    `yaml:"resource_title"`
	UserID        string    `yaml:"user_id"`
	UserName      string    `yaml:"user_name"`
	Start         time.Time `yaml:"start"`
	End           time.Time `yaml:"end"`
	Status        string    `yaml:"status"`
	Notes         string    `yaml:"notes"`
	Recurrence    string    `yaml:"recurrence"`
	CreatedAt     time.Time `yaml:"created_at"`
	UpdatedAt     time.Time `yaml:"updated_at"`
}

type Review struct {
	ID               string    `yaml:"id"`
	ResourceID       string    `yaml:"resource_id"`
	UserID           string    `yaml:"user_id"`
	UserName         string    `yaml:"user_name"`
	UserProfileImage string    `yaml:"user_profile_image"`
	Rating           int       `yaml:"rating"`
	Comment          string    `yaml:"comment"`
	CreatedAt        time.Time `yaml:"created_at"`
}

type Message struct {
	ID                   string    `yaml:"id"`
	ThreadID             string    `yaml:"thread_id"`
	SenderID             string    `yaml:"sender_id"`
	SenderName           string    `yaml:"sender_name"`
	SenderProfileImage   string    `yaml:"sender_profile_image"`
	ReceiverID           string    `yaml:"receiver_id"`
	ReceiverName         string    `yaml:"receiver_name"`
	ReceiverProfileImage string    `yaml:"receiver_profile_image"`
	Content              string    `yaml:"content"`
	Read                 bool      `yaml:"read"`
	CreatedAt            time.Time `yaml:"created_at"`
}

type Notification struct {
	ID        string    `yaml:"id"`
	UserID    string    `yaml:"user_id"`
	Type      string    `yaml:"type"`
	Title     string    `yaml:"title"`
	Message   string    `yaml:"message"`
	Read      bool      `yaml:"read"`
	Link      string    `yaml:"link"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Counts reports how many records of each collection were inserted.
type Counts struct {
	Users         int
	Resources     int
	Bookings      int
	Reviews       int
	Messages      int
	Notifications int
}

// LoadFile reads the YAML seed file at path into store.
func LoadFile(ctx context.Context, store persistence.Store, path string, logger *slog.Logger) (Counts, error) {
	f, err := os.Open(path)
	if err != nil {
		return Counts{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Load(ctx, store, f, logger)
}

// Load decodes a seed document and inserts it into store in dependency order
// inside one transaction. Nothing is written when any record is rejected.
func Load(ctx context.Context, store persistence.Store, r io.Reader, logger *slog.Logger) (Counts, error) {
	if store == nil {
		return Counts{}, fmt.Errorf("seed store is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var data Dataset
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return Counts{}, fmt.Errorf("decode seed: %w", err)
	}

	var counts Counts
	err := store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		for _, u := range data.Users {
			if err := tx.Users().CreateUser(ctx, u.domain()); err != nil {
				return fmt.Errorf("seed user %s: %w", u.ID, err)
			}
		}
		for _, res := range data.Resources {
			if err := tx.Resources().CreateResource(ctx, res.domain()); err != nil {
				return fmt.Errorf("seed resource %s: %w", res.ID, err)
			}
		}
		for _, b := range data.Bookings {
			if err := tx.Bookings().CreateBooking(ctx, b.domain()); err != nil {
				return fmt.Errorf("seed booking %s: %w", b.ID, err)
			}
		}
		for _, rv := range data.Reviews {
			if err := tx.Reviews().CreateReview(ctx, rv.domain()); err != nil {
				return fmt.Errorf("seed review %s: %w", rv.ID, err)
			}
		}
		for _, m := range data.Messages {
			if err := tx.Messages().CreateMessage(ctx, m.domain()); err != nil {
				return fmt.Errorf("seed message %s: %w", m.ID, err)
			}
		}
		for _, n := range data.Notifications {
			if err := tx.Notifications().CreateNotification(ctx, n.domain()); err != nil {
				return fmt.Errorf("seed notification %s: %w", n.ID, err)
			}
		}
		counts = Counts{
			Users:         len(data.Users),
			Resources:     len(data.Resources),
			Bookings:      len(data.Bookings),
			Reviews:       len(data.Reviews),
			Messages:      len(data.Messages),
			Notifications: len(data.Notifications),
		}
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "seed failed", "error", err)
		return Counts{}, err
	}

	logger.InfoContext(ctx, "seed loaded",
		"users", counts.Users,
		"resources", counts.Resources,
		"bookings", counts.Bookings,
		"reviews", counts.Reviews,
		"messages", counts.Messages,
		"notifications", counts.Notifications,
	)
	return counts, nil
}

func (u User) domain() domain.User {
	return domain.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         domain.Role(u.Role),
		Department:   u.Department,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

func (r Resource) domain() domain.Resource {
	status := domain.ResourceStatus(r.Status)
	if status == "" {
		status = domain.ResourcePublished
	}
	updated := r.UpdatedAt
	if updated.IsZero() {
		updated = r.CreatedAt
	}
	return domain.Resource{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Category:          domain.Category(r.Category),
		Location:          r.Location,
		Capacity:          r.Capacity,
		Status:            status,
		OwnerID:           r.OwnerID,
		OwnerName:         r.OwnerName,
		Equipment:         r.Equipment,
		AvailabilityRules: r.AvailabilityRules,
		RequiresApproval:  r.RequiresApproval,
		Rating:            r.Rating,
		ReviewCount:       r.ReviewCount,
		BookingCount:      r.BookingCount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         updated,
	}
}

func (b Booking) domain() domain.Booking {
	updated := b.UpdatedAt
	if updated.IsZero() {
		updated = b.CreatedAt
	}
	return domain.Booking{
		ID:            b.ID,
		ResourceID:    b.ResourceID,
		ResourceTitle: b.ResourceTitle,
		UserID:        b.UserID,
		UserName:      b.UserName,
		Start:         b.Start,
		End:           b.End,
		Status:        storedBookingStatus(domain.BookingStatus(b.Status)),
		Notes:         b.Notes,
		Recurrence:    domain.Recurrence(b.Recurrence).Normalize(),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     updated,
	}
}

// storedBookingStatus maps an exported completed booking back to approved;
// completion is derived from the clock when the booking is read.
func storedBookingStatus(status domain.BookingStatus) domain.BookingStatus {
	if status == domain.BookingCompleted {
		return domain.BookingApproved
	}
	return status
}

func (r Review) domain() domain.Review {
	return domain.Review{
		ID:               r.ID,
		ResourceID:       r.ResourceID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		UserProfileImage: r.UserProfileImage,
		Rating:           r.Rating,
		Comment:          r.Comment,
		CreatedAt:        r.CreatedAt,
	}
}

func (m Message) domain() domain.Message {
	return domain.Message{
		ID:                   m.ID,
		ThreadID:             m.ThreadID,
		SenderID:             m.SenderID,
		SenderName:           m.SenderName,
		SenderProfileImage:   m.SenderProfileImage,
		ReceiverID:           m.ReceiverID,
		ReceiverName:         m.ReceiverName,
		ReceiverProfileImage: m.ReceiverProfileImage,
		Content:              m.Content,
		Read:                 m.Read,
		CreatedAt:            m.CreatedAt,
	}
}

func (n Notification) domain() domain.Notification {
	return domain.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      domain.NotificationType(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}
