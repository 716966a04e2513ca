package http

import (
	"strings"
	"time"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	return time.Time{}
}

type userDTO struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Department   string `json:"department,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		Department:   u.Department,
		ProfileImage: u.ProfileImage,
		CreatedAt:    formatTime(u.CreatedAt),
	}
}

type resourceDTO struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Location          string   `json:"location"`
	Capacity          int      `json:"capacity"`
	Status            string   `json:"status"`
	OwnerID           string   `json:"owner_id"`
	OwnerName         string   `json:"owner_name"`
	Equipment         []string `json:"equipment"`
	AvailabilityRules string   `json:"availability_rules,omitempty"`
	RequiresApproval  bool     `json:"requires_approval"`
	Rating            float64  `json:"rating"`
	ReviewCount       int      `json:"review_count"`
	BookingCount      int      `json:"booking_count"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

func toResourceDTO(r domain.Resource) resourceDTO {
	equipment := append([]string{}, r.Equipment...)
	return resourceDTO{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Category:          string(r.Category),
		Location:          r.Location,
		Capacity:          r.Capacity,
		Status:            string(r.Status),
		OwnerID:           r.OwnerID,
		OwnerName:         r.OwnerName,
		Equipment:         equipment,
		AvailabilityRules: r.AvailabilityRules,
		RequiresApproval:  r.RequiresApproval,
		Rating:            r.Rating,
		ReviewCount:       r.ReviewCount,
		BookingCount:      r.BookingCount,
		CreatedAt:         formatTime(r.CreatedAt),
		UpdatedAt:         formatTime(r.UpdatedAt),
	}
}

type reviewDTO struct {
	ID               string `json:"id"`
	ResourceID       string `json:"resource_id"`
	UserID           string `json:"user_id"`
	UserName         string `json:"user_name"`
	UserProfileImage string `json:"user_profile_image,omitempty"`
	Rating           int    `json:"rating"`
	Comment          string `json:"comment"`
	CreatedAt        string `json:"created_at"`
}

func toReviewDTO(r domain.Review) reviewDTO {
	return reviewDTO{
		ID:               r.ID,
		ResourceID:       r.ResourceID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		UserProfileImage: r.UserProfileImage,
		Rating:           r.Rating,
		Comment:          r.Comment,
		CreatedAt:        formatTime(r.CreatedAt),
	}
}

// bookingDTO reports the display status; stored_status differs only for
// approved bookings that have already ended.
type bookingDTO struct {
	ID            string `json:"id"`
	ResourceID    string `json:"resource_id"`
	ResourceTitle string `json:"resource_title"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Status        string `json:"status"`
	StoredStatus  string `json:"stored_status"`
	Notes         string `json:"notes,omitempty"`
	Recurrence    string `json:"recurrence"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toBookingDTO(v application.BookingView) bookingDTO {
	return bookingDTO{
		ID:            v.ID,
		ResourceID:    v.ResourceID,
		ResourceTitle: v.ResourceTitle,
		UserID:        v.UserID,
		UserName:      v.UserName,
		Start:         formatTime(v.Start),
		End:           formatTime(v.End),
		Status:        string(v.DisplayStatus),
		StoredStatus:  string(v.Status),
		Notes:         v.Notes,
		Recurrence:    string(v.Recurrence.Normalize()),
		CreatedAt:     formatTime(v.CreatedAt),
		UpdatedAt:     formatTime(v.UpdatedAt),
	}
}

func toBookingDTOs(views []application.BookingView) []bookingDTO {
	out := make([]bookingDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toBookingDTO(v))
	}
	return out
}

type conflictWarningDTO struct {
	BookingID  string `json:"booking_id"`
	ResourceID string `json:"resource_id"`
	UserID     string `json:"user_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, conflictWarningDTO{
			BookingID:  w.BookingID,
			ResourceID: w.ResourceID,
			UserID:     w.UserID,
			Start:      formatTime(w.Start),
			End:        formatTime(w.End),
		})
	}
	return out
}

type notificationDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	Link      string `json:"link,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toNotificationDTO(n domain.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Link:      n.Link,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

type messageDTO struct {
	ID                   string `json:"id"`
	ThreadID             string `json:"thread_id"`
	SenderID             string `json:"sender_id"`
	SenderName           string `json:"sender_name"`
	SenderProfileImage   string `json:"sender_profile_image,omitempty"`
	ReceiverID           string `json:"receiver_id"`
	ReceiverName         string `json:"receiver_name"`
	ReceiverProfileImage string `json:"receiver_profile_image,omitempty"`
	Content              string `json:"content"`
	Read                 bool   `json:"read"`
	CreatedAt            string `json:"created_at"`
}

func toMessageDTO(m domain.Message) messageDTO {
	return messageDTO{
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
		CreatedAt:            formatTime(m.CreatedAt),
	}
}

type threadSummaryDTO struct {
	ThreadID     string     `json:"thread_id"`
	LastMessage  messageDTO `json:"last_message"`
	MessageCount int        `json:"message_count"`
	UnreadCount  int        `json:"unread_count"`
}

type countResponse struct {
	Count int `json:"count"`
}
