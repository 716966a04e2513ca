// Package http exposes the campus resource hub over a JSON API.
//
// Every route except /healthz and /metrics requires an X-User-ID header naming
// a stored user; the header resolves to the acting principal.
//
//   - GET /resources, POST /resources, GET /resources/{id}, PUT /resources/{id},
//     DELETE /resources/{id} (archives), POST /resources/{id}/publish,
//     GET /resources/{id}/reviews: catalog endpoints exchanging the
//     resourceDTO payload defined in resource_handler.go.
//   - GET /bookings, POST /bookings, GET /bookings/upcoming, GET /bookings/managed,
//     GET /bookings/{id}, POST /bookings/{id}/approve|reject|cancel: booking
//     workflow endpoints exchanging bookingDTO. POST /bookings honours the
//     Idempotency-Key header and answers 200 instead of 201 for replays.
//   - GET /bookings/{id}/messages, POST /bookings/{id}/messages,
//     POST /bookings/{id}/messages/read, GET /threads: booking threads.
//   - GET /notifications, GET /notifications/unread-count,
//     POST /notifications/{id}/read, POST /notifications/read: the inbox.
//   - GET /users (admin), GET /users/{id}, PUT /users/{id}: accounts.
//   - GET /admin/bookings/export: XLSX export of every booking (admin).
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
