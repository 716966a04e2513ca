package testfixtures

import (
	"log/slog"
	"time"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/persistence"
)

// ServiceFactory builds application services that share a deterministic
// clock and id sequence.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Logger:      DiscardLogger(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Clock = clock }
}

// WithIDGenerator overrides the id sequence.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.IDGenerator = generator }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(f *ServiceFactory) { f.Logger = logger }
}

// Services bundles every application service over one store.
type Services struct {
	Bookings      *application.BookingService
	Messaging     *application.MessagingService
	Notifications *application.NotificationService
	Resources     *application.ResourceService
	Users         *application.UserService
	Queries       *application.QueryService
}

// NewServices builds every service over store. Booking dependencies left
// zero in deps are filled from the factory.
func (f *ServiceFactory) NewServices(store persistence.Store, deps application.BookingServiceDeps) Services {
	return Services{
		Bookings: f.NewBookingService(store, deps),
		Messaging: application.NewMessagingService(application.MessagingServiceDeps{
			Store:       store,
			Metrics:     deps.Metrics,
			IDGenerator: f.IDGenerator.NextFunc(),
			Now:         f.Clock.NowFunc(),
			Logger:      f.Logger,
		}),
		Notifications: application.NewNotificationService(store, f.Logger),
		Resources:     application.NewResourceService(store, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger),
		Users:         application.NewUserService(store, f.Logger),
		Queries:       application.NewQueryService(store, f.Clock.NowFunc(), f.Logger),
	}
}

// NewBookingService builds a booking service over store.
func (f *ServiceFactory) NewBookingService(store persistence.Store, deps application.BookingServiceDeps) *application.BookingService {
	deps.Store = store
	if deps.IDGenerator == nil {
		deps.IDGenerator = f.IDGenerator.NextFunc()
	}
	if deps.Now == nil {
		deps.Now = f.Clock.NowFunc()
	}
	if deps.Logger == nil {
		deps.Logger = f.Logger
	}
	return application.NewBookingService(deps)
}
