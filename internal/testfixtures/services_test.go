package testfixtures

import (
	"context"
	"testing"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
)

func TestServiceFactoryUsesDeterministicIDsAndClock(t *testing.T) {
	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("gen")))
	store := NewMemoryStore(t)

	owner := NewUser(WithRole(domain.RoleStaff))
	MustCreateUsers(t, store, owner)

	services := factory.NewServices(store, application.BookingServiceDeps{})
	resource, err := services.Resources.CreateResource(context.Background(), application.CreateResourceParams{
		Principal: application.PrincipalFromUser(owner),
		Input: application.ResourceInput{
			Title:       "Chemistry Lab Kit",
			Description: "Glassware set",
			Category:    domain.CategoryLabEquipment,
			Location:    "Science Hall",
			Capacity:    1,
		},
	})
	if err != nil {
		t.Fatalf("CreateResource returned error: %v", err)
	}
	if resource.ID != "gen-1" {
		t.Fatalf("expected generated id gen-1, got %q", resource.ID)
	}
	if !resource.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), resource.CreatedAt)
	}
}

func TestStoreFactoriesOpenEmptyStores(t *testing.T) {
	for name, open := range StoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			users, err := store.Users().ListUsers(context.Background())
			if err != nil {
				t.Fatalf("ListUsers: %v", err)
			}
			if len(users) != 0 {
				t.Fatalf("expected empty store, got %d users", len(users))
			}
		})
	}
}
