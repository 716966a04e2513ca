package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campushub/resource-hub/internal/domain"
	"github.com/campushub/resource-hub/internal/persistence"
)

// ResourceService orchestrates validation, authorization, and persistence for
// the resource catalog.
type ResourceService struct {
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService constructs a resource service with the provided dependencies.
func NewResourceService(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResourceService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource publishes a new resource owned by the principal. Students may
// not own resources.
func (s *ResourceService) CreateResource(ctx context.Context, params CreateResourceParams) (resource domain.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create resource", err)
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	if !params.Principal.Role.CanOwnResources() {
		err = ErrUnauthorized
		return
	}

	input := normalizeResourceInput(params.Input)
	if vErr := validateStruct(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	resource = domain.Resource{
		ID:                s.idGenerator(),
		Title:             input.Title,
		Description:       input.Description,
		Category:          input.Category,
		Location:          input.Location,
		Capacity:          input.Capacity,
		Status:            input.Status,
		OwnerID:           params.Principal.UserID,
		OwnerName:         params.Principal.Name,
		Equipment:         input.Equipment,
		AvailabilityRules: input.AvailabilityRules,
		RequiresApproval:  input.RequiresApproval,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		owner, err := tx.Users().GetUser(ctx, params.Principal.UserID)
		if err != nil {
			return mapRepoError("user", params.Principal.UserID, err)
		}
		resource.OwnerName = owner.Name
		return mapRepoError("resource", resource.ID, tx.Resources().CreateResource(ctx, resource))
	})
	if err != nil {
		resource = domain.Resource{}
	}
	return
}

// ArchiveResource retires a resource from the catalog. Resources are never
// hard-deleted; archiving twice is an invalid transition.
func (s *ResourceService) ArchiveResource(ctx context.Context, principal Principal, resourceID string) (resource domain.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ArchiveResource",
		"principal_id", principal.UserID,
		"resource_id", resourceID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to archive resource", err)
			return
		}
		logger.InfoContext(ctx, "resource archived")
	}()

	resource, err = s.mutate(ctx, principal, resourceID, func(existing *domain.Resource) error {
		if existing.Status == domain.ResourceArchived {
			return fmt.Errorf("%w: resource %s is already archived", ErrInvalidTransition, resourceID)
		}
		existing.Status = domain.ResourceArchived
		return nil
	})
	return
}

// PublishResource opens a draft or archived resource for booking. Publishing
// an already published resource is an invalid transition.
func (s *ResourceService) PublishResource(ctx context.Context, principal Principal, resourceID string) (resource domain.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "PublishResource",
		"principal_id", principal.UserID,
		"resource_id", resourceID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to publish resource", err)
			return
		}
		logger.InfoContext(ctx, "resource published")
	}()

	resource, err = s.mutate(ctx, principal, resourceID, func(existing *domain.Resource) error {
		if existing.Status == domain.ResourcePublished {
			return fmt.Errorf("%w: resource %s is already published", ErrInvalidTransition, resourceID)
		}
		existing.Status = domain.ResourcePublished
		return nil
	})
	return
}

// UpdateResource replaces the editable catalog fields. Status, ownership and
// counters are kept; status moves only through publish and archive.
func (s *ResourceService) UpdateResource(ctx context.Context, params UpdateResourceParams) (resource domain.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource",
		"principal_id", params.Principal.UserID,
		"resource_id", params.ResourceID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update resource", err)
			return
		}
		logger.InfoContext(ctx, "resource updated")
	}()

	input := normalizeResourceInput(params.Input)
	if vErr := validateStruct(input); vErr.HasErrors() {
		err = vErr
		return
	}

	resource, err = s.mutate(ctx, params.Principal, params.ResourceID, func(existing *domain.Resource) error {
		existing.Title = input.Title
		existing.Description = input.Description
		existing.Category = input.Category
		existing.Location = input.Location
		existing.Capacity = input.Capacity
		existing.Equipment = input.Equipment
		existing.AvailabilityRules = input.AvailabilityRules
		existing.RequiresApproval = input.RequiresApproval
		return nil
	})
	return
}

// mutate loads a resource, checks the principal owns it or is an admin, applies
// change and stores the result in one transaction.
func (s *ResourceService) mutate(ctx context.Context, principal Principal, resourceID string, change func(*domain.Resource) error) (domain.Resource, error) {
	var resource domain.Resource
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx persistence.Repositories) error {
		existing, err := tx.Resources().GetResource(ctx, resourceID)
		if err != nil {
			return mapRepoError("resource", resourceID, err)
		}
		if !principal.IsAdmin() && principal.UserID != existing.OwnerID {
			return ErrUnauthorized
		}
		if err := change(&existing); err != nil {
			return err
		}

		existing.UpdatedAt = s.now()
		if err := tx.Resources().UpdateResource(ctx, existing); err != nil {
			return mapRepoError("resource", resourceID, err)
		}
		resource = existing
		return nil
	})
	if err != nil {
		return domain.Resource{}, err
	}
	return resource, nil
}

// GetResource returns one resource by id.
func (s *ResourceService) GetResource(ctx context.Context, resourceID string) (domain.Resource, error) {
	if s == nil {
		return domain.Resource{}, fmt.Errorf("ResourceService is nil")
	}
	resource, err := s.store.Resources().GetResource(ctx, resourceID)
	if err != nil {
		return domain.Resource{}, mapRepoError("resource", resourceID, err)
	}
	return resource, nil
}

// ListResources returns the catalog entries matching query.
func (s *ResourceService) ListResources(ctx context.Context, query ResourceQuery) (resources []domain.Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	vErr := &ValidationError{}
	if query.Status != "" && !query.Status.Valid() {
		vErr.add("status", "status is invalid")
	}
	if query.Category != "" && !query.Category.Valid() {
		vErr.add("category", "category is invalid")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	resources, err = s.store.Resources().ListResources(ctx, persistence.ResourceFilter{
		Status:   query.Status,
		Category: query.Category,
		OwnerID:  query.OwnerID,
	})
	if err != nil {
		logFailure(ctx, s.loggerWith(ctx, "ListResources"), "failed to list resources", err)
		return nil, err
	}
	return resources, nil
}

// ListReviews returns the reviews left for a resource, most recent first.
func (s *ResourceService) ListReviews(ctx context.Context, resourceID string) ([]domain.Review, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	if _, err := s.store.Resources().GetResource(ctx, resourceID); err != nil {
		return nil, mapRepoError("resource", resourceID, err)
	}
	return s.store.Reviews().ListReviews(ctx, resourceID)
}

func normalizeResourceInput(input ResourceInput) ResourceInput {
	status := input.Status
	if status == "" {
		status = domain.ResourcePublished
	}
	return ResourceInput{
		Title:             strings.TrimSpace(input.Title),
		Description:       strings.TrimSpace(input.Description),
		Category:          domain.Category(strings.TrimSpace(string(input.Category))),
		Location:          strings.TrimSpace(input.Location),
		Capacity:          input.Capacity,
		Equipment:         trimAll(input.Equipment),
		AvailabilityRules: strings.TrimSpace(input.AvailabilityRules),
		RequiresApproval:  input.RequiresApproval,
		Status:            status,
	}
}
