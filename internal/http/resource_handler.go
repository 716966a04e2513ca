package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campushub/resource-hub/internal/application"
	"github.com/campushub/resource-hub/internal/domain"
)

type resourceService interface {
	CreateResource(ctx context.Context, params application.CreateResourceParams) (domain.Resource, error)
	ArchiveResource(ctx context.Context, principal application.Principal, resourceID string) (domain.Resource, error)
	PublishResource(ctx context.Context, principal application.Principal, resourceID string) (domain.Resource, error)
	UpdateResource(ctx context.Context, params application.UpdateResourceParams) (domain.Resource, error)
	GetResource(ctx context.Context, resourceID string) (domain.Resource, error)
	ListResources(ctx context.Context, query application.ResourceQuery) ([]domain.Resource, error)
	ListReviews(ctx context.Context, resourceID string) ([]domain.Review, error)
}

type ResourceHandler struct {
	service   resourceService
	responder responder
	logger    *slog.Logger
}

func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	values := r.URL.Query()
	resources, err := h.service.ListResources(r.Context(), application.ResourceQuery{
		Status:   domain.ResourceStatus(strings.TrimSpace(values.Get("status"))),
		Category: domain.Category(strings.TrimSpace(values.Get("category"))),
		OwnerID:  strings.TrimSpace(values.Get("owner_id")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		out = append(out, toResourceDTO(resource))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{Resources: out})
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	resource, err := h.service.CreateResource(r.Context(), application.CreateResourceParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ResourceHandler", "Create", "resource_id", resource.ID).
		InfoContext(r.Context(), "resource created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resource, err := h.service.GetResource(r.Context(), r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

// Archive serves DELETE; resources are archived rather than removed.
func (h *ResourceHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	resource, err := h.service.ArchiveResource(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	resource, err := h.service.PublishResource(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

// Update serves PUT with the same body as Create. The status field is ignored.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	resource, err := h.service.UpdateResource(r.Context(), application.UpdateResourceParams{
		Principal:  principal,
		ResourceID: r.PathValue("id"),
		Input:      req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ResourceHandler", "Update", "resource_id", resource.ID).
		InfoContext(r.Context(), "resource updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]reviewDTO, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, toReviewDTO(review))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReviewsResponse{Reviews: out})
}

type resourceRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Location          string   `json:"location"`
	Capacity          int      `json:"capacity"`
	Equipment         []string `json:"equipment"`
	AvailabilityRules string   `json:"availability_rules"`
	RequiresApproval  bool     `json:"requires_approval"`
	Status            string   `json:"status"`
}

func (r resourceRequest) toInput() application.ResourceInput {
	return application.ResourceInput{
		Title:             r.Title,
		Description:       r.Description,
		Category:          domain.Category(strings.TrimSpace(r.Category)),
		Location:          r.Location,
		Capacity:          r.Capacity,
		Equipment:         append([]string(nil), r.Equipment...),
		AvailabilityRules: r.AvailabilityRules,
		RequiresApproval:  r.RequiresApproval,
		Status:            domain.ResourceStatus(strings.TrimSpace(r.Status)),
	}
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}

type listReviewsResponse struct {
	Reviews []reviewDTO `json:"reviews"`
}
