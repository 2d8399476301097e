package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// ItemService defines the behavior needed by ItemHandler.
type ItemService interface {
	CreateItem(ctx context.Context, input usecase.CreateItemInput) (*domain.Item, error)
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, filter usecase.ItemFilter) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, input usecase.UpdateItemInput) (*domain.Item, error)
	SetItemStatus(ctx context.Context, id string, active bool) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	Lineage(ctx context.Context, id string) ([]*domain.Item, error)
}

// ItemHandler handles item-related HTTP requests.
type ItemHandler struct {
	itemUC ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemUC ItemService) *ItemHandler {
	return &ItemHandler{itemUC: itemUC}
}

// Create registers a new item.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.itemUC.CreateItem(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "item created", dto.ItemFromDomain(item))
}

// Get retrieves an item by ID.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.itemUC.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ItemFromDomain(item))
}

// List lists items, optionally narrowed by kind and active flag.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	active, err := parseBoolQuery(r, "active")
	if err != nil {
		respondError(w, r, err)
		return
	}

	kind := domain.ItemKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.IsValid() {
		respondError(w, r, domain.ErrInvalidItemKind)
		return
	}

	limit, offset := parsePage(r)

	items, err := h.itemUC.ListItems(r.Context(), usecase.ItemFilter{
		Kind:   kind,
		Active: active,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ListResponse[*dto.ItemResponse]{
		Items:  dto.ItemsFromDomain(items),
		Count:  len(items),
		Limit:  limit,
		Offset: offset,
	})
}

// Update changes an item's name, comment or origin.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.itemUC.UpdateItem(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "item updated", dto.ItemFromDomain(item))
}

// SetStatus activates or deactivates an item.
func (h *ItemHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.itemUC.SetItemStatus(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "item status updated", dto.ItemFromDomain(item))
}

// Delete removes an item that nothing references.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.itemUC.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "item deleted", nil)
}

// Lineage returns the item followed by its origin chain.
func (h *ItemHandler) Lineage(w http.ResponseWriter, r *http.Request) {
	chain, err := h.itemUC.Lineage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ItemsFromDomain(chain))
}
