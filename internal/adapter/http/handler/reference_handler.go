package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// StakeholderService defines the behavior needed by StakeholderHandler.
type StakeholderService interface {
	CreateStakeholder(ctx context.Context, input usecase.StakeholderInput) (*domain.Stakeholder, error)
	GetStakeholder(ctx context.Context, id string) (*domain.Stakeholder, error)
	ListStakeholders(ctx context.Context, limit, offset int) ([]*domain.Stakeholder, error)
	UpdateStakeholder(ctx context.Context, id string, input usecase.StakeholderInput) (*domain.Stakeholder, error)
	SetStakeholderStatus(ctx context.Context, id string, active bool) (*domain.Stakeholder, error)
}

// StakeholderHandler handles supplier and customer records.
type StakeholderHandler struct {
	uc StakeholderService
}

// NewStakeholderHandler creates a new StakeholderHandler.
func NewStakeholderHandler(uc StakeholderService) *StakeholderHandler {
	return &StakeholderHandler{uc: uc}
}

func (h *StakeholderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeholderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.uc.CreateStakeholder(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "stakeholder created", dto.StakeholderFromDomain(s))
}

func (h *StakeholderHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.uc.GetStakeholder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.StakeholderFromDomain(s))
}

func (h *StakeholderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	list, err := h.uc.ListStakeholders(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ListResponse[*dto.StakeholderResponse]{
		Items:  dto.StakeholdersFromDomain(list),
		Count:  len(list),
		Limit:  limit,
		Offset: offset,
	})
}

func (h *StakeholderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeholderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.uc.UpdateStakeholder(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "stakeholder updated", dto.StakeholderFromDomain(s))
}

func (h *StakeholderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.uc.SetStakeholderStatus(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "stakeholder status updated", dto.StakeholderFromDomain(s))
}

// PackagingStyleService defines the behavior needed by PackagingStyleHandler.
type PackagingStyleService interface {
	CreatePackagingStyle(ctx context.Context, input usecase.PackagingStyleInput) (*domain.PackagingStyle, error)
	GetPackagingStyle(ctx context.Context, id string) (*domain.PackagingStyle, error)
	ListPackagingStyles(ctx context.Context, limit, offset int) ([]*domain.PackagingStyle, error)
	UpdatePackagingStyle(ctx context.Context, id string, input usecase.PackagingStyleInput) (*domain.PackagingStyle, error)
	SetPackagingStyleStatus(ctx context.Context, id string, active bool) (*domain.PackagingStyle, error)
}

// PackagingStyleHandler handles packaging style records.
type PackagingStyleHandler struct {
	uc PackagingStyleService
}

// NewPackagingStyleHandler creates a new PackagingStyleHandler.
func NewPackagingStyleHandler(uc PackagingStyleService) *PackagingStyleHandler {
	return &PackagingStyleHandler{uc: uc}
}

func (h *PackagingStyleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PackagingStyleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.uc.CreatePackagingStyle(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "packaging style created", dto.PackagingStyleFromDomain(p))
}

func (h *PackagingStyleHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetPackagingStyle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.PackagingStyleFromDomain(p))
}

func (h *PackagingStyleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r)

	list, err := h.uc.ListPackagingStyles(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "", dto.ListResponse[*dto.PackagingStyleResponse]{
		Items:  dto.PackagingStylesFromDomain(list),
		Count:  len(list),
		Limit:  limit,
		Offset: offset,
	})
}

func (h *PackagingStyleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.PackagingStyleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.uc.UpdatePackagingStyle(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "packaging style updated", dto.PackagingStyleFromDomain(p))
}

func (h *PackagingStyleHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.uc.SetPackagingStyleStatus(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "packaging style status updated", dto.PackagingStyleFromDomain(p))
}
