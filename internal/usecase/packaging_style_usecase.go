package usecase

import (
	"context"
	"errors"

	"github.com/iho/textileledger/internal/domain"
)

// PackagingStyleUseCase handles packaging style business logic.
type PackagingStyleUseCase struct {
	repo  PackagingStyleRepository
	idGen IDGenerator
	clock Clock
}

// NewPackagingStyleUseCase creates a new PackagingStyleUseCase.
func NewPackagingStyleUseCase(repo PackagingStyleRepository, idGen IDGenerator, clock Clock) *PackagingStyleUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &PackagingStyleUseCase{repo: repo, idGen: idGen, clock: clock}
}

// PackagingStyleInput represents the editable fields of a packaging style.
type PackagingStyleInput struct {
	Name        string
	Description string
}

// CreatePackagingStyle creates a new active packaging style.
func (uc *PackagingStyleUseCase) CreatePackagingStyle(ctx context.Context, input PackagingStyleInput) (*domain.PackagingStyle, error) {
	name := domain.NormalizeName(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateComment(input.Description); err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	p := &domain.PackagingStyle{
		ID:          uc.idGen.Generate(),
		Name:        name,
		Description: input.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPackagingStyle retrieves a packaging style by ID.
func (uc *PackagingStyleUseCase) GetPackagingStyle(ctx context.Context, id string) (*domain.PackagingStyle, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListPackagingStyles lists packaging styles with pagination.
func (uc *PackagingStyleUseCase) ListPackagingStyles(ctx context.Context, limit, offset int) ([]*domain.PackagingStyle, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.repo.List(ctx, limit, offset)
}

// UpdatePackagingStyle replaces the name and description of a packaging style.
func (uc *PackagingStyleUseCase) UpdatePackagingStyle(ctx context.Context, id string, input PackagingStyleInput) (*domain.PackagingStyle, error) {
	name := domain.NormalizeName(input.Name)
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateComment(input.Description); err != nil {
		return nil, err
	}

	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, name, p.ID); err != nil {
		return nil, err
	}

	p.Name = name
	p.Description = input.Description
	p.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPackagingStyleStatus activates or deactivates a packaging style.
func (uc *PackagingStyleUseCase) SetPackagingStyleStatus(ctx context.Context, id string, active bool) (*domain.PackagingStyle, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Active == active {
		return p, nil
	}

	p.Active = active
	p.UpdatedAt = uc.clock.Now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PackagingStyleUseCase) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := uc.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrPackagingStyleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return domain.ErrDuplicateName
	}
	return nil
}
