package usecase

import (
	"context"
	"errors"

	"github.com/iho/textileledger/internal/domain"
)

// StakeholderUseCase handles stakeholder business logic.
type StakeholderUseCase struct {
	repo  StakeholderRepository
	idGen IDGenerator
	clock Clock
}

// NewStakeholderUseCase creates a new StakeholderUseCase.
func NewStakeholderUseCase(repo StakeholderRepository, idGen IDGenerator, clock Clock) *StakeholderUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &StakeholderUseCase{repo: repo, idGen: idGen, clock: clock}
}

// StakeholderInput represents the editable fields of a stakeholder.
type StakeholderInput struct {
	Name    string
	Kind    domain.StakeholderKind
	Phone   string
	Address string
}

func (in StakeholderInput) validate() (string, error) {
	name := domain.NormalizeName(in.Name)
	if err := domain.ValidateName(name); err != nil {
		return "", err
	}
	if !in.Kind.IsValid() {
		return "", domain.ErrInvalidStakeholderKind
	}
	if err := domain.ValidateReference(in.Phone); err != nil {
		return "", err
	}
	if err := domain.ValidateComment(in.Address); err != nil {
		return "", err
	}
	return name, nil
}

// CreateStakeholder creates a new active stakeholder.
func (uc *StakeholderUseCase) CreateStakeholder(ctx context.Context, input StakeholderInput) (*domain.Stakeholder, error) {
	name, err := input.validate()
	if err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := uc.clock.Now().UTC()
	s := &domain.Stakeholder{
		ID:        uc.idGen.Generate(),
		Name:      name,
		Kind:      input.Kind,
		Phone:     input.Phone,
		Address:   input.Address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetStakeholder retrieves a stakeholder by ID.
func (uc *StakeholderUseCase) GetStakeholder(ctx context.Context, id string) (*domain.Stakeholder, error) {
	return uc.repo.GetByID(ctx, id)
}

// ListStakeholders lists stakeholders with pagination.
func (uc *StakeholderUseCase) ListStakeholders(ctx context.Context, limit, offset int) ([]*domain.Stakeholder, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.repo.List(ctx, limit, offset)
}

// UpdateStakeholder replaces the editable fields of a stakeholder.
func (uc *StakeholderUseCase) UpdateStakeholder(ctx context.Context, id string, input StakeholderInput) (*domain.Stakeholder, error) {
	name, err := input.validate()
	if err != nil {
		return nil, err
	}

	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureNameFree(ctx, name, s.ID); err != nil {
		return nil, err
	}

	s.Name = name
	s.Kind = input.Kind
	s.Phone = input.Phone
	s.Address = input.Address
	s.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SetStakeholderStatus activates or deactivates a stakeholder.
func (uc *StakeholderUseCase) SetStakeholderStatus(ctx context.Context, id string, active bool) (*domain.Stakeholder, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Active == active {
		return s, nil
	}

	s.Active = active
	s.UpdatedAt = uc.clock.Now().UTC()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *StakeholderUseCase) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := uc.repo.GetByName(ctx, name)
	if errors.Is(err, domain.ErrStakeholderNotFound) {
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
