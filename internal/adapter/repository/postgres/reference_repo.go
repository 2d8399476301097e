package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/postgres/generated"
)

// StakeholderRepository implements usecase.StakeholderRepository.
type StakeholderRepository struct {
	queries *generated.Queries
}

// NewStakeholderRepository creates a new StakeholderRepository.
func NewStakeholderRepository(db generated.DBTX) *StakeholderRepository {
	return &StakeholderRepository{queries: generated.New(db)}
}

func (r *StakeholderRepository) Create(ctx context.Context, s *domain.Stakeholder) error {
	_, err := r.queries.CreateStakeholder(ctx, generated.CreateStakeholderParams{
		ID:        s.ID,
		Name:      s.Name,
		Kind:      string(s.Kind),
		Phone:     s.Phone,
		Address:   s.Address,
		Active:    s.Active,
		CreatedAt: timeToPgTimestamptz(s.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(s.UpdatedAt),
	})
	if hasPgCode(err, pgErrUniqueViolation) {
		return domain.ErrDuplicateName
	}

	return err
}

func (r *StakeholderRepository) GetByID(ctx context.Context, id string) (*domain.Stakeholder, error) {
	row, err := r.queries.GetStakeholderByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStakeholderNotFound
		}

		return nil, err
	}

	return rowToStakeholder(row), nil
}

func (r *StakeholderRepository) GetByName(ctx context.Context, name string) (*domain.Stakeholder, error) {
	row, err := r.queries.GetStakeholderByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStakeholderNotFound
		}

		return nil, err
	}

	return rowToStakeholder(row), nil
}

func (r *StakeholderRepository) Update(ctx context.Context, s *domain.Stakeholder) error {
	err := r.queries.UpdateStakeholder(ctx, generated.UpdateStakeholderParams{
		ID:        s.ID,
		Name:      s.Name,
		Kind:      string(s.Kind),
		Phone:     s.Phone,
		Address:   s.Address,
		Active:    s.Active,
		UpdatedAt: timeToPgTimestamptz(s.UpdatedAt),
	})
	if hasPgCode(err, pgErrUniqueViolation) {
		return domain.ErrDuplicateName
	}

	return err
}

func (r *StakeholderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Stakeholder, error) {
	rows, err := r.queries.ListStakeholders(ctx, generated.ListStakeholdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Stakeholder, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToStakeholder(row))
	}

	return out, nil
}

func rowToStakeholder(row generated.Stakeholder) *domain.Stakeholder {
	return &domain.Stakeholder{
		ID:        row.ID,
		Name:      row.Name,
		Kind:      domain.StakeholderKind(row.Kind),
		Phone:     row.Phone,
		Address:   row.Address,
		Active:    row.Active,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

// PackagingStyleRepository implements usecase.PackagingStyleRepository.
type PackagingStyleRepository struct {
	queries *generated.Queries
}

// NewPackagingStyleRepository creates a new PackagingStyleRepository.
func NewPackagingStyleRepository(db generated.DBTX) *PackagingStyleRepository {
	return &PackagingStyleRepository{queries: generated.New(db)}
}

func (r *PackagingStyleRepository) Create(ctx context.Context, p *domain.PackagingStyle) error {
	_, err := r.queries.CreatePackagingStyle(ctx, generated.CreatePackagingStyleParams{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		CreatedAt:   timeToPgTimestamptz(p.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(p.UpdatedAt),
	})
	if hasPgCode(err, pgErrUniqueViolation) {
		return domain.ErrDuplicateName
	}

	return err
}

func (r *PackagingStyleRepository) GetByID(ctx context.Context, id string) (*domain.PackagingStyle, error) {
	row, err := r.queries.GetPackagingStyleByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackagingStyleNotFound
		}

		return nil, err
	}

	return rowToPackagingStyle(row), nil
}

func (r *PackagingStyleRepository) GetByName(ctx context.Context, name string) (*domain.PackagingStyle, error) {
	row, err := r.queries.GetPackagingStyleByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPackagingStyleNotFound
		}

		return nil, err
	}

	return rowToPackagingStyle(row), nil
}

func (r *PackagingStyleRepository) Update(ctx context.Context, p *domain.PackagingStyle) error {
	err := r.queries.UpdatePackagingStyle(ctx, generated.UpdatePackagingStyleParams{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
		UpdatedAt:   timeToPgTimestamptz(p.UpdatedAt),
	})
	if hasPgCode(err, pgErrUniqueViolation) {
		return domain.ErrDuplicateName
	}

	return err
}

func (r *PackagingStyleRepository) List(ctx context.Context, limit, offset int) ([]*domain.PackagingStyle, error) {
	rows, err := r.queries.ListPackagingStyles(ctx, generated.ListPackagingStylesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.PackagingStyle, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToPackagingStyle(row))
	}

	return out, nil
}

func rowToPackagingStyle(row generated.PackagingStyle) *domain.PackagingStyle {
	return &domain.PackagingStyle{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}
