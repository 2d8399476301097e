package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

// ErrInvalidRequest is returned when a request body fails field validation.
var ErrInvalidRequest = errors.New("invalid request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate tags of req.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

// CreateItemRequest represents a request to register an item.
type CreateItemRequest struct {
	Kind     string  `json:"kind" validate:"required,oneof=yarn raw warp_beam"`
	Name     string  `json:"name" validate:"required,max=200"`
	OriginID *string `json:"origin_id,omitempty"`
	Comment  string  `json:"comment" validate:"max=2000"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateItemRequest) ToUseCaseInput() usecase.CreateItemInput {
	return usecase.CreateItemInput{
		Kind:     domain.ItemKind(r.Kind),
		Name:     r.Name,
		OriginID: emptyToNil(r.OriginID),
		Comment:  r.Comment,
	}
}

// UpdateItemRequest changes the mutable fields of an item. Nil fields are left
// untouched; clear_origin detaches the item from its origin.
type UpdateItemRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Comment     *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
	OriginID    *string `json:"origin_id,omitempty"`
	ClearOrigin bool    `json:"clear_origin"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateItemRequest) ToUseCaseInput(id string) usecase.UpdateItemInput {
	return usecase.UpdateItemInput{
		ID:          id,
		Name:        r.Name,
		Comment:     r.Comment,
		OriginID:    emptyToNil(r.OriginID),
		ClearOrigin: r.ClearOrigin,
	}
}

// StatusRequest toggles the active flag of an item or reference record.
type StatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// StakeholderRequest creates or replaces a stakeholder.
type StakeholderRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Kind    string `json:"kind" validate:"required,oneof=supplier customer both"`
	Phone   string `json:"phone" validate:"max=64"`
	Address string `json:"address" validate:"max=2000"`
}

// ToUseCaseInput converts to use case input.
func (r *StakeholderRequest) ToUseCaseInput() usecase.StakeholderInput {
	return usecase.StakeholderInput{
		Name:    r.Name,
		Kind:    domain.StakeholderKind(r.Kind),
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// PackagingStyleRequest creates or replaces a packaging style.
type PackagingStyleRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// ToUseCaseInput converts to use case input.
func (r *PackagingStyleRequest) ToUseCaseInput() usecase.PackagingStyleInput {
	return usecase.PackagingStyleInput{Name: r.Name, Description: r.Description}
}

// RecordMovementRequest represents an inbound or outbound movement.
// Quantity is a decimal string in kilograms.
type RecordMovementRequest struct {
	ItemID           string     `json:"item_id" validate:"required"`
	Direction        string     `json:"direction" validate:"required,oneof=inbound outbound"`
	Quantity         string     `json:"quantity"`
	Count            int64      `json:"count"`
	StakeholderID    *string    `json:"stakeholder_id,omitempty"`
	PackagingStyleID *string    `json:"packaging_style_id,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	InternalRef      string     `json:"internal_ref" validate:"max=64"`
	ExternalRef      string     `json:"external_ref" validate:"max=64"`
	Comment          string     `json:"comment" validate:"max=2000"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordMovementRequest) ToUseCaseInput() (usecase.RecordMovementInput, error) {
	quantity := decimal.Zero
	if strings.TrimSpace(r.Quantity) != "" {
		q, err := decimal.NewFromString(strings.TrimSpace(r.Quantity))
		if err != nil {
			return usecase.RecordMovementInput{}, fmt.Errorf("%w: quantity %q is not a number", domain.ErrInvalidQuantity, r.Quantity)
		}
		quantity = q
	}

	direction, err := domain.ParseDirection(r.Direction)
	if err != nil {
		return usecase.RecordMovementInput{}, err
	}

	return usecase.RecordMovementInput{
		ItemID:           r.ItemID,
		Direction:        direction,
		Quantity:         quantity,
		Count:            r.Count,
		StakeholderID:    emptyToNil(r.StakeholderID),
		PackagingStyleID: emptyToNil(r.PackagingStyleID),
		Date:             r.Date,
		InternalRef:      r.InternalRef,
		ExternalRef:      r.ExternalRef,
		Comment:          r.Comment,
	}, nil
}

// ResetBalanceRequest zeroes an item's running balance.
type ResetBalanceRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
