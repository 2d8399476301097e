package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/textileledger/internal/adapter/http/dto"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/usecase"
)

func TestItemHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateItemInput
	h := NewItemHandler(&itemServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateItemInput) (*domain.Item, error) {
			captured = input
			return &domain.Item{ID: "item-1", Kind: input.Kind, Name: input.Name, Active: true}, nil
		},
	})

	rec := serve(http.MethodPost, "/items", "/items", `{"kind":"yarn","name":"Cotton 40s","origin_id":"parent"}`, h.Create)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ItemKindYarn, captured.Kind)
	require.NotNil(t, captured.OriginID)
	assert.Equal(t, "parent", *captured.OriginID)

	env := decodeEnvelope[dto.ItemResponse](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "item-1", env.Data.ID)
}

func TestItemHandler_Create_Invalid(t *testing.T) {
	h := NewItemHandler(&itemServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateItemInput) (*domain.Item, error) {
			t.Fatal("CreateItem should not be called for invalid payload")
			return nil, nil
		},
	})

	for _, body := range []string{`{invalid json`, `{"kind":"fabric","name":"Denim"}`, `{"kind":"raw"}`} {
		rec := serve(http.MethodPost, "/items", "/items", body, h.Create)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, decodeEnvelope[any](t, rec).Success)
	}
}

func TestItemHandler_Create_Duplicate(t *testing.T) {
	h := NewItemHandler(&itemServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateItemInput) (*domain.Item, error) {
			return nil, domain.ErrDuplicateName
		},
	})

	rec := serve(http.MethodPost, "/items", "/items", `{"kind":"yarn","name":"Cotton"}`, h.Create)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.ErrDuplicateName.Error(), decodeEnvelope[any](t, rec).Message)
}

func TestItemHandler_List(t *testing.T) {
	var captured usecase.ItemFilter
	h := NewItemHandler(&itemServiceStub{
		listFn: func(ctx context.Context, filter usecase.ItemFilter) ([]*domain.Item, error) {
			captured = filter
			return []*domain.Item{{ID: "a", Kind: domain.ItemKindRaw}}, nil
		},
	})

	rec := serve(http.MethodGet, "/items", "/items?kind=raw&active=true&limit=5&offset=10", "", h.List)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ItemKindRaw, captured.Kind)
	require.NotNil(t, captured.Active)
	assert.True(t, *captured.Active)
	assert.Equal(t, 5, captured.Limit)
	assert.Equal(t, 10, captured.Offset)

	env := decodeEnvelope[dto.ListResponse[dto.ItemResponse]](t, rec)
	assert.Equal(t, 1, env.Data.Count)
	assert.Nil(t, env.Data.Total)
	assert.Equal(t, 5, env.Data.Limit)

	rec = serve(http.MethodGet, "/items", "/items?kind=fabric", "", h.List)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemHandler_UpdateAndStatus(t *testing.T) {
	var update usecase.UpdateItemInput
	var statusActive *bool
	h := NewItemHandler(&itemServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateItemInput) (*domain.Item, error) {
			update = input
			return &domain.Item{ID: input.ID, Name: "Renamed"}, nil
		},
		statusFn: func(ctx context.Context, id string, active bool) (*domain.Item, error) {
			statusActive = &active
			return &domain.Item{ID: id, Active: active}, nil
		},
	})

	rec := serve(http.MethodPut, "/items/{id}", "/items/item-9", `{"name":"Renamed","clear_origin":true}`, h.Update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "item-9", update.ID)
	assert.True(t, update.ClearOrigin)

	rec = serve(http.MethodPut, "/items/{id}/status", "/items/item-9/status", `{}`, h.SetStatus)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, statusActive)

	rec = serve(http.MethodPut, "/items/{id}/status", "/items/item-9/status", `{"active":false}`, h.SetStatus)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, statusActive)
	assert.False(t, *statusActive)
}

func TestItemHandler_DeleteAndLineage(t *testing.T) {
	h := NewItemHandler(&itemServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			if id == "used" {
				return domain.ErrItemInUse
			}
			return nil
		},
		lineageFn: func(ctx context.Context, id string) ([]*domain.Item, error) {
			return []*domain.Item{{ID: id}, {ID: "parent"}}, nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Item, error) {
			return nil, domain.ErrItemNotFound
		},
	})

	assert.Equal(t, http.StatusConflict, serve(http.MethodDelete, "/items/{id}", "/items/used", "", h.Delete).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodDelete, "/items/{id}", "/items/free", "", h.Delete).Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/items/{id}", "/items/ghost", "", h.Get).Code)

	rec := serve(http.MethodGet, "/items/{id}/lineage", "/items/child/lineage", "", h.Lineage)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[[]dto.ItemResponse](t, rec)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "parent", env.Data[1].ID)
}
