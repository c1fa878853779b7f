package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/domain"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/items",
		Summary:     "List items",
		Description: "Returns one page of the catalog after tag filtering, keyword search, and sorting",
		Tags:        []string{"Items"},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createItem",
		Method:        http.MethodPost,
		Path:          "/api/v1/items",
		Summary:       "Create item",
		Description:   "Adds a new catalog item",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}",
		Summary:     "Get item",
		Description: "Returns an item by ID",
		Tags:        []string{"Items"},
	}, s.handleGetItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateItem",
		Method:      http.MethodPut,
		Path:        "/api/v1/items/{id}",
		Summary:     "Update item",
		Description: "Replaces the writable fields of an item",
		Tags:        []string{"Items"},
	}, s.handleUpdateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/items/{id}",
		Summary:     "Delete item",
		Description: "Deletes an item and its uploaded cover",
		Tags:        []string{"Items"},
	}, s.handleDeleteItem)
}

// === DTOs ===

// ListItemsInput contains the query pipeline parameters.
type ListItemsInput struct {
	Search   string `query:"search" doc:"Whitespace-split keywords, every keyword must match"`
	Field    string `query:"field" doc:"Scope the search to one field (title or author)"`
	Tags     string `query:"tags" doc:"Comma-separated tag filter, item must carry every tag"`
	Sort     string `query:"sort" doc:"Sort key: createdAt (default) or title"`
	Dir      string `query:"dir" doc:"Sort direction: asc or desc"`
	Page     int    `query:"page" doc:"1-based page number, out of range clamps to the last page"`
	PageSize int    `query:"page_size" doc:"Items per page, 0 uses the server default"`
}

// ListItemsOutput wraps one query result page for Huma.
type ListItemsOutput struct {
	Body *catalog.QueryResult
}

// ItemOutput wraps a single item for Huma.
type ItemOutput struct {
	Body *domain.Item
}

// CreateItemInput wraps the item form for Huma.
type CreateItemInput struct {
	Body domain.ItemForm
}

// GetItemInput contains parameters for fetching an item.
type GetItemInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// UpdateItemInput wraps the item form plus target ID for Huma.
type UpdateItemInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body domain.ItemForm
}

// DeleteItemInput contains parameters for deleting an item.
type DeleteItemInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// === Handlers ===

func (s *Server) handleListItems(_ context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	var tags []string
	if input.Tags != "" {
		tags = strings.Split(input.Tags, ",")
	}

	result := s.engine.Query(catalog.QueryOptions{
		Tags:      tags,
		Search:    input.Search,
		Field:     input.Field,
		Sort:      input.Sort,
		Direction: input.Dir,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})

	return &ListItemsOutput{Body: result}, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	item := s.engine.AddItem(ctx, &input.Body)
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleGetItem(_ context.Context, input *GetItemInput) (*ItemOutput, error) {
	item, ok := s.engine.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("item not found")
	}

	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleUpdateItem(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	item, ok := s.engine.UpdateItem(ctx, input.ID, &input.Body)
	if !ok {
		return nil, huma.Error404NotFound("item not found")
	}

	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *DeleteItemInput) (*MessageOutput, error) {
	if !s.engine.DeleteItem(ctx, input.ID) {
		return nil, huma.Error404NotFound("item not found")
	}

	return &MessageOutput{Body: MessageResponse{Message: "Item deleted"}}, nil
}
