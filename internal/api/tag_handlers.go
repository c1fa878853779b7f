package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the sorted global tag universe",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Adds a tag to the global tag universe",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{tag}",
		Summary:     "Rename tag",
		Description: "Renames a tag in the universe and on every item carrying it",
		Tags:        []string{"Tags"},
	}, s.handleRenameTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{tag}",
		Summary:     "Delete tag",
		Description: "Removes a tag from the universe and strips it from every item",
		Tags:        []string{"Tags"},
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagsResponse contains the global tag universe.
type TagsResponse struct {
	Tags []string `json:"tags" doc:"Sorted tag universe"`
}

// ListTagsOutput wraps the tag list for Huma.
type ListTagsOutput struct {
	Body TagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Tag string `json:"tag" minLength:"1" maxLength:"25" doc:"Tag name, normalized to lowercase"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// TagResponse describes one tag after a mutation.
type TagResponse struct {
	Tag   string `json:"tag" doc:"Normalized tag name"`
	Added bool   `json:"added" doc:"False when the tag already existed"`
}

// TagOutput wraps a tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// RenameTagRequest is the request body for renaming a tag.
type RenameTagRequest struct {
	NewName string `json:"newName" minLength:"1" maxLength:"25" doc:"Replacement tag name"`
}

// RenameTagInput wraps the rename request for Huma.
type RenameTagInput struct {
	Tag  string `path:"tag" doc:"Current tag name"`
	Body RenameTagRequest
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	Tag string `path:"tag" doc:"Tag name"`
}

// === Handlers ===

func (s *Server) handleListTags(_ context.Context, _ *struct{}) (*ListTagsOutput, error) {
	return &ListTagsOutput{Body: TagsResponse{Tags: s.engine.AllTags()}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	tag, added := s.engine.AddGlobalTag(ctx, input.Body.Tag)
	if tag == "" {
		return nil, huma.Error400BadRequest("tag must not be blank")
	}

	return &TagOutput{Body: TagResponse{Tag: tag, Added: added}}, nil
}

func (s *Server) handleRenameTag(ctx context.Context, input *RenameTagInput) (*TagOutput, error) {
	newName := domain.NormalizeTag(input.Body.NewName)
	if newName == "" {
		return nil, huma.Error400BadRequest("new tag name must not be blank")
	}

	if !s.engine.RenameGlobalTag(ctx, input.Tag, newName) {
		// Renaming a tag to itself is a no-op, not an error.
		if domain.NormalizeTag(input.Tag) == newName {
			return &TagOutput{Body: TagResponse{Tag: newName}}, nil
		}
		return nil, huma.Error404NotFound("tag not found")
	}

	return &TagOutput{Body: TagResponse{Tag: newName, Added: true}}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*MessageOutput, error) {
	if !s.engine.DeleteGlobalTag(ctx, input.Tag) {
		return nil, huma.Error404NotFound("tag not found")
	}

	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}
