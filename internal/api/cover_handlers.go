package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/http/response"
)

func (s *Server) registerCoverRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getItemCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/items/{id}/cover",
		Summary:     "Get item cover",
		Description: "Redirects to the item's cover image",
		Tags:        []string{"Covers"},
	}, s.handleGetItemCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadItemCover",
		Method:      http.MethodPut,
		Path:        "/api/v1/items/{id}/cover",
		Summary:     "Upload item cover",
		Description: "Stores raw image bytes as the item's cover",
		Tags:        []string{"Covers"},
	}, s.handleUploadItemCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteItemCover",
		Method:      http.MethodDelete,
		Path:        "/api/v1/items/{id}/cover",
		Summary:     "Delete item cover",
		Description: "Removes the item's cover image",
		Tags:        []string{"Covers"},
	}, s.handleDeleteItemCover)
}

// === DTOs ===

// GetItemCoverInput contains parameters for resolving a cover.
type GetItemCoverInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// CoverRedirectOutput redirects the client to the cover location.
type CoverRedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

// StatusCode implements huma's dynamic status interface.
func (o *CoverRedirectOutput) StatusCode() int {
	return o.Status
}

// UploadItemCoverInput carries raw image bytes.
type UploadItemCoverInput struct {
	ID          string `path:"id" doc:"Item ID"`
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

// CoverResponse describes the stored cover.
type CoverResponse struct {
	ImageRef string `json:"imageUrl" doc:"Image reference token"`
	BlurHash string `json:"blurHash,omitempty" doc:"Placeholder hash for instant loading"`
}

// CoverOutput wraps the cover response for Huma.
type CoverOutput struct {
	Body CoverResponse
}

// DeleteItemCoverInput contains parameters for deleting a cover.
type DeleteItemCoverInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// === Handlers ===

func (s *Server) handleGetItemCover(_ context.Context, input *GetItemCoverInput) (*CoverRedirectOutput, error) {
	item, ok := s.engine.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("item not found")
	}

	switch {
	case item.ImageRef == "":
		return nil, huma.Error404NotFound("item has no cover")
	case domain.IsUploadRef(item.ImageRef):
		return &CoverRedirectOutput{
			Status:   http.StatusTemporaryRedirect,
			Location: "/covers/" + item.ID,
		}, nil
	default:
		return &CoverRedirectOutput{
			Status:   http.StatusTemporaryRedirect,
			Location: item.ImageRef,
		}, nil
	}
}

func (s *Server) handleUploadItemCover(ctx context.Context, input *UploadItemCoverInput) (*CoverOutput, error) {
	if len(input.RawBody) == 0 {
		return nil, huma.Error400BadRequest("image payload is empty")
	}

	item, ok := s.engine.SetCover(ctx, input.ID, input.RawBody)
	if !ok {
		return nil, huma.Error404NotFound("item not found")
	}

	return &CoverOutput{
		Body: CoverResponse{
			ImageRef: item.ImageRef,
			BlurHash: item.BlurHash,
		},
	}, nil
}

func (s *Server) handleDeleteItemCover(ctx context.Context, input *DeleteItemCoverInput) (*MessageOutput, error) {
	if !s.engine.RemoveCover(ctx, input.ID) {
		return nil, huma.Error404NotFound("item not found")
	}

	return &MessageOutput{Body: MessageResponse{Message: "Cover deleted"}}, nil
}

// handleServeCover streams an uploaded cover straight from the image store.
// Served outside the OpenAPI layer so the bytes are never buffered through
// a response body struct.
func (s *Server) handleServeCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "cover id required", s.logger)
		return
	}

	data, err := s.covers.Get(id)
	if err != nil {
		response.NotFound(w, "cover not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to stream cover", "id", id, "error", err)
	}
}
