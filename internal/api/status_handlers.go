package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfstash/shelfstash-server/internal/http/response"
)

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Server status",
		Description: "Returns the catalog instance identity and counts",
		Tags:        []string{"Status"},
	}, s.handleGetStatus)
}

// === DTOs ===

// StatusResponse describes the running instance.
type StatusResponse struct {
	ID        string    `json:"id" doc:"Instance identifier"`
	Name      string    `json:"name" doc:"Instance name"`
	Version   string    `json:"version" doc:"Server version"`
	Items     int       `json:"items" doc:"Catalog size"`
	Tags      int       `json:"tags" doc:"Tag universe size"`
	CreatedAt time.Time `json:"createdAt" doc:"When the instance was first initialized"`
}

// StatusOutput wraps the status response for Huma.
type StatusOutput struct {
	Body StatusResponse
}

// === Handlers ===

func (s *Server) handleGetStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	instance, err := s.store.GetInstance(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load instance record", err)
	}

	return &StatusOutput{
		Body: StatusResponse{
			ID:        instance.ID,
			Name:      instance.Name,
			Version:   Version,
			Items:     s.engine.Len(),
			Tags:      len(s.engine.AllTags()),
			CreatedAt: instance.CreatedAt,
		},
	}, nil
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
