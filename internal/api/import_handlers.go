package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfstash/shelfstash-server/internal/importer"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "importItems",
		Method:      http.MethodPost,
		Path:        "/api/v1/import",
		Summary:     "Bulk import",
		Description: "Imports a JSON object or array of externally produced records",
		Tags:        []string{"Import"},
	}, s.handleImport)
}

// === DTOs ===

// ImportInput carries the raw JSON payload. The reconciler accepts a single
// object or an array with loose, synonym-tolerant field names, so the body
// is deliberately unschema'd.
type ImportInput struct {
	RawBody []byte
}

// ImportResponse reports a finished batch.
type ImportResponse struct {
	Status   string                 `json:"status" doc:"success, partial, or failed"`
	Total    int                    `json:"total" doc:"Records in the payload"`
	Imported int                    `json:"imported" doc:"Records added to the catalog"`
	Failed   int                    `json:"failed" doc:"Records skipped"`
	Errors   []importer.RecordError `json:"errors,omitempty" doc:"Why each skipped record was skipped"`
}

// ImportOutput wraps the import response for Huma.
type ImportOutput struct {
	Body ImportResponse
}

// === Handlers ===

func (s *Server) handleImport(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	if err := s.throttle("import"); err != nil {
		return nil, err
	}

	result, err := s.importer.Import(ctx, input.RawBody)
	if err != nil {
		return nil, huma.Error400BadRequest("unusable import payload", err)
	}

	return &ImportOutput{
		Body: ImportResponse{
			Status:   string(result.Status()),
			Total:    result.Total,
			Imported: result.Imported,
			Failed:   result.Failed,
			Errors:   result.Errors,
		},
	}, nil
}
