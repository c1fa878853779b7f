package api

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfstash/shelfstash-server/internal/backup"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/v1/backups",
		Summary:       "Create backup",
		Description:   "Exports the whole catalog into a JSON backup file",
		Tags:          []string{"Backups"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/backups",
		Summary:     "List backups",
		Description: "Lists all backup files, newest first",
		Tags:        []string{"Backups"},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadBackup",
		Method:      http.MethodGet,
		Path:        "/api/v1/backups/{id}/download",
		Summary:     "Download backup",
		Description: "Downloads a backup file",
		Tags:        []string{"Backups"},
	}, s.handleDownloadBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBackup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/backups/{id}",
		Summary:     "Delete backup",
		Description: "Deletes a backup file",
		Tags:        []string{"Backups"},
	}, s.handleDeleteBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "restore",
		Method:      http.MethodPost,
		Path:        "/api/v1/restore",
		Summary:     "Restore from backup",
		Description: "Replaces the whole catalog with a backup's contents after taking a safety backup",
		Tags:        []string{"Backups"},
	}, s.handleRestore)
}

// === DTOs ===

// CreateBackupRequest is the request body for creating a backup.
type CreateBackupRequest struct {
	Scope string `json:"scope,omitempty" enum:"url-only,upload-only,both" doc:"Which image references to keep (default both)"`
}

// CreateBackupInput wraps the create backup request for Huma.
type CreateBackupInput struct {
	Body CreateBackupRequest
}

// BackupCreatedResponse reports a finished export.
type BackupCreatedResponse struct {
	Path     string `json:"path" doc:"Backup file path"`
	Size     int64  `json:"size" doc:"Backup file size in bytes"`
	Items    int    `json:"items" doc:"Number of exported items"`
	Scope    string `json:"scope" doc:"Export scope"`
	Duration string `json:"duration" doc:"Export duration"`
}

// CreateBackupOutput wraps the create backup response for Huma.
type CreateBackupOutput struct {
	Body BackupCreatedResponse
}

// BackupInfoResponse describes one backup file on disk.
type BackupInfoResponse struct {
	ID        string    `json:"id" doc:"Backup identifier (filename without extension)"`
	Size      int64     `json:"size" doc:"File size in bytes"`
	CreatedAt time.Time `json:"createdAt" doc:"When the backup was created"`
}

// ListBackupsOutput wraps the backup list for Huma.
type ListBackupsOutput struct {
	Body struct {
		Backups []BackupInfoResponse `json:"backups" doc:"Backups, newest first"`
	}
}

// DownloadBackupInput contains parameters for downloading a backup.
type DownloadBackupInput struct {
	ID string `path:"id" doc:"Backup identifier"`
}

// DeleteBackupInput contains parameters for deleting a backup.
type DeleteBackupInput struct {
	ID string `path:"id" doc:"Backup identifier"`
}

// RestoreRequest is the request body for restoring from a backup.
type RestoreRequest struct {
	BackupID string `json:"backupId" minLength:"1" doc:"Identifier of the backup to restore"`
}

// RestoreInput wraps the restore request for Huma.
type RestoreInput struct {
	Body RestoreRequest
}

// RestoreResponse reports a finished restore.
type RestoreResponse struct {
	Restored         int    `json:"restored" doc:"Number of restored items"`
	SafetyBackupPath string `json:"safetyBackupPath" doc:"Backup taken before the catalog was replaced"`
}

// RestoreOutput wraps the restore response for Huma.
type RestoreOutput struct {
	Body RestoreResponse
}

// === Handlers ===

func (s *Server) handleCreateBackup(ctx context.Context, input *CreateBackupInput) (*CreateBackupOutput, error) {
	if err := s.throttle("backup"); err != nil {
		return nil, err
	}

	opts := backup.DefaultOptions()
	if input.Body.Scope != "" {
		opts.Scope = backup.Scope(input.Body.Scope)
	}

	result, err := s.backups.Create(ctx, opts)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create backup", err)
	}

	return &CreateBackupOutput{
		Body: BackupCreatedResponse{
			Path:     result.Path,
			Size:     result.Size,
			Items:    result.Items,
			Scope:    string(result.Scope),
			Duration: result.Duration.String(),
		},
	}, nil
}

func (s *Server) handleListBackups(_ context.Context, _ *struct{}) (*ListBackupsOutput, error) {
	infos, err := s.backups.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list backups", err)
	}

	out := &ListBackupsOutput{}
	out.Body.Backups = make([]BackupInfoResponse, len(infos))
	for i, b := range infos {
		out.Body.Backups[i] = BackupInfoResponse{
			ID:        b.ID,
			Size:      b.Size,
			CreatedAt: b.CreatedAt,
		}
	}

	return out, nil
}

func (s *Server) handleDownloadBackup(_ context.Context, input *DownloadBackupInput) (*huma.StreamResponse, error) {
	info, err := s.backups.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("backup not found", err)
	}

	f, err := os.Open(info.Path)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to open backup file", err)
	}

	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			defer f.Close()
			ctx.SetHeader("Content-Type", "application/json")
			ctx.SetHeader("Content-Disposition", "attachment; filename=\""+input.ID+".json\"")
			if _, err := io.Copy(ctx.BodyWriter(), f); err != nil {
				s.logger.Warn("backup download interrupted", "id", input.ID, "error", err)
			}
		},
	}, nil
}

func (s *Server) handleDeleteBackup(_ context.Context, input *DeleteBackupInput) (*MessageOutput, error) {
	if err := s.backups.Delete(input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Backup deleted"}}, nil
}

func (s *Server) handleRestore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error) {
	if err := s.throttle("restore"); err != nil {
		return nil, err
	}

	info, err := s.backups.Get(input.Body.BackupID)
	if err != nil {
		return nil, huma.Error404NotFound("backup not found", err)
	}

	result, err := s.backups.Restore(ctx, info.Path)
	if err != nil {
		return nil, err
	}

	return &RestoreOutput{
		Body: RestoreResponse{
			Restored:         result.Restored,
			SafetyBackupPath: result.SafetyBackupPath,
		},
	}, nil
}
