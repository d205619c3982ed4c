package distribution

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"action-classifier/domain/distribution"
)

// UploadService handles report upload operations to Google Drive
type UploadService struct {
	driveClient distribution.DriveClient
	folderID    string
	output      io.Writer
}

// NewUploadService creates a new upload service
func NewUploadService(client distribution.DriveClient, folderID string, output io.Writer) *UploadService {
	if output == nil {
		output = io.Discard
	}
	return &UploadService{
		driveClient: client,
		folderID:    folderID,
		output:      output,
	}
}

// UploadReport uploads a JSON report, replacing any report of the same name in the folder
func (s *UploadService) UploadReport(ctx context.Context, reportPath string) (*distribution.UploadResult, error) {
	if s.folderID == "" {
		return nil, fmt.Errorf("no reports folder configured (google.reports_folder_id)")
	}
	if _, err := os.Stat(reportPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", reportPath)
	}

	fileName := filepath.Base(reportPath)

	// the old report is removed only once its replacement is stored
	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}

	req := distribution.UploadRequest{
		LocalPath: reportPath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  distribution.MimeTypeJSON,
	}

	result, err := s.driveClient.Upload(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	if existing != nil && existing.ID != result.FileID {
		fmt.Fprintf(s.output, "      Replacing existing %s\n", existing.Name)
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return result, fmt.Errorf("uploaded %s but failed to delete existing file %s (%s): %w", fileName, existing.Name, existing.ID, err)
		}
	}

	return result, nil
}
