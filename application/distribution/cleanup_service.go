package distribution

import (
	"context"
	"fmt"
	"sort"

	"action-classifier/domain/distribution"
)

// CleanupService handles pruning of old reports in the reports folder
type CleanupService struct {
	driveClient distribution.DriveClient
	folderID    string
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(client distribution.DriveClient, folderID string) *CleanupService {
	return &CleanupService{
		driveClient: client,
		folderID:    folderID,
	}
}

// ListReports lists JSON reports, newest first
func (s *CleanupService) ListReports(ctx context.Context) ([]distribution.FileInfo, error) {
	files, err := s.driveClient.ListFiles(ctx, s.folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var reports []distribution.FileInfo
	for _, f := range files {
		if f.MimeType == distribution.MimeTypeJSON {
			reports = append(reports, f)
		}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		if !reports[i].CreatedTime.Equal(reports[j].CreatedTime) {
			return reports[i].CreatedTime.After(reports[j].CreatedTime)
		}
		return reports[i].Name > reports[j].Name
	})
	return reports, nil
}

// PruneReports permanently deletes all but the newest keep reports
func (s *CleanupService) PruneReports(ctx context.Context, keep int) (*distribution.CleanupResult, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	reports, err := s.ListReports(ctx)
	if err != nil {
		return nil, err
	}

	result := &distribution.CleanupResult{}
	if len(reports) <= keep {
		result.Kept = len(reports)
		return result, nil
	}
	result.Kept = keep

	for _, r := range reports[keep:] {
		if err := s.driveClient.DeletePermanently(ctx, r.ID); err != nil {
			return result, fmt.Errorf("failed to delete %s: %w", r.Name, err)
		}
		result.DeletedFiles = append(result.DeletedFiles, distribution.DeletedFile{
			Name: r.Name,
			Size: r.Size,
		})
	}

	return result, nil
}
