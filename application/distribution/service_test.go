package distribution

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"action-classifier/domain/distribution"
)

// mockDriveClient implements distribution.DriveClient for testing
type mockDriveClient struct {
	files      []distribution.FileInfo
	existing   *distribution.FileInfo
	shouldFail bool
	failError  error
	deleteFail bool
	uploadFail bool

	uploaded []distribution.UploadRequest
	deleted  []string
	calls    []string
}

func (m *mockDriveClient) ListFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.files, nil
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.existing, nil
}

func (m *mockDriveClient) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	m.calls = append(m.calls, "upload")
	if m.uploadFail {
		return nil, errors.New("network unreachable")
	}
	m.uploaded = append(m.uploaded, req)
	return &distribution.UploadResult{
		FileID:      "uploaded-id",
		FileName:    req.FileName,
		WebViewLink: "https://drive.google.com/file/d/uploaded-id/view",
		Size:        42,
	}, nil
}

func (m *mockDriveClient) DeletePermanently(ctx context.Context, fileID string) error {
	if m.deleteFail {
		return errors.New("permission denied")
	}
	m.calls = append(m.calls, "delete")
	m.deleted = append(m.deleted, fileID)
	return nil
}

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run-1.json")
	if err := os.WriteFile(path, []byte(`{"run_id":"run-1"}`), 0644); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	return path
}

func TestUploadService_UploadReport(t *testing.T) {
	path := writeReport(t)

	t.Run("uploads new report", func(t *testing.T) {
		client := &mockDriveClient{}
		svc := NewUploadService(client, "folder-1", nil)

		result, err := svc.UploadReport(context.Background(), path)
		if err != nil {
			t.Fatalf("UploadReport() unexpected error: %v", err)
		}
		if result.FileName != "run-1.json" {
			t.Errorf("unexpected file name %q", result.FileName)
		}
		if len(client.uploaded) != 1 {
			t.Fatalf("expected 1 upload, got %d", len(client.uploaded))
		}
		req := client.uploaded[0]
		if req.FolderID != "folder-1" || req.MimeType != distribution.MimeTypeJSON || req.LocalPath != path {
			t.Errorf("unexpected upload request %+v", req)
		}
	})

	t.Run("replaces existing report", func(t *testing.T) {
		client := &mockDriveClient{existing: &distribution.FileInfo{ID: "old-id", Name: "run-1.json"}}
		output := &bytes.Buffer{}
		svc := NewUploadService(client, "folder-1", output)

		if _, err := svc.UploadReport(context.Background(), path); err != nil {
			t.Fatalf("UploadReport() unexpected error: %v", err)
		}
		if len(client.deleted) != 1 || client.deleted[0] != "old-id" {
			t.Errorf("expected old report deleted, got %v", client.deleted)
		}
		if !strings.Contains(output.String(), "Replacing existing run-1.json") {
			t.Errorf("expected replace message, got %q", output.String())
		}
		if strings.Join(client.calls, ",") != "upload,delete" {
			t.Errorf("expected upload before delete, got %v", client.calls)
		}
	})

	t.Run("keeps existing report when upload fails", func(t *testing.T) {
		client := &mockDriveClient{existing: &distribution.FileInfo{ID: "old-id", Name: "run-1.json"}, uploadFail: true}
		svc := NewUploadService(client, "folder-1", nil)

		_, err := svc.UploadReport(context.Background(), path)
		if err == nil || !strings.Contains(err.Error(), "failed to upload run-1.json") {
			t.Fatalf("expected upload error, got %v", err)
		}
		if len(client.deleted) != 0 {
			t.Errorf("expected existing report kept, deleted %v", client.deleted)
		}
	})

	t.Run("delete failure still returns the new upload", func(t *testing.T) {
		client := &mockDriveClient{existing: &distribution.FileInfo{ID: "old-id", Name: "run-1.json"}, deleteFail: true}
		svc := NewUploadService(client, "folder-1", nil)

		result, err := svc.UploadReport(context.Background(), path)
		if err == nil || !strings.Contains(err.Error(), "old-id") {
			t.Errorf("expected error naming the old file, got %v", err)
		}
		if result == nil || result.FileID != "uploaded-id" {
			t.Errorf("expected uploaded result, got %+v", result)
		}
	})

	tests := []struct {
		name     string
		client   *mockDriveClient
		folderID string
		path     string
		errMsg   string
	}{
		{name: "no folder", client: &mockDriveClient{}, folderID: "", path: path, errMsg: "no reports folder"},
		{name: "missing file", client: &mockDriveClient{}, folderID: "f", path: "/nonexistent/run.json", errMsg: "does not exist"},
		{name: "lookup fails", client: &mockDriveClient{shouldFail: true, failError: errors.New("quota")}, folderID: "f", path: path, errMsg: "failed to check for existing file"},
		{name: "delete fails", client: &mockDriveClient{existing: &distribution.FileInfo{ID: "x", Name: "run-1.json"}, deleteFail: true}, folderID: "f", path: path, errMsg: "failed to delete existing file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUploadService(tt.client, tt.folderID, nil)
			_, err := svc.UploadReport(context.Background(), tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestCleanupService_PruneReports(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	files := []distribution.FileInfo{
		{ID: "1", Name: "a.json", MimeType: distribution.MimeTypeJSON, CreatedTime: base},
		{ID: "2", Name: "b.json", MimeType: distribution.MimeTypeJSON, CreatedTime: base.Add(2 * time.Hour)},
		{ID: "3", Name: "notes.txt", MimeType: "text/plain", CreatedTime: base.Add(3 * time.Hour)},
		{ID: "4", Name: "c.json", MimeType: distribution.MimeTypeJSON, CreatedTime: base.Add(time.Hour), Size: 10},
	}

	tests := []struct {
		name        string
		keep        int
		wantDeleted []string
		wantKept    int
	}{
		{name: "keep newest one", keep: 1, wantDeleted: []string{"4", "1"}, wantKept: 1},
		{name: "keep all", keep: 5, wantDeleted: nil, wantKept: 3},
		{name: "keep none", keep: 0, wantDeleted: []string{"2", "4", "1"}, wantKept: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockDriveClient{files: files}
			svc := NewCleanupService(client, "folder-1")

			result, err := svc.PruneReports(context.Background(), tt.keep)
			if err != nil {
				t.Fatalf("PruneReports() unexpected error: %v", err)
			}
			if strings.Join(client.deleted, ",") != strings.Join(tt.wantDeleted, ",") {
				t.Errorf("deleted %v, want %v", client.deleted, tt.wantDeleted)
			}
			if result.Kept != tt.wantKept || len(result.DeletedFiles) != len(tt.wantDeleted) {
				t.Errorf("unexpected result %+v", result)
			}
		})
	}

	t.Run("negative keep", func(t *testing.T) {
		svc := NewCleanupService(&mockDriveClient{}, "f")
		if _, err := svc.PruneReports(context.Background(), -1); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("list fails", func(t *testing.T) {
		svc := NewCleanupService(&mockDriveClient{shouldFail: true, failError: errors.New("offline")}, "f")
		if _, err := svc.PruneReports(context.Background(), 1); err == nil {
			t.Error("expected error")
		}
	})
}
