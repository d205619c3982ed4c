//go:build integration

package steps

import (
	"context"
	"fmt"
	"io"
	"regexp"

	googledrive "google.golang.org/api/drive/v3"
)

var nameQuery = regexp.MustCompile(`name = '((?:[^'\\]|\\.)*)'`)

// mockDriveService implements drive.DriveService and keeps files in memory
type mockDriveService struct {
	files          []*googledrive.File
	deletedFileIDs []string
	uploaded       []*googledrive.File
	shouldFail     bool
	failError      error
}

func (m *mockDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*googledrive.File, error) {
	if m.shouldFail {
		return nil, m.failError
	}

	name := ""
	if match := nameQuery.FindStringSubmatch(query); match != nil {
		name = match[1]
	}

	var result []*googledrive.File
	for _, f := range m.files {
		if m.isDeleted(f.Id) {
			continue
		}
		if name != "" && f.Name != name {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (m *mockDriveService) CreateFile(ctx context.Context, file *googledrive.File, content io.Reader, fields string) (*googledrive.File, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	created := &googledrive.File{
		Id:          fmt.Sprintf("uploaded-%d", len(m.uploaded)+1),
		Name:        file.Name,
		MimeType:    file.MimeType,
		Size:        int64(len(data)),
		WebViewLink: fmt.Sprintf("https://drive.google.com/file/d/uploaded-%d/view", len(m.uploaded)+1),
	}
	m.uploaded = append(m.uploaded, created)
	m.files = append(m.files, created)
	return created, nil
}

func (m *mockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	if m.shouldFail {
		return m.failError
	}
	m.deletedFileIDs = append(m.deletedFileIDs, fileID)
	return nil
}

func (m *mockDriveService) isDeleted(id string) bool {
	for _, d := range m.deletedFileIDs {
		if d == id {
			return true
		}
	}
	return false
}

func (m *mockDriveService) deletedNames() map[string]bool {
	names := make(map[string]bool)
	for _, f := range m.files {
		if m.isDeleted(f.Id) {
			names[f.Name] = true
		}
	}
	return names
}
