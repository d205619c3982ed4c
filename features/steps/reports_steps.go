//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"action-classifier/cmd"
	"action-classifier/infrastructure/drive"

	googledrive "google.golang.org/api/drive/v3"

	"github.com/cucumber/godog"
)

const reportsFolderID = "reports-folder"

type reportsContext struct {
	tempDir   string
	service   *mockDriveService
	client    *drive.Client
	localPath string
}

// SharedReportsContext is reset before each scenario via Before hook
var SharedReportsContext *reportsContext

func InitializeReportsScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "reports-test-*")
		if err != nil {
			return c, err
		}
		service := &mockDriveService{}
		client, err := drive.NewClient(c, "", drive.WithDriveService(service))
		if err != nil {
			return c, err
		}
		SharedReportsContext = &reportsContext{
			tempDir: tempDir,
			service: service,
			client:  client,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedReportsContext != nil && SharedReportsContext.tempDir != "" {
			os.RemoveAll(SharedReportsContext.tempDir)
		}
		SharedReportsContext = nil
		return c, nil
	})

	ctx.Step(`^the reports folder contains:$`, theReportsFolderContains)
	ctx.Step(`^a local report named "([^"]*)"$`, aLocalReportNamed)
	ctx.Step(`^I list the reports$`, iListTheReports)
	ctx.Step(`^I prune reports keeping (\d+)$`, iPruneReportsKeeping)
	ctx.Step(`^I upload the local report$`, iUploadTheLocalReport)
	ctx.Step(`^the report listing should start with "([^"]*)"$`, theReportListingShouldStartWith)
	ctx.Step(`^"([^"]*)" should have been deleted$`, shouldHaveBeenDeleted)
	ctx.Step(`^"([^"]*)" should not have been deleted$`, shouldNotHaveBeenDeleted)
	ctx.Step(`^(\d+) file should have been uploaded$`, fileShouldHaveBeenUploaded)
}

func theReportsFolderContains(table *godog.Table) error {
	r := SharedReportsContext
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		r.service.files = append(r.service.files, &googledrive.File{
			Id:          fmt.Sprintf("file-%d", i),
			Name:        row.Cells[0].Value,
			CreatedTime: row.Cells[1].Value,
			MimeType:    row.Cells[2].Value,
			Size:        2048,
		})
	}
	return nil
}

func aLocalReportNamed(name string) error {
	r := SharedReportsContext
	r.localPath = filepath.Join(r.tempDir, name)
	return os.WriteFile(r.localPath, []byte(`{"predictions":[]}`), 0644)
}

func iListTheReports() error {
	r := SharedReportsContext
	lastRun.err = cmd.RunReportsListWithDependencies(context.Background(), r.client, reportsFolderID, lastRun.output)
	return nil
}

func iPruneReportsKeeping(keep int) error {
	r := SharedReportsContext
	lastRun.err = cmd.RunReportsPruneWithDependencies(context.Background(), r.client, reportsFolderID, keep, lastRun.output)
	return nil
}

func iUploadTheLocalReport() error {
	r := SharedReportsContext
	lastRun.err = cmd.RunReportsUploadWithDependencies(context.Background(), r.client, reportsFolderID, r.localPath, lastRun.output)
	return nil
}

func theReportListingShouldStartWith(name string) error {
	lines := strings.Split(strings.TrimSpace(lastRun.output.String()), "\n")
	if len(lines) < 2 {
		return fmt.Errorf("expected a header and at least one report, got:\n%s", lastRun.output.String())
	}
	if !strings.HasPrefix(lines[1], name) {
		return fmt.Errorf("expected first report %q, got %q", name, lines[1])
	}
	return nil
}

func shouldHaveBeenDeleted(name string) error {
	if !SharedReportsContext.service.deletedNames()[name] {
		return fmt.Errorf("expected %s to be deleted", name)
	}
	return nil
}

func shouldNotHaveBeenDeleted(name string) error {
	if SharedReportsContext.service.deletedNames()[name] {
		return fmt.Errorf("expected %s to be kept", name)
	}
	return nil
}

func fileShouldHaveBeenUploaded(n int) error {
	if got := len(SharedReportsContext.service.uploaded); got != n {
		return fmt.Errorf("expected %d upload(s), got %d", n, got)
	}
	return nil
}
