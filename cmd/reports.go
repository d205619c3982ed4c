package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	appdist "action-classifier/application/distribution"
	"action-classifier/domain/distribution"
	"action-classifier/infrastructure/config"
	"action-classifier/infrastructure/drive"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage classification reports in Google Drive",
	Long: `List, upload and prune JSON reports in the configured Google Drive folder.

Examples:
  action-classifier reports list
  action-classifier reports upload reports/5f1c.json
  action-classifier reports prune --keep 20`,
}

var reportsPruneKeep int

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports in Google Drive, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, folderID, err := driveFromConfig(cmd.Context())
		if err != nil {
			return err
		}
		return RunReportsListWithDependencies(cmd.Context(), client, folderID, cmd.OutOrStdout())
	},
}

var reportsUploadCmd = &cobra.Command{
	Use:   "upload <report.json>",
	Short: "Upload a report to Google Drive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, folderID, err := driveFromConfig(cmd.Context())
		if err != nil {
			return err
		}
		return RunReportsUploadWithDependencies(cmd.Context(), client, folderID, args[0], cmd.OutOrStdout())
	},
}

var reportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest reports in Google Drive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, folderID, err := driveFromConfig(cmd.Context())
		if err != nil {
			return err
		}
		return RunReportsPruneWithDependencies(cmd.Context(), client, folderID, reportsPruneKeep, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsUploadCmd)
	reportsCmd.AddCommand(reportsPruneCmd)
	reportsPruneCmd.Flags().IntVar(&reportsPruneKeep, "keep", 50, "Number of newest reports to keep")
}

// newDriveClient creates a Drive client, using OAuth when a token file is configured
// and a service account key otherwise
func newDriveClient(ctx context.Context, g config.GoogleConfig) (*drive.Client, error) {
	if g.CredentialsFile == "" {
		return nil, fmt.Errorf("google.credentials_file is not configured")
	}
	if g.TokenFile != "" {
		client, err := drive.NewClientWithOAuth(ctx, g.CredentialsFile, g.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
		}
		return client, nil
	}
	client, err := drive.NewClient(ctx, g.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
	}
	return client, nil
}

func driveFromConfig(ctx context.Context) (*drive.Client, string, error) {
	cfg, err := requireConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg.Google.ReportsFolderID == "" {
		return nil, "", fmt.Errorf("google.reports_folder_id is not configured")
	}
	client, err := newDriveClient(ctx, cfg.Google)
	if err != nil {
		return nil, "", err
	}
	return client, cfg.Google.ReportsFolderID, nil
}

// RunReportsListWithDependencies runs the list command with injected dependencies (for testing)
func RunReportsListWithDependencies(ctx context.Context, client distribution.DriveClient, folderID string, out io.Writer) error {
	reports, err := appdist.NewCleanupService(client, folderID).ListReports(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED\tSIZE")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.Name, r.CreatedTime.Format("2006-01-02 15:04"), r.Size)
	}
	return w.Flush()
}

// RunReportsUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunReportsUploadWithDependencies(ctx context.Context, client distribution.DriveClient, folderID, path string, out io.Writer) error {
	result, err := appdist.NewUploadService(client, folderID, out).UploadReport(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Report uploaded successfully!\n")
	fmt.Fprintf(out, "  File ID: %s\n", result.FileID)
	if result.WebViewLink != "" {
		fmt.Fprintf(out, "  Link: %s\n", result.WebViewLink)
	}
	return nil
}

// RunReportsPruneWithDependencies runs the prune command with injected dependencies (for testing)
func RunReportsPruneWithDependencies(ctx context.Context, client distribution.DriveClient, folderID string, keep int, out io.Writer) error {
	result, err := appdist.NewCleanupService(client, folderID).PruneReports(ctx, keep)
	if result != nil {
		for _, f := range result.DeletedFiles {
			fmt.Fprintf(out, "Deleted %s\n", f.Name)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Kept %d report(s), deleted %d\n", result.Kept, len(result.DeletedFiles))
	return nil
}
