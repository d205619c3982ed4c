package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	appclassify "action-classifier/application/classify"
	appdist "action-classifier/application/distribution"
	"action-classifier/domain/distribution"
	"action-classifier/domain/frame"
	"action-classifier/domain/prediction"
	"action-classifier/infrastructure/config"
	"action-classifier/infrastructure/ffmpeg"
	"action-classifier/infrastructure/filesystem"
	"action-classifier/infrastructure/imagedir"
	"action-classifier/infrastructure/logging"
	"action-classifier/infrastructure/metrics"
	"action-classifier/infrastructure/onnx"
	"action-classifier/infrastructure/opencv"
	"action-classifier/infrastructure/scaler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrSegmentsFailed is returned in strict mode when any segment could not be classified
var ErrSegmentsFailed = errors.New("one or more segments failed")

var (
	classifyInputPath   string
	classifySourceKind  string
	classifyTopK        int
	classifySegmentSize int
	classifyStrict      bool
	classifyPublish     bool
	classifyNoReport    bool
	classifyReportDir   string
	classifyMetricsAddr string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the actions in a video",
	Long: `Classify the actions in a video, segment by segment:
1. Count the frames and plan segments of 300 frames
2. Decode, resize and center crop each frame into the segment tensor
3. Run the model on every segment and keep its top labels
4. Print the predictions and write a JSON report
5. Upload the report to Google Drive (--publish)

Frames that cannot be decoded or are smaller than 224 pixels are skipped.
A segment whose inference fails contributes no predictions; use --strict to
turn that into a command failure.

The input may be a video file or a directory of extracted frames.

Example:
  action-classifier classify --input recording.mp4
  action-classifier classify --input frames/ --top-k 3 --strict
  action-classifier classify --input recording.mp4 --publish --metrics-addr :9100`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyInputPath, "input", "", "Path to the video file or frame directory (required)")
	classifyCmd.Flags().StringVar(&classifySourceKind, "source", "", "Frame source: ffmpeg, gocv or imagedir (defaults to config, imagedir for directories)")
	classifyCmd.Flags().IntVar(&classifyTopK, "top-k", 0, "Labels to keep per segment (defaults to config)")
	classifyCmd.Flags().IntVar(&classifySegmentSize, "segment-size", 0, "Frames per segment (defaults to config)")
	classifyCmd.Flags().BoolVar(&classifyStrict, "strict", false, "Fail if any segment could not be classified")
	classifyCmd.Flags().BoolVar(&classifyPublish, "publish", false, "Upload the report to the configured Google Drive folder")
	classifyCmd.Flags().BoolVar(&classifyNoReport, "no-report", false, "Do not write a JSON report")
	classifyCmd.Flags().StringVar(&classifyReportDir, "report-dir", "", "Directory for JSON reports (defaults to config)")
	classifyCmd.Flags().StringVar(&classifyMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	classifyCmd.MarkFlagRequired("input")
}

// ReportWriter persists a classification report and returns its path
type ReportWriter interface {
	Write(report appclassify.Report) (string, error)
}

// ReportPublisher uploads a written report
type ReportPublisher interface {
	UploadReport(ctx context.Context, reportPath string) (*distribution.UploadResult, error)
}

// ClassifyDependencies contains the collaborators of the classify command
type ClassifyDependencies struct {
	Source       frame.Source
	Classifier   prediction.Classifier
	Scaler       frame.Scaler
	Logger       *zap.Logger
	Observer     appclassify.Observer
	ReportWriter ReportWriter    // nil disables the report
	Publisher    ReportPublisher // nil when Drive is not configured
	Now          func() time.Time
}

// ClassifyInput contains the input parameters for the classify command
type ClassifyInput struct {
	SourceName   string
	Settings     appclassify.Settings
	ResizeTarget int
	Strict       bool
	Publish      bool
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.NewWriter(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, err := buildSource(ctx, cfg.Source, classifySourceKind, classifyInputPath)
	if err != nil {
		return err
	}
	defer source.Close()

	labels, err := onnx.LoadLabels(cfg.Model.LabelsPath)
	if err != nil {
		return err
	}
	classifier, err := onnx.NewClassifier(onnx.Config{
		ModelPath:         cfg.Model.Path,
		InputName:         cfg.Model.InputName,
		OutputName:        cfg.Model.OutputName,
		ApplySoftmax:      cfg.Model.ApplySoftmax,
		SharedLibraryPath: cfg.Model.SharedLibraryPath,
	}, labels)
	if err != nil {
		return err
	}
	defer classifier.Close()
	logger.Info("model loaded", zap.String("model", cfg.Model.Path), zap.Int("labels", len(classifier.Labels())))

	sc, err := scaler.New(cfg.Resize.Backend, cfg.Resize.Filter)
	if err != nil {
		return err
	}

	deps := ClassifyDependencies{
		Source:     source,
		Classifier: classifier,
		Scaler:     sc,
		Logger:     logger,
		Now:        time.Now,
	}

	if addr := firstNonEmpty(classifyMetricsAddr, cfg.Metrics.ListenAddress); addr != "" {
		reg := prometheus.NewRegistry()
		deps.Observer = metrics.NewRecorder(reg)
		srv := metrics.StartServer(addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if !classifyNoReport {
		deps.ReportWriter = filesystem.NewReportWriter(firstNonEmpty(classifyReportDir, cfg.Report.Directory))
	}

	if classifyPublish {
		client, err := newDriveClient(ctx, cfg.Google)
		if err != nil {
			return err
		}
		deps.Publisher = appdist.NewUploadService(client, cfg.Google.ReportsFolderID, cmd.OutOrStdout())
	}

	input := ClassifyInput{
		SourceName:   classifyInputPath,
		Settings:     settingsFromConfig(cfg.Pipeline, classifySegmentSize, classifyTopK),
		ResizeTarget: cfg.Pipeline.ResizeTarget,
		Strict:       classifyStrict,
		Publish:      classifyPublish,
	}

	_, err = RunClassifyWithDependencies(ctx, deps, input, cmd.OutOrStdout())
	return err
}

// RunClassifyWithDependencies runs the classify command with injected dependencies (for testing)
func RunClassifyWithDependencies(ctx context.Context, deps ClassifyDependencies, input ClassifyInput, output io.Writer) (*appclassify.Result, error) {
	if input.Publish && deps.ReportWriter == nil {
		return nil, fmt.Errorf("--publish needs a report; remove --no-report")
	}
	if input.Publish && deps.Publisher == nil {
		return nil, fmt.Errorf("--publish requested but Google Drive is not configured")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	resizer := frame.NewResizer(deps.Scaler, input.Settings.CropSize, input.ResizeTarget)

	opts := []appclassify.Option{appclassify.WithLogger(deps.Logger)}
	if deps.Observer != nil {
		opts = append(opts, appclassify.WithObserver(deps.Observer))
	}
	service := appclassify.NewService(resizer, deps.Classifier, input.Settings, output, opts...)

	fmt.Fprintf(output, "Input: %s\n", input.SourceName)
	result, err := service.Classify(ctx, deps.Source)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	fmt.Fprintln(output)
	printPredictions(output, result)

	if result.SourceErr != nil {
		fmt.Fprintf(output, "Warning: decoding stopped early: %v\n", result.SourceErr)
	}

	if deps.ReportWriter != nil {
		report := appclassify.NewReport(input.SourceName, result, deps.Now())
		path, err := deps.ReportWriter.Write(report)
		if err != nil {
			return result, err
		}
		fmt.Fprintf(output, "Report written to %s\n", path)

		if input.Publish {
			fmt.Fprintf(output, "Uploading report: %s...\n", filepath.Base(path))
			uploaded, err := deps.Publisher.UploadReport(ctx, path)
			if err != nil {
				return result, fmt.Errorf("report upload failed: %w", err)
			}
			fmt.Fprintf(output, "Report uploaded successfully!\n")
			fmt.Fprintf(output, "  File ID: %s\n", uploaded.FileID)
			if uploaded.WebViewLink != "" {
				fmt.Fprintf(output, "  Link: %s\n", uploaded.WebViewLink)
			}
		}
	}

	if failed := result.Failed(); input.Strict && len(failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d", ErrSegmentsFailed, len(failed), len(result.Segments))
	}

	return result, nil
}

func printPredictions(output io.Writer, result *appclassify.Result) {
	if len(result.Predictions) == 0 {
		fmt.Fprintln(output, "No predictions.")
		return
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEGMENT\tFRAMES\tLABEL\tPROBABILITY")
	for _, o := range result.Segments {
		for _, p := range o.Predictions {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\n", o.Index+1, o.Planned, p.Label, p.Probability)
		}
	}
	w.Flush()

	fmt.Fprintf(output, "\n%d prediction(s) from %d of %d segment(s)\n",
		len(result.Predictions), len(result.Segments)-len(result.Failed())-countSkipped(result), len(result.Segments))
}

func countSkipped(result *appclassify.Result) int {
	n := 0
	for _, o := range result.Segments {
		if o.Status == appclassify.SegmentSkipped {
			n++
		}
	}
	return n
}

// buildSource selects the frame source for the input path
func buildSource(ctx context.Context, cfg config.SourceConfig, override, path string) (frame.Source, error) {
	checker := filesystem.NewChecker()
	if !checker.Exists(path) {
		return nil, fmt.Errorf("input not found: %s", path)
	}

	kind := firstNonEmpty(override, cfg.Kind)
	if checker.IsDir(path) && override == "" {
		kind = "imagedir"
	}

	switch kind {
	case "imagedir":
		return imagedir.NewSource(path)
	case "gocv":
		return opencv.NewSource(path)
	case "ffmpeg", "":
		src := ffmpeg.NewSource(path,
			ffmpeg.WithFFmpegPath(cfg.FFmpegPath),
			ffmpeg.WithFFprobePath(cfg.FFprobePath),
		)
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := src.VerifyInstalled(verifyCtx); err != nil {
			return nil, fmt.Errorf("ffmpeg verification failed: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source %q", kind)
	}
}

func settingsFromConfig(p config.PipelineConfig, segmentSize, topK int) appclassify.Settings {
	s := appclassify.Settings{
		SegmentSize: p.SegmentSize,
		CropSize:    p.CropSize,
		TopK:        p.TopK,
	}
	if segmentSize > 0 {
		s.SegmentSize = segmentSize
	}
	if topK > 0 {
		s.TopK = topK
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
