//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	appclassify "action-classifier/application/classify"
	appdist "action-classifier/application/distribution"
	"action-classifier/cmd"
	"action-classifier/domain/frame"
	"action-classifier/domain/prediction"
	"action-classifier/domain/tensor"
	"action-classifier/infrastructure/drive"
	"action-classifier/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// syntheticSource yields a fixed number of uniform frames
type syntheticSource struct {
	frames int
	pos    int
}

func (s *syntheticSource) Count(ctx context.Context) (int, error) { return s.frames, nil }

func (s *syntheticSource) Next(ctx context.Context) (*frame.Buffer, error) {
	if s.pos >= s.frames {
		return nil, io.EOF
	}
	s.pos++
	buf, err := frame.NewBuffer(16, 12, frame.FormatBGRA)
	if err != nil {
		return nil, err
	}
	buf.Fill(uint8(s.pos%256), 64, 32)
	return buf, nil
}

func (s *syntheticSource) Reset(ctx context.Context) error {
	s.pos = 0
	return nil
}

func (s *syntheticSource) Close() error { return nil }

// rankedClassifier scores labels in declaration order and records each call
type rankedClassifier struct {
	labels []string
	failOn map[int]bool
	frames []int
}

func (c *rankedClassifier) Classify(ctx context.Context, t *tensor.Tensor) (prediction.Probabilities, error) {
	call := len(c.frames)
	c.frames = append(c.frames, t.Frames())
	if c.failOn[call] {
		return nil, errors.New("inference runtime error")
	}

	scores := make([]float32, len(c.labels))
	for i := range c.labels {
		scores[i] = float32(len(c.labels) - i)
	}
	return prediction.FromScores(c.labels, scores, true)
}

// stretchScaler resamples by nearest neighbour
type stretchScaler struct{}

func (stretchScaler) Scale(buf *frame.Buffer, width, height int) (*frame.Buffer, error) {
	out, err := frame.NewBuffer(width, height, buf.Format)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := buf.RGB(x*buf.Width/width, y*buf.Height/height)
			out.SetRGB(x, y, r, g, b)
		}
	}
	return out, nil
}

type classifyContext struct {
	labels     []string
	frames     int
	failOn     map[int]bool
	classifier *rankedClassifier
	reportDir  string
	drive      *mockDriveService
	folderID   string
	result     *appclassify.Result
}

// SharedClassifyContext is reset before each scenario via Before hook
var SharedClassifyContext *classifyContext

func InitializeClassifyScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		reportDir, err := os.MkdirTemp("", "classify-test-*")
		if err != nil {
			return c, err
		}
		SharedClassifyContext = &classifyContext{
			failOn:    make(map[int]bool),
			reportDir: reportDir,
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedClassifyContext != nil && SharedClassifyContext.reportDir != "" {
			os.RemoveAll(SharedClassifyContext.reportDir)
		}
		SharedClassifyContext = nil
		return c, nil
	})

	ctx.Step(`^the model knows the labels "([^"]*)"$`, theModelKnowsTheLabels)
	ctx.Step(`^a video with (\d+) frames$`, aVideoWithFrames)
	ctx.Step(`^inference fails for segment (\d+)$`, inferenceFailsForSegment)
	ctx.Step(`^Google Drive publishing is configured$`, googleDrivePublishingIsConfigured)
	ctx.Step(`^I classify the video$`, iClassifyTheVideo)
	ctx.Step(`^I classify the video in strict mode$`, iClassifyTheVideoInStrictMode)
	ctx.Step(`^I classify the video with top-k (\d+)$`, iClassifyTheVideoWithTopK)
	ctx.Step(`^I classify the video and publish the report$`, iClassifyTheVideoAndPublishTheReport)
	ctx.Step(`^the classifier should have been called (\d+) times$`, theClassifierShouldHaveBeenCalledTimes)
	ctx.Step(`^the segments should have (\d+), (\d+) and (\d+) frames$`, theSegmentsShouldHaveFrames)
	ctx.Step(`^there should be (\d+) predictions$`, thereShouldBePredictions)
	ctx.Step(`^the first prediction should be "([^"]*)"$`, theFirstPredictionShouldBe)
	ctx.Step(`^segment (\d+) should be marked "([^"]*)"$`, segmentShouldBeMarked)
	ctx.Step(`^a report should have been written$`, aReportShouldHaveBeenWritten)
	ctx.Step(`^the report should have been uploaded$`, theReportShouldHaveBeenUploaded)
}

func theModelKnowsTheLabels(list string) error {
	var labels []string
	for _, l := range strings.Split(list, ",") {
		labels = append(labels, strings.TrimSpace(l))
	}
	SharedClassifyContext.labels = labels
	return nil
}

func aVideoWithFrames(frames int) error {
	SharedClassifyContext.frames = frames
	return nil
}

func inferenceFailsForSegment(n int) error {
	SharedClassifyContext.failOn[n-1] = true
	return nil
}

func googleDrivePublishingIsConfigured() error {
	SharedClassifyContext.drive = &mockDriveService{}
	SharedClassifyContext.folderID = "reports-folder"
	return nil
}

func runClassify(strict, publish bool, topK int) error {
	c := SharedClassifyContext
	c.classifier = &rankedClassifier{labels: c.labels, failOn: c.failOn}

	deps := cmd.ClassifyDependencies{
		Source:       &syntheticSource{frames: c.frames},
		Classifier:   c.classifier,
		Scaler:       stretchScaler{},
		ReportWriter: filesystem.NewReportWriter(c.reportDir),
		Now:          func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	if c.drive != nil {
		client, err := drive.NewClient(context.Background(), "", drive.WithDriveService(c.drive))
		if err != nil {
			return err
		}
		deps.Publisher = appdist.NewUploadService(client, c.folderID, lastRun.output)
	}

	input := cmd.ClassifyInput{
		SourceName:   "clip.mp4",
		Settings:     appclassify.Settings{SegmentSize: 300, CropSize: 8, TopK: topK},
		ResizeTarget: 10,
		Strict:       strict,
		Publish:      publish,
	}

	c.result, lastRun.err = cmd.RunClassifyWithDependencies(context.Background(), deps, input, lastRun.output)
	return nil
}

func iClassifyTheVideo() error {
	if err := runClassify(false, false, prediction.DefaultTopK); err != nil {
		return err
	}
	return theCommandShouldSucceed()
}

func iClassifyTheVideoInStrictMode() error {
	return runClassify(true, false, prediction.DefaultTopK)
}

func iClassifyTheVideoWithTopK(k int) error {
	if err := runClassify(false, false, k); err != nil {
		return err
	}
	return theCommandShouldSucceed()
}

func iClassifyTheVideoAndPublishTheReport() error {
	if err := runClassify(false, true, prediction.DefaultTopK); err != nil {
		return err
	}
	return theCommandShouldSucceed()
}

func theClassifierShouldHaveBeenCalledTimes(n int) error {
	if got := len(SharedClassifyContext.classifier.frames); got != n {
		return fmt.Errorf("expected %d classifier calls, got %d", n, got)
	}
	return nil
}

func theSegmentsShouldHaveFrames(a, b, c int) error {
	want := []int{a, b, c}
	got := SharedClassifyContext.classifier.frames
	if fmt.Sprint(got) != fmt.Sprint(want) {
		return fmt.Errorf("expected segment frame counts %v, got %v", want, got)
	}
	return nil
}

func thereShouldBePredictions(n int) error {
	result := SharedClassifyContext.result
	if result == nil {
		return fmt.Errorf("no classification result")
	}
	if got := len(result.Predictions); got != n {
		return fmt.Errorf("expected %d predictions, got %d", n, got)
	}
	return nil
}

func theFirstPredictionShouldBe(label string) error {
	result := SharedClassifyContext.result
	if result == nil || len(result.Predictions) == 0 {
		return fmt.Errorf("no predictions")
	}
	if got := result.Predictions[0].Label; got != label {
		return fmt.Errorf("expected first prediction %q, got %q", label, got)
	}
	return nil
}

func segmentShouldBeMarked(n int, status string) error {
	result := SharedClassifyContext.result
	if result == nil || n < 1 || n > len(result.Segments) {
		return fmt.Errorf("segment %d not found", n)
	}
	if got := string(result.Segments[n-1].Status); got != status {
		return fmt.Errorf("expected segment %d to be %q, got %q", n, status, got)
	}
	return nil
}

func aReportShouldHaveBeenWritten() error {
	entries, err := os.ReadDir(SharedClassifyContext.reportDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			return nil
		}
	}
	return fmt.Errorf("no report found in %s", SharedClassifyContext.reportDir)
}

func theReportShouldHaveBeenUploaded() error {
	uploaded := SharedClassifyContext.drive.uploaded
	if len(uploaded) != 1 {
		return fmt.Errorf("expected 1 upload, got %d", len(uploaded))
	}
	if !strings.HasSuffix(uploaded[0].Name, ".json") {
		return fmt.Errorf("expected a JSON report, got %s", uploaded[0].Name)
	}
	return nil
}
