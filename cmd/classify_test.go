package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	appclassify "action-classifier/application/classify"
	"action-classifier/domain/distribution"
	"action-classifier/domain/frame"
	"action-classifier/domain/prediction"
	"action-classifier/domain/tensor"
	"action-classifier/infrastructure/config"
)

// fakeSource yields uniform frames
type fakeSource struct {
	frames int
	pos    int
}

func (s *fakeSource) Count(ctx context.Context) (int, error) { return s.frames, nil }

func (s *fakeSource) Next(ctx context.Context) (*frame.Buffer, error) {
	if s.pos >= s.frames {
		return nil, io.EOF
	}
	s.pos++
	buf, err := frame.NewBuffer(12, 10, frame.FormatBGRA)
	if err != nil {
		return nil, err
	}
	buf.Fill(128, 128, 128)
	return buf, nil
}

func (s *fakeSource) Reset(ctx context.Context) error {
	s.pos = 0
	return nil
}

func (s *fakeSource) Close() error { return nil }

type fakeClassifier struct {
	failOn map[int]bool
	calls  int
}

func (c *fakeClassifier) Classify(ctx context.Context, t *tensor.Tensor) (prediction.Probabilities, error) {
	call := c.calls
	c.calls++
	if c.failOn[call] {
		return nil, errors.New("runtime error")
	}
	return prediction.Probabilities{"waving": 0.6, "running": 0.3, "jumping": 0.1}, nil
}

type copyScaler struct{}

func (copyScaler) Scale(buf *frame.Buffer, width, height int) (*frame.Buffer, error) {
	out, err := frame.NewBuffer(width, height, buf.Format)
	if err != nil {
		return nil, err
	}
	r, g, b := buf.RGB(0, 0)
	out.Fill(r, g, b)
	return out, nil
}

type mockReportWriter struct {
	reports    []appclassify.Report
	shouldFail bool
	failError  error
}

func (w *mockReportWriter) Write(report appclassify.Report) (string, error) {
	if w.shouldFail {
		return "", w.failError
	}
	w.reports = append(w.reports, report)
	return "/reports/" + report.FileName(), nil
}

type mockPublisher struct {
	paths      []string
	shouldFail bool
	failError  error
}

func (p *mockPublisher) UploadReport(ctx context.Context, path string) (*distribution.UploadResult, error) {
	if p.shouldFail {
		return nil, p.failError
	}
	p.paths = append(p.paths, path)
	return &distribution.UploadResult{FileID: "file-1", FileName: path, WebViewLink: "https://drive.example/file-1"}, nil
}

func testInput() ClassifyInput {
	return ClassifyInput{
		SourceName:   "clip.mp4",
		Settings:     appclassify.Settings{SegmentSize: 300, CropSize: 8, TopK: 2},
		ResizeTarget: 10,
	}
}

func testDeps(frames int, classifier *fakeClassifier) ClassifyDependencies {
	return ClassifyDependencies{
		Source:     &fakeSource{frames: frames},
		Classifier: classifier,
		Scaler:     copyScaler{},
		Now:        func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRunClassifyWithDependencies(t *testing.T) {
	deps := testDeps(650, &fakeClassifier{})
	writer := &mockReportWriter{}
	deps.ReportWriter = writer
	output := &bytes.Buffer{}

	result, err := RunClassifyWithDependencies(context.Background(), deps, testInput(), output)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Predictions) != 6 {
		t.Errorf("expected 6 predictions, got %d", len(result.Predictions))
	}
	if len(writer.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(writer.reports))
	}
	if writer.reports[0].Source != "clip.mp4" {
		t.Errorf("report source = %q", writer.reports[0].Source)
	}

	out := output.String()
	for _, want := range []string{"Input: clip.mp4", "waving", "6 prediction(s) from 3 of 3 segment(s)", "Report written to /reports/"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunClassifyWithDependencies_Strict(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		wantErr bool
	}{
		{name: "lenient", strict: false, wantErr: false},
		{name: "strict", strict: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps(650, &fakeClassifier{failOn: map[int]bool{1: true}})
			input := testInput()
			input.Strict = tt.strict

			result, err := RunClassifyWithDependencies(context.Background(), deps, input, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrSegmentsFailed) {
				t.Errorf("expected ErrSegmentsFailed, got %v", err)
			}
			if result == nil || len(result.Predictions) != 4 {
				t.Errorf("expected 4 predictions from the surviving segments")
			}
		})
	}
}

func TestRunClassifyWithDependencies_Publish(t *testing.T) {
	deps := testDeps(10, &fakeClassifier{})
	deps.ReportWriter = &mockReportWriter{}
	publisher := &mockPublisher{}
	deps.Publisher = publisher
	input := testInput()
	input.Publish = true
	output := &bytes.Buffer{}

	if _, err := RunClassifyWithDependencies(context.Background(), deps, input, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.paths) != 1 || !strings.HasPrefix(publisher.paths[0], "/reports/") {
		t.Errorf("unexpected uploads: %v", publisher.paths)
	}
	if !strings.Contains(output.String(), "Link: https://drive.example/file-1") {
		t.Errorf("output missing link:\n%s", output.String())
	}
}

func TestRunClassifyWithDependencies_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*ClassifyDependencies, *ClassifyInput)
		wantErr string
	}{
		{
			name: "publish without report",
			setup: func(d *ClassifyDependencies, in *ClassifyInput) {
				in.Publish = true
				d.Publisher = &mockPublisher{}
			},
			wantErr: "needs a report",
		},
		{
			name: "publish without drive",
			setup: func(d *ClassifyDependencies, in *ClassifyInput) {
				in.Publish = true
				d.ReportWriter = &mockReportWriter{}
			},
			wantErr: "not configured",
		},
		{
			name: "report write fails",
			setup: func(d *ClassifyDependencies, in *ClassifyInput) {
				d.ReportWriter = &mockReportWriter{shouldFail: true, failError: errors.New("disk full")}
			},
			wantErr: "disk full",
		},
		{
			name: "upload fails",
			setup: func(d *ClassifyDependencies, in *ClassifyInput) {
				in.Publish = true
				d.ReportWriter = &mockReportWriter{}
				d.Publisher = &mockPublisher{shouldFail: true, failError: errors.New("quota exceeded")}
			},
			wantErr: "report upload failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps(10, &fakeClassifier{})
			input := testInput()
			tt.setup(&deps, &input)

			_, err := RunClassifyWithDependencies(context.Background(), deps, input, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	s := settingsFromConfig(cfg.Pipeline, 0, 0)
	if s.SegmentSize != 300 || s.TopK != 5 || s.CropSize != 224 {
		t.Errorf("unexpected defaults: %+v", s)
	}

	s = settingsFromConfig(cfg.Pipeline, 64, 3)
	if s.SegmentSize != 64 || s.TopK != 3 {
		t.Errorf("flags not applied: %+v", s)
	}
}
