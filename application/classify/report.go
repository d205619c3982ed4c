package classify

import (
	"time"

	"action-classifier/domain/prediction"
)

// Report is the serializable form of a Result
type Report struct {
	RunID       string                 `json:"run_id"`
	Source      string                 `json:"source"`
	CreatedAt   time.Time              `json:"created_at"`
	TotalFrames int                    `json:"total_frames"`
	DurationMS  int64                  `json:"duration_ms"`
	Segments    []SegmentReport        `json:"segments"`
	Predictions prediction.Predictions `json:"predictions"`
	SourceError string                 `json:"source_error,omitempty"`
}

// SegmentReport is the serializable form of a SegmentOutcome
type SegmentReport struct {
	Index         int                    `json:"index"`
	Start         int                    `json:"start"`
	PlannedFrames int                    `json:"planned_frames"`
	FramesWritten int                    `json:"frames_written"`
	Dropped       map[DropReason]int     `json:"dropped,omitempty"`
	Status        SegmentStatus          `json:"status"`
	Error         string                 `json:"error,omitempty"`
	InferenceMS   int64                  `json:"inference_ms"`
	Predictions   prediction.Predictions `json:"predictions"`
}

// NewReport builds a report for a finished run
func NewReport(source string, r *Result, createdAt time.Time) Report {
	report := Report{
		RunID:       r.RunID,
		Source:      source,
		CreatedAt:   createdAt.UTC(),
		TotalFrames: r.TotalFrames,
		DurationMS:  r.Duration.Milliseconds(),
		Segments:    make([]SegmentReport, 0, len(r.Segments)),
		Predictions: r.Predictions,
	}
	if report.Predictions == nil {
		report.Predictions = prediction.Predictions{}
	}
	if r.SourceErr != nil {
		report.SourceError = r.SourceErr.Error()
	}

	for _, o := range r.Segments {
		sr := SegmentReport{
			Index:         o.Index,
			Start:         o.Planned.Start,
			PlannedFrames: o.Planned.Count,
			FramesWritten: o.FramesWritten,
			Status:        o.Status,
			InferenceMS:   o.InferenceTime.Milliseconds(),
			Predictions:   o.Predictions,
		}
		if sr.Predictions == nil {
			sr.Predictions = prediction.Predictions{}
		}
		if len(o.Dropped) > 0 {
			sr.Dropped = o.Dropped
		}
		if o.Err != nil {
			sr.Error = o.Err.Error()
		}
		report.Segments = append(report.Segments, sr)
	}

	return report
}

// FileName returns the report's file name: <run id>.json
func (r Report) FileName() string {
	return r.RunID + ".json"
}
