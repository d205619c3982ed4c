package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoVideoStream is returned when the input has no decodable video stream
var ErrNoVideoStream = errors.New("no video stream")

// StreamInfo describes the first video stream of an input
type StreamInfo struct {
	Width  int
	Height int
	// Frames is the number of video packets read by ffprobe, or -1 when it could not count them
	Frames int
}

type probeOutput struct {
	Streams []struct {
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		NbReadPackets string `json:"nb_read_packets"`
		NbFrames      string `json:"nb_frames"`
	} `json:"streams"`
}

// Prober reads stream metadata with ffprobe
type Prober struct {
	ffprobePath string
	runner      CommandRunner
}

// NewProber creates a prober using the given executable and runner
func NewProber(ffprobePath string, runner CommandRunner) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if runner == nil {
		runner = &ExecCommandRunner{}
	}
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

// Probe reads the dimensions and packet count of the first video stream.
// Counting packets demuxes the whole file, which is exact for constant and variable frame rate input.
func (p *Prober) Probe(ctx context.Context, path string) (StreamInfo, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,nb_read_packets,nb_frames",
		"-of", "json",
		path,
	}

	out, err := p.runner.Output(ctx, p.ffprobePath, args...)
	if err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbe(out)
}

func parseProbe(data []byte) (StreamInfo, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return StreamInfo{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(po.Streams) == 0 {
		return StreamInfo{}, ErrNoVideoStream
	}

	s := po.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return StreamInfo{}, fmt.Errorf("%w: invalid dimensions %dx%d", ErrNoVideoStream, s.Width, s.Height)
	}

	info := StreamInfo{Width: s.Width, Height: s.Height, Frames: -1}
	for _, v := range []string{s.NbReadPackets, s.NbFrames} {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			info.Frames = n
			break
		}
	}

	return info, nil
}
