package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "ACTION_CLASSIFIER_"

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envPrefix:"PIPELINE_"`
	Resize   ResizeConfig   `yaml:"resize" envPrefix:"RESIZE_"`
	Source   SourceConfig   `yaml:"source" envPrefix:"SOURCE_"`
	Model    ModelConfig    `yaml:"model" envPrefix:"MODEL_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Report   ReportConfig   `yaml:"report" envPrefix:"REPORT_"`
	Google   GoogleConfig   `yaml:"google" envPrefix:"GOOGLE_"`
}

// PipelineConfig contains the tensor and segment dimensions
type PipelineConfig struct {
	SegmentSize  int `yaml:"segment_size" env:"SEGMENT_SIZE"`
	CropSize     int `yaml:"crop_size" env:"CROP_SIZE"`
	ResizeTarget int `yaml:"resize_target" env:"RESIZE_TARGET"`
	TopK         int `yaml:"top_k" env:"TOP_K"`
}

// ResizeConfig selects the scaler backend
type ResizeConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Filter  string `yaml:"filter" env:"FILTER"`
}

// SourceConfig selects and configures the frame source
type SourceConfig struct {
	Kind        string `yaml:"kind" env:"KIND"`
	FFmpegPath  string `yaml:"ffmpeg_path" env:"FFMPEG_PATH"`
	FFprobePath string `yaml:"ffprobe_path" env:"FFPROBE_PATH"`
}

// ModelConfig contains the inference model settings
type ModelConfig struct {
	Path              string `yaml:"path" env:"PATH"`
	LabelsPath        string `yaml:"labels_path" env:"LABELS_PATH"`
	InputName         string `yaml:"input_name" env:"INPUT_NAME"`
	OutputName        string `yaml:"output_name" env:"OUTPUT_NAME"`
	ApplySoftmax      bool   `yaml:"apply_softmax" env:"APPLY_SOFTMAX"`
	SharedLibraryPath string `yaml:"shared_library_path" env:"SHARED_LIBRARY_PATH"`
}

// LoggingConfig contains structured logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig contains the Prometheus endpoint settings; an empty address disables it
type MetricsConfig struct {
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`
}

// ReportConfig contains report output settings
type ReportConfig struct {
	Directory string `yaml:"directory" env:"DIRECTORY"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	// TokenFile selects OAuth user authentication when set; otherwise CredentialsFile is a service account key
	TokenFile       string `yaml:"token_file" env:"TOKEN_FILE"`
	ReportsFolderID string `yaml:"reports_folder_id" env:"REPORTS_FOLDER_ID"`
}

// Defaults returns a config with every setting at its default value
func Defaults() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			SegmentSize:  300,
			CropSize:     224,
			ResizeTarget: 256,
			TopK:         5,
		},
		Resize: ResizeConfig{
			Backend: "nfnt",
			Filter:  "bilinear",
		},
		Source: SourceConfig{
			Kind:        "ffmpeg",
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Model: ModelConfig{
			Path:       "models/kinetics.onnx",
			LabelsPath: "models/labels.txt",
			InputName:  "Placeholder",
			OutputName: "Softmax",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Report: ReportConfig{
			Directory: "reports",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Settings missing from the file keep their defaults and environment
// variables prefixed with ACTION_CLASSIFIER_ override both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = Defaults()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any ACTION_CLASSIFIER_* environment variables
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// Validate checks the pipeline dimensions and enumerated settings
func (c *Config) Validate() error {
	p := c.Pipeline
	switch {
	case p.SegmentSize <= 0:
		return fmt.Errorf("%w: pipeline.segment_size must be positive", ErrInvalidConfig)
	case p.CropSize <= 0:
		return fmt.Errorf("%w: pipeline.crop_size must be positive", ErrInvalidConfig)
	case p.ResizeTarget < p.CropSize:
		return fmt.Errorf("%w: pipeline.resize_target (%d) is smaller than crop_size (%d)", ErrInvalidConfig, p.ResizeTarget, p.CropSize)
	case p.TopK <= 0:
		return fmt.Errorf("%w: pipeline.top_k must be positive", ErrInvalidConfig)
	}

	switch c.Resize.Backend {
	case "nfnt", "imaging":
	default:
		return fmt.Errorf("%w: unknown resize.backend %q", ErrInvalidConfig, c.Resize.Backend)
	}

	switch c.Source.Kind {
	case "ffmpeg", "gocv", "imagedir":
	default:
		return fmt.Errorf("%w: unknown source.kind %q", ErrInvalidConfig, c.Source.Kind)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
