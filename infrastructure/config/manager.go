package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// ConfigManager reads and updates individual settings by dotted key (e.g. "pipeline.top_k")
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Setting represents a single key/value entry
type Setting struct {
	Key   string
	Value string
}

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringField(ptr func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

func intField(ptr func(c *Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, v)
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(ptr func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"pipeline.segment_size":     intField(func(c *Config) *int { return &c.Pipeline.SegmentSize }),
	"pipeline.crop_size":        intField(func(c *Config) *int { return &c.Pipeline.CropSize }),
	"pipeline.resize_target":    intField(func(c *Config) *int { return &c.Pipeline.ResizeTarget }),
	"pipeline.top_k":            intField(func(c *Config) *int { return &c.Pipeline.TopK }),
	"resize.backend":            stringField(func(c *Config) *string { return &c.Resize.Backend }),
	"resize.filter":             stringField(func(c *Config) *string { return &c.Resize.Filter }),
	"source.kind":               stringField(func(c *Config) *string { return &c.Source.Kind }),
	"source.ffmpeg_path":        stringField(func(c *Config) *string { return &c.Source.FFmpegPath }),
	"source.ffprobe_path":       stringField(func(c *Config) *string { return &c.Source.FFprobePath }),
	"model.path":                stringField(func(c *Config) *string { return &c.Model.Path }),
	"model.labels_path":         stringField(func(c *Config) *string { return &c.Model.LabelsPath }),
	"model.input_name":          stringField(func(c *Config) *string { return &c.Model.InputName }),
	"model.output_name":         stringField(func(c *Config) *string { return &c.Model.OutputName }),
	"model.apply_softmax":       boolField(func(c *Config) *bool { return &c.Model.ApplySoftmax }),
	"model.shared_library_path": stringField(func(c *Config) *string { return &c.Model.SharedLibraryPath }),
	"logging.level":             stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":            stringField(func(c *Config) *string { return &c.Logging.Format }),
	"metrics.listen_address":    stringField(func(c *Config) *string { return &c.Metrics.ListenAddress }),
	"report.directory":          stringField(func(c *Config) *string { return &c.Report.Directory }),
	"google.credentials_file":   stringField(func(c *Config) *string { return &c.Google.CredentialsFile }),
	"google.reports_folder_id":  stringField(func(c *Config) *string { return &c.Google.ReportsFolderID }),
	"google.token_file":         stringField(func(c *Config) *string { return &c.Google.TokenFile }),
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value for key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[normalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// List returns all settings sorted by key
func (m *ConfigManager) List() []Setting {
	keys := Keys()
	result := make([]Setting, 0, len(keys))
	for _, k := range keys {
		result = append(result, Setting{Key: k, Value: fields[k].get(m.config)})
	}
	return result
}

// Set updates key, validates the resulting config and saves it.
// The in-memory config is left unchanged when validation fails.
func (m *ConfigManager) Set(key, value string) error {
	key = normalizeKey(key)
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	updated := *m.config
	if err := f.set(&updated, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

// SuggestSetCommand returns the command to change a setting
func SuggestSetCommand(key string) string {
	return fmt.Sprintf(`action-classifier config set %s <value>`, key)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
