package cmd

import (
	"fmt"
	"os"

	"action-classifier/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "action-classifier",
	Short: "Classify the actions in a video with a segment-based model",
	Long: `action-classifier splits a video into fixed-size segments of frames and runs
an action recognition model over each one:

  - Decode frames with ffmpeg, OpenCV or from a directory of images
  - Resize to a 256 pixel shorter side and center crop to 224x224
  - Normalize into [1, frames, 224, 224, 3] tensors, 300 frames per segment
  - Run the ONNX model and keep the top 5 labels of every segment
  - Write a JSON report and optionally upload it to Google Drive

Example:
  action-classifier classify --input recording.mp4`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	// A missing file falls back to defaults; a malformed one is reported by commands that need it
	cfg, cfgErr = config.LoadOrDefault(cfgFile)
	if cfgErr != nil {
		cfg = nil
	}
}

// GetConfig returns the loaded configuration without validating it,
// so invalid settings can still be inspected and repaired
func GetConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("failed to load %s: %w", cfgFile, cfgErr)
		}
		return nil, fmt.Errorf("configuration not loaded; run 'action-classifier setup' first")
	}
	return cfg, nil
}

// requireConfig returns the loaded configuration once it passes validation
func requireConfig() (*config.Config, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
