package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"action-classifier/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// ErrPromptCancelled is returned when the user aborts an interactive prompt
var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the model and label files, the frame
source, the resize backend, report output and optional Google Drive
publishing. Anything not asked keeps its default value.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return ErrPromptCancelled
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to action-classifier setup!")
	fmt.Fprintln(out)

	cfg := config.Defaults()

	if err := promptModel(prompter, cfg); err != nil {
		return err
	}
	if err := promptPipeline(prompter, cfg); err != nil {
		return err
	}
	if err := promptOutput(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptModel(prompter Prompter, cfg *config.Config) error {
	modelPath, err := prompter.Input("ONNX model path:", cfg.Model.Path)
	if err != nil {
		return ErrPromptCancelled
	}
	if modelPath == "" {
		return fmt.Errorf("model path is required")
	}
	cfg.Model.Path = modelPath

	labelsPath, err := prompter.Input("Labels file path:", cfg.Model.LabelsPath)
	if err != nil {
		return ErrPromptCancelled
	}
	if labelsPath == "" {
		return fmt.Errorf("labels path is required")
	}
	cfg.Model.LabelsPath = labelsPath

	softmax, err := prompter.Confirm("Does the model output raw logits (apply softmax)?", cfg.Model.ApplySoftmax)
	if err != nil {
		return ErrPromptCancelled
	}
	cfg.Model.ApplySoftmax = softmax

	return nil
}

func promptPipeline(prompter Prompter, cfg *config.Config) error {
	kind, err := prompter.Select("Frame source:", []string{"ffmpeg", "gocv", "imagedir"}, cfg.Source.Kind)
	if err != nil {
		return ErrPromptCancelled
	}
	cfg.Source.Kind = kind

	if kind == "ffmpeg" {
		ffmpegPath, err := prompter.Input("ffmpeg executable:", cfg.Source.FFmpegPath)
		if err != nil {
			return ErrPromptCancelled
		}
		cfg.Source.FFmpegPath = ffmpegPath

		ffprobePath, err := prompter.Input("ffprobe executable:", cfg.Source.FFprobePath)
		if err != nil {
			return ErrPromptCancelled
		}
		cfg.Source.FFprobePath = ffprobePath
	}

	backend, err := prompter.Select("Resize backend:", []string{"nfnt", "imaging"}, cfg.Resize.Backend)
	if err != nil {
		return ErrPromptCancelled
	}
	cfg.Resize.Backend = backend

	return nil
}

func promptOutput(prompter Prompter, cfg *config.Config) error {
	reportDir, err := prompter.Input("Report directory:", cfg.Report.Directory)
	if err != nil {
		return ErrPromptCancelled
	}
	cfg.Report.Directory = reportDir

	metricsAddr, err := prompter.Input("Metrics listen address (empty to disable):", cfg.Metrics.ListenAddress)
	if err != nil {
		return ErrPromptCancelled
	}
	cfg.Metrics.ListenAddress = metricsAddr

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	publish, err := prompter.Confirm("Publish reports to Google Drive?", false)
	if err != nil {
		return ErrPromptCancelled
	}
	if !publish {
		return nil
	}

	credentials, err := prompter.Input("Google credentials file:", "credentials.json")
	if err != nil {
		return ErrPromptCancelled
	}
	if credentials == "" {
		return fmt.Errorf("credentials file is required")
	}
	cfg.Google.CredentialsFile = credentials

	useOAuth, err := prompter.Confirm("Authenticate as a user (OAuth) instead of a service account?", false)
	if err != nil {
		return ErrPromptCancelled
	}
	if useOAuth {
		token, err := prompter.Input("OAuth token file:", "token.json")
		if err != nil {
			return ErrPromptCancelled
		}
		cfg.Google.TokenFile = token
	}

	folderID, err := prompter.Input("Drive folder ID for reports:", "")
	if err != nil {
		return ErrPromptCancelled
	}
	if folderID == "" {
		return fmt.Errorf("reports folder ID is required")
	}
	cfg.Google.ReportsFolderID = folderID

	return nil
}
