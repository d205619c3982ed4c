//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"action-classifier/cmd"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing.
// Answers are consumed in prompt order; confirmations accept "y" or "n".
type MockPrompter struct {
	answers []string
	index   int
}

func NewMockPrompter(answers []string) *MockPrompter {
	return &MockPrompter{answers: answers}
}

func (m *MockPrompter) next(message string) (string, error) {
	if m.index >= len(m.answers) {
		return "", fmt.Errorf("no more responses available for prompt: %s", message)
	}
	answer := m.answers[m.index]
	m.index++
	return answer, nil
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	return m.next(message)
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	answer, err := m.next(message)
	if err != nil {
		return false, err
	}
	return strings.ToLower(answer) == "y", nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	answer, err := m.next(message)
	if err != nil {
		return "", err
	}
	for _, o := range options {
		if o == answer {
			return answer, nil
		}
	}
	return "", fmt.Errorf("%q is not one of %v", answer, options)
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the setup config should have "([^"]*)" equal to "([^"]*)"$`, testCtx.theSetupConfigShouldHave)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	// Setup creates the config directory itself
	_, err := os.Stat(s.configPath)
	if err == nil {
		return fmt.Errorf("config file unexpectedly exists at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `model:
  path: "models/original.onnx"
  labels_path: "models/original.txt"
report:
  directory: "/original/reports"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	prompter := NewMockPrompter(parseAnswerTable(table))

	lastRun.err = cmd.RunSetupWithPrompter(prompter, s.configPath, lastRun.output)
	if lastRun.err != nil {
		return fmt.Errorf("setup command failed: %w", lastRun.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	prompter := NewMockPrompter([]string{confirmation})

	lastRun.err = cmd.RunSetupWithPrompter(prompter, s.configPath, lastRun.output)
	if strings.ToLower(confirmation) != "y" {
		s.setupCancelled = true
	}
	return nil
}

// parseAnswerTable returns the value column in row order, skipping the header
func parseAnswerTable(table *godog.Table) []string {
	var answers []string
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		value := ""
		if len(row.Cells) > 1 {
			value = row.Cells[1].Value
		}
		answers = append(answers, value)
	}
	return answers
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theSetupConfigShouldHave(key, expected string) error {
	return configFileHas(s.configPath, key, expected)
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	if lastRun.err != nil {
		return fmt.Errorf("expected clean cancellation, got error: %v", lastRun.err)
	}
	if !strings.Contains(lastRun.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected cancellation message, got:\n%s", lastRun.output.String())
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config file was modified")
	}
	return nil
}
