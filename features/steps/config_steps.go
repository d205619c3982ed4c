//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"action-classifier/cmd"
	"action-classifier/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	config     *config.Config
}

var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a config file with default settings$`, testCtx.aConfigFileWithDefaultSettings)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^I run config show$`, testCtx.iRunConfigShow)
	ctx.Step(`^the saved config should have "([^"]*)" equal to "([^"]*)"$`, testCtx.theSavedConfigShouldHave)
}

func (c *configContext) aConfigFileWithDefaultSettings() error {
	if err := config.Save(config.Defaults(), c.configPath); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

func (c *configContext) iRunConfigGet(key string) error {
	lastRun.err = cmd.RunConfigGetWithDependencies(c.config, c.configPath, key, lastRun.output)
	return nil
}

func (c *configContext) iRunConfigSet(key, value string) error {
	lastRun.err = cmd.RunConfigSetWithDependencies(c.config, c.configPath, key, value, lastRun.output)
	return nil
}

func (c *configContext) iRunConfigList() error {
	lastRun.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, lastRun.output)
	return nil
}

func (c *configContext) iRunConfigShow() error {
	lastRun.err = cmd.RunConfigShowWithDependencies(c.config, lastRun.output)
	return nil
}

func (c *configContext) theSavedConfigShouldHave(key, expected string) error {
	return configFileHas(c.configPath, key, expected)
}

// configFileHas reloads path and compares a single setting
func configFileHas(path, key, expected string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	got, err := config.NewConfigManager(cfg, path).Get(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("expected %s = %q, got %q", key, expected, got)
	}
	return nil
}
