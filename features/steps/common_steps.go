//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// commandRun captures the output and error of the last command a scenario ran
type commandRun struct {
	output *bytes.Buffer
	err    error
}

// lastRun is reset before each scenario
var lastRun = &commandRun{output: &bytes.Buffer{}}

func InitializeCommonScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		lastRun = &commandRun{output: &bytes.Buffer{}}
		return c, nil
	})

	ctx.Step(`^the command should succeed$`, theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, theCommandShouldFailWith)
	ctx.Step(`^the output should contain "([^"]*)"$`, theOutputShouldContain)
	ctx.Step(`^the output should not contain "([^"]*)"$`, theOutputShouldNotContain)
}

func theCommandShouldSucceed() error {
	if lastRun.err != nil {
		return fmt.Errorf("expected success, got error: %v", lastRun.err)
	}
	return nil
}

func theCommandShouldFailWith(expected string) error {
	if lastRun.err == nil {
		return fmt.Errorf("expected error containing %q, got success", expected)
	}
	if !strings.Contains(lastRun.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, lastRun.err)
	}
	return nil
}

func theOutputShouldContain(expected string) error {
	if !strings.Contains(lastRun.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, lastRun.output.String())
	}
	return nil
}

func theOutputShouldNotContain(unexpected string) error {
	if strings.Contains(lastRun.output.String(), unexpected) {
		return fmt.Errorf("expected output not to contain %q, got:\n%s", unexpected, lastRun.output.String())
	}
	return nil
}
