package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"anonctl/internal/config"
	"anonctl/internal/daemonctl"
	"anonctl/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

// bind tags the command's context with a fresh correlation id so every log
// line from one invocation can be grouped.
func (c *commandContext) bind(cmd *cobra.Command) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if _, ok := logging.CorrelationIDFromContext(parent); ok {
		return
	}
	cmd.SetContext(logging.WithCorrelationID(parent, logging.NewCorrelationID()))
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

// logger returns the invocation logger. Construction failures fall back to a
// console logger on stderr so commands still report problems.
func (c *commandContext) logger(ctx context.Context) *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue(), c.logLevel())
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: c.logLevel()})
			logger.Warn("logger setup failed; using stderr", logging.Error(err))
		}
		c.log = logger
	})
	return logging.WithContext(ctx, c.log)
}

func (c *commandContext) controller(ctx context.Context) *daemonctl.Controller {
	return daemonctl.New(c.configValue(), c.logger(ctx))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
