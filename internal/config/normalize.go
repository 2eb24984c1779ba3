package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"anonctl/internal/nodeconf"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDaemon()
	c.normalizeRPC()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		if value, ok := os.LookupEnv("ANON_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = strings.TrimSpace(value)
		} else {
			c.Paths.DataDir = nodeconf.PlatformLocator{}.DataDir()
		}
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.NodeConf) == "" {
		if value, ok := os.LookupEnv("ANON_NODE_CONF"); ok && strings.TrimSpace(value) != "" {
			c.Paths.NodeConf = strings.TrimSpace(value)
		} else {
			c.Paths.NodeConf = filepath.Join(c.Paths.DataDir, nodeconf.ConfFileName)
		}
	}
	if c.Paths.NodeConf, err = expandPath(c.Paths.NodeConf); err != nil {
		return fmt.Errorf("paths.node_conf: %w", err)
	}

	if strings.TrimSpace(c.Paths.RunDir) == "" {
		c.Paths.RunDir = defaultRunDir()
	}
	if c.Paths.RunDir, err = expandPath(c.Paths.RunDir); err != nil {
		return fmt.Errorf("paths.run_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(xdg.StateHome, "anonctl", "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// defaultRunDir follows the XDG runtime directory when the platform has one.
func defaultRunDir() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, "anonctl")
	}
	return filepath.Join(xdg.CacheHome, "anonctl", "run")
}

func (c *Config) normalizeDaemon() {
	c.Daemon.Binary = strings.TrimSpace(c.Daemon.Binary)
	if c.Daemon.Binary == "" {
		c.Daemon.Binary = defaultDaemonBinary
	}
	c.Daemon.CLIBinary = strings.TrimSpace(c.Daemon.CLIBinary)
	if c.Daemon.CLIBinary == "" {
		c.Daemon.CLIBinary = defaultCLIBinary
	}
	args := make([]string, 0, len(c.Daemon.ExtraArgs))
	for _, arg := range c.Daemon.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Daemon.ExtraArgs = args
}

func (c *Config) normalizeRPC() {
	c.RPC.Host = strings.TrimSpace(c.RPC.Host)
	if c.RPC.Host == "" {
		c.RPC.Host = defaultRPCHost
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
