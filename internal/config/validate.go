package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateRPC(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.NodeConf) == "" {
		return errors.New("paths.node_conf must be set")
	}
	if strings.TrimSpace(c.Paths.RunDir) == "" {
		return errors.New("paths.run_dir must be set")
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if strings.TrimSpace(c.Daemon.Binary) == "" {
		return errors.New("daemon.binary must be set")
	}
	for _, arg := range c.Daemon.ExtraArgs {
		if !strings.HasPrefix(arg, "-") {
			return fmt.Errorf("daemon.extra_args: %q is not a flag (expected -key or -key=value)", arg)
		}
		if strings.HasPrefix(arg, "-rpcuser") || strings.HasPrefix(arg, "-rpcpassword") {
			return fmt.Errorf("daemon.extra_args: %q would expose RPC credentials on the process command line", arg)
		}
	}
	return ensurePositiveMap(map[string]int{
		"daemon.start_timeout": c.Daemon.StartTimeout,
		"daemon.stop_grace":    c.Daemon.StopGrace,
	})
}

func (c *Config) validateRPC() error {
	for key, port := range map[string]int{
		"rpc.mainnet_port": c.RPC.MainnetPort,
		"rpc.testnet_port": c.RPC.TestnetPort,
	} {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%s must be between 1 and 65535", key)
		}
	}
	if c.RPC.TimeoutSeconds <= 0 {
		return errors.New("rpc.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
