package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"anonctl/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	NodeConf string `toml:"node_conf"`
	DataDir  string `toml:"data_dir"`
	RunDir   string `toml:"run_dir"`
	LogDir   string `toml:"log_dir"`
}

// Daemon contains settings for launching and stopping anond.
type Daemon struct {
	Binary       string   `toml:"binary"`
	CLIBinary    string   `toml:"cli_binary"`
	ExtraArgs    []string `toml:"extra_args"`
	StartTimeout int      `toml:"start_timeout"`
	StopGrace    int      `toml:"stop_grace"`
}

// RPC contains connection defaults used when the node config does not set them.
type RPC struct {
	Host           string `toml:"host"`
	MainnetPort    int    `toml:"mainnet_port"`
	TestnetPort    int    `toml:"testnet_port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for anonctl.
//
// Configuration sections:
//   - Paths: node config file, node data dir, runtime and log directories
//   - Daemon: anond binary, extra launch flags, start/stop timing
//   - RPC: host and per-network port defaults, request timeout
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Daemon  Daemon  `toml:"daemon"`
	RPC     RPC     `toml:"rpc"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/anonctl/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("anonctl.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories anonctl writes to. The node data
// directory belongs to the daemon and is left alone.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.RunDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := fileutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PIDFile returns the path anonctl records a launched daemon's pid in.
func (c *Config) PIDFile() string {
	return filepath.Join(c.Paths.RunDir, "anond.pid")
}

// LockFile returns the path of the lock held while launching the daemon.
func (c *Config) LockFile() string {
	return filepath.Join(c.Paths.RunDir, "anond.lock")
}

// DaemonLogFile returns the file a launched daemon's output is appended to.
func (c *Config) DaemonLogFile() string {
	return filepath.Join(c.Paths.LogDir, "anond.log")
}

// StartTimeout returns how long to wait for a launched daemon to answer RPC.
func (c *Config) StartTimeout() time.Duration {
	return time.Duration(c.Daemon.StartTimeout) * time.Second
}

// StopGrace returns how long a stop request may take before the process is signalled.
func (c *Config) StopGrace() time.Duration {
	return time.Duration(c.Daemon.StopGrace) * time.Second
}

// RPCTimeout returns the per-request RPC timeout.
func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPC.TimeoutSeconds) * time.Second
}

// RPCPortFor returns the default RPC port for the selected network.
func (c *Config) RPCPortFor(testnet bool) int {
	if testnet {
		return c.RPC.TestnetPort
	}
	return c.RPC.MainnetPort
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
