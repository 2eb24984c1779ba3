package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"anonctl/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths live under a unique temp
// directory. Run and log directories exist; the data directory and node
// config do not unless an option creates them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.NodeConf = filepath.Join(base, "data", "anon.conf")
	cfgVal.Paths.RunDir = filepath.Join(base, "run")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Daemon.StartTimeout = 5
	cfgVal.Daemon.StopGrace = 1
	cfgVal.RPC.TimeoutSeconds = 2

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	if err := cfgVal.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithNodeConf writes body as the node config and creates the data directory.
func WithNodeConf(body string) ConfigOption {
	return func(b *configBuilder) {
		WriteNodeConf(b.t, b.cfg.Paths.NodeConf, body)
	}
}

// WithRPCEndpoint points both network ports at host:port.
func WithRPCEndpoint(host string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.RPC.Host = host
		b.cfg.RPC.MainnetPort = port
		b.cfg.RPC.TestnetPort = port
	}
}

// WithDaemonScript installs an executable shell script as the daemon binary.
func WithDaemonScript(script string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.Binary = writeExecutable(b.t, filepath.Join(b.baseDir, "bin"), "anond", script)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, anond and anon-cli are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"anond", "anon-cli"}
		}
		binDir := filepath.Join(b.baseDir, "stubs")
		for _, name := range names {
			writeExecutable(b.t, binDir, name, "#!/bin/sh\nexit 0\n")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RunDir)
}

func writeExecutable(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}
