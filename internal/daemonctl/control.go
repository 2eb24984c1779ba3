package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"anonctl/internal/config"
	"anonctl/internal/logging"
	"anonctl/internal/nodeclient"
	"anonctl/internal/nodeconf"
	"anonctl/internal/procscan"
)

const (
	pollInterval     = 200 * time.Millisecond
	lockRetryDelay   = 100 * time.Millisecond
	lockWaitTimeout  = 5 * time.Second
	postTermWaitTime = 2 * time.Second
)

// ErrDaemonNotRunning indicates no daemon process could be found.
var ErrDaemonNotRunning = errors.New("daemon not running")

// StartState describes the outcome of EnsureStarted.
type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
)

// StartResult captures daemon start orchestration state.
type StartResult struct {
	State   StartState
	PID     int
	Ready   bool
	Message string
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	StopAcknowledged bool
	Terminated       bool
	PID              int
}

// LaunchOptions controls how the daemon process is spawned.
type LaunchOptions struct {
	DataDir   string
	ConfPath  string
	ExtraArgs []string
	LogFile   string
}

// Controller drives the node daemon described by a Config.
type Controller struct {
	Config *config.Config
	Logger *slog.Logger
	Finder ProcessFinder
}

// New returns a controller using the system process table.
func New(cfg *config.Config, logger *slog.Logger) *Controller {
	return &Controller{Config: cfg, Logger: logging.NewComponentLogger(logger, "daemonctl"), Finder: procscan.Scanner{}}
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

// LaunchArgs builds the daemon argv (without the binary) from a config
// record. -datadir and -conf are appended only when the record does not
// already carry them.
func LaunchArgs(record *nodeconf.Record, opts LaunchOptions) []string {
	args := nodeconf.Args(record)
	if _, ok := record.Get(nodeconf.KeyDataDir); !ok && strings.TrimSpace(opts.DataDir) != "" {
		args = append(args, "-"+nodeconf.KeyDataDir+"="+opts.DataDir)
	}
	if _, ok := record.Get(nodeconf.KeyConf); !ok && strings.TrimSpace(opts.ConfPath) != "" {
		args = append(args, "-"+nodeconf.KeyConf+"="+opts.ConfPath)
	}
	return append(args, opts.ExtraArgs...)
}

// Launch starts a detached daemon process and returns its pid.
func Launch(binary string, record *nodeconf.Record, opts LaunchOptions) (int, error) {
	if strings.TrimSpace(binary) == "" {
		return 0, errors.New("resolve executable: daemon binary is empty")
	}

	proc := exec.Command(binary, LaunchArgs(record, opts)...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if opts.LogFile != "" {
		out, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, fmt.Errorf("open daemon log %q: %w", opts.LogFile, err)
		}
		defer out.Close()
		proc.Stdout = out
		proc.Stderr = out
	}
	if err := proc.Start(); err != nil {
		return 0, fmt.Errorf("launch daemon: %w", err)
	}
	pid := proc.Process.Pid
	// Reap the child if it exits while we are still around.
	go func() { _ = proc.Wait() }()
	return pid, nil
}

// LoadRecord parses the node config. A missing file yields an empty record.
func (c *Controller) LoadRecord() (*nodeconf.Record, error) {
	record, err := nodeconf.Parse(c.Config.Paths.NodeConf)
	if err == nil {
		return record, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		c.logger().Warn("node config not found; launching with defaults",
			logging.String(logging.FieldPath, c.Config.Paths.NodeConf))
		return nodeconf.NewRecord(), nil
	}
	return nil, fmt.Errorf("read node config: %w", err)
}

// Running returns live daemon processes found in the process table. A pid
// file that names no daemon process is stale and is removed. Only when the
// process table cannot be read is the pid file trusted on its own.
func (c *Controller) Running() ([]procscan.Process, error) {
	pidFile := c.Config.PIDFile()
	found, err := c.scan()
	switch {
	case err == nil:
		if pid, readErr := readPIDFile(pidFile); readErr == nil && !containsPID(found, pid) {
			c.logger().Info("removing stale pid file",
				logging.Int(logging.FieldPID, pid), logging.String(logging.FieldPath, pidFile))
			if rmErr := removePIDFile(pidFile); rmErr != nil {
				return nil, rmErr
			}
		}
		return found, nil
	case errors.Is(err, procscan.ErrUnsupported):
		if pid, readErr := readPIDFile(pidFile); readErr == nil && processAlive(pid) {
			return []procscan.Process{{PID: pid}}, nil
		}
		return nil, nil
	default:
		return nil, err
	}
}

func (c *Controller) scan() ([]procscan.Process, error) {
	if c.Finder == nil {
		return nil, procscan.ErrUnsupported
	}
	return c.Finder.Find(strings.TrimSpace(c.Config.Daemon.Binary))
}

func containsPID(procs []procscan.Process, pid int) bool {
	for _, p := range procs {
		if p.PID == pid {
			return true
		}
	}
	return false
}

// Credentials reconciles RPC settings from the node config and the first
// running daemon's command line.
func (c *Controller) Credentials(record *nodeconf.Record, running []procscan.Process) nodeconf.Credentials {
	var args *nodeconf.CmdArgs
	if len(running) > 0 && running[0].Cmdline != "" {
		parsed := nodeconf.ParseCmdArgs(running[0].Cmdline)
		args = &parsed
	}
	return nodeconf.Reconcile(record, args)
}

// Client returns an RPC client for creds. A node config rpcport wins over
// the per-network default.
func (c *Controller) Client(record *nodeconf.Record, creds nodeconf.Credentials) *nodeclient.Client {
	port := c.Config.RPCPortFor(creds.Testnet)
	if v, ok := record.Get(nodeconf.KeyRPCPort); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			port = parsed
		}
	}
	return nodeclient.New(c.Config.RPC.Host, port, creds.User, creds.Password,
		nodeclient.WithTimeout(c.Config.RPCTimeout()))
}

// EnsureStarted launches the daemon unless one is already running, then
// waits for it to answer RPC.
func (c *Controller) EnsureStarted(ctx context.Context) (StartResult, error) {
	cfg := c.Config
	if err := cfg.EnsureDirectories(); err != nil {
		return StartResult{}, err
	}

	lock := flock.New(cfg.LockFile())
	lockCtx, cancel := context.WithTimeout(ctx, lockWaitTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return StartResult{}, fmt.Errorf("acquire launch lock: %w", err)
	}
	if !locked {
		return StartResult{}, errors.New("another anonctl start is in progress")
	}
	defer func() { _ = lock.Unlock() }()

	running, err := c.Running()
	if err != nil {
		return StartResult{}, err
	}
	if len(running) > 0 {
		return StartResult{State: StartStateAlreadyRunning, PID: running[0].PID}, nil
	}

	record, err := c.LoadRecord()
	if err != nil {
		return StartResult{}, err
	}
	pid, err := Launch(cfg.Daemon.Binary, record, LaunchOptions{
		DataDir:   cfg.Paths.DataDir,
		ConfPath:  cfg.Paths.NodeConf,
		ExtraArgs: cfg.Daemon.ExtraArgs,
		LogFile:   cfg.DaemonLogFile(),
	})
	if err != nil {
		return StartResult{}, err
	}
	if err := writePIDFile(cfg.PIDFile(), pid); err != nil {
		return StartResult{}, err
	}
	c.logger().Info("daemon launched", logging.Int(logging.FieldPID, pid),
		logging.String(logging.FieldPath, cfg.Daemon.Binary))

	result := StartResult{State: StartStateStarted, PID: pid}
	creds := nodeconf.Reconcile(record, nil)
	if creds.Empty() {
		result.Message = "no rpc credentials configured; readiness not verified"
		return result, nil
	}
	if err := c.WaitForReady(ctx, c.Client(record, creds), pid, cfg.StartTimeout()); err != nil {
		return result, err
	}
	result.Ready = true
	return result, nil
}

// WaitForReady polls getinfo until the daemon answers, exits, or timeout
// elapses.
func (c *Controller) WaitForReady(ctx context.Context, client *nodeclient.Client, pid int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if pid > 0 && !processAlive(pid) {
			return fmt.Errorf("daemon exited during startup (pid %d)", pid)
		}
		_, err := client.Ping(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, nodeclient.ErrUnauthorized) {
			return fmt.Errorf("daemon rejected credentials: %w", err)
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("timeout waiting for daemon")
	}
	return fmt.Errorf("daemon failed to become ready: %w", lastErr)
}

// StopAndTerminate requests an RPC stop and sends SIGTERM if the process is
// still alive after grace.
func (c *Controller) StopAndTerminate(ctx context.Context, grace time.Duration) (StopResult, error) {
	running, err := c.Running()
	if err != nil {
		return StopResult{}, err
	}
	if len(running) == 0 {
		_ = removePIDFile(c.Config.PIDFile())
		return StopResult{}, ErrDaemonNotRunning
	}
	pid := running[0].PID
	result := StopResult{PID: pid}
	log := c.logger().With(logging.Int(logging.FieldPID, pid))

	record, err := c.LoadRecord()
	if err != nil {
		return result, err
	}
	creds := c.Credentials(record, running)
	if creds.Empty() {
		log.Warn("no rpc credentials available; skipping rpc stop")
	} else if stopErr := c.Client(record, creds).Stop(ctx); stopErr != nil {
		log.Warn("rpc stop failed", logging.Error(stopErr))
	} else {
		result.StopAcknowledged = true
	}

	if waitForExit(ctx, pid, grace) {
		return result, removePIDFile(c.Config.PIDFile())
	}

	log.Info("daemon still alive after grace period; sending SIGTERM", logging.Duration("grace", grace))
	if err := terminate(pid); err != nil {
		return result, err
	}
	result.Terminated = true
	waitForExit(ctx, pid, postTermWaitTime)
	return result, removePIDFile(c.Config.PIDFile())
}

func waitForExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !processAlive(pid) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
		}
	}
}
