package daemonctl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"anonctl/internal/config"
	"anonctl/internal/daemonctl"
	"anonctl/internal/nodeconf"
	"anonctl/internal/procscan"
	"anonctl/internal/testsupport"
)

type fakeFinder struct {
	procs []procscan.Process
	err   error
}

func (f fakeFinder) Find(string) ([]procscan.Process, error) { return f.procs, f.err }

type fakeNode struct {
	mu      sync.Mutex
	methods []string
	onStop  func()
}

func (n *fakeNode) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if u, p, _ := r.BasicAuth(); u != "alice" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		n.mu.Lock()
		n.methods = append(n.methods, req.Method)
		onStop := n.onStop
		n.mu.Unlock()
		if req.Method == "stop" && onStop != nil {
			onStop()
		}
		_, _ = w.Write([]byte(`{"result":{"blocks":1},"error":null,"id":"anonctl"}`))
	}
}

func (n *fakeNode) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.methods...)
}

func startNode(t *testing.T, node *fakeNode) testsupport.ConfigOption {
	t.Helper()
	srv := httptest.NewServer(node.handler(t))
	t.Cleanup(srv.Close)
	host, portText, _ := net.SplitHostPort(srv.Listener.Addr().String())
	port, _ := strconv.Atoi(portText)
	return testsupport.WithRPCEndpoint(host, port)
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("daemon stub never wrote %s", path)
	return nil
}

// newController scans the real process table. Stub daemons are shell
// scripts at a per-test path, so only this test's processes match.
func newController(cfg *config.Config) *daemonctl.Controller {
	return &daemonctl.Controller{Config: cfg, Finder: procscan.Scanner{}}
}

func TestLaunchArgs(t *testing.T) {
	record := nodeconf.ParseString("rpcuser=alice\nrpcpassword=secret\ntestnet=1\nrpcport=18023")
	got := daemonctl.LaunchArgs(record, daemonctl.LaunchOptions{
		DataDir:   "/srv/anon",
		ConfPath:  "/srv/anon/anon.conf",
		ExtraArgs: []string{"-printtoconsole"},
	})
	want := []string{"-testnet=1", "-rpcport=18023", "-datadir=/srv/anon", "-conf=/srv/anon/anon.conf", "-printtoconsole"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LaunchArgs = %q, want %q", got, want)
	}

	record = nodeconf.ParseString("datadir=/custom\nconf=/custom/x.conf")
	got = daemonctl.LaunchArgs(record, daemonctl.LaunchOptions{DataDir: "/srv/anon", ConfPath: "/srv/anon/anon.conf"})
	want = []string{"-datadir=/custom", "-conf=/custom/x.conf"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LaunchArgs with record paths = %q, want %q", got, want)
	}
}

func TestLaunchRejectsEmptyBinary(t *testing.T) {
	if _, err := daemonctl.Launch(" ", nodeconf.NewRecord(), daemonctl.LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestEnsureStartedLaunchesAndWaits(t *testing.T) {
	node := &fakeNode{}
	argsFile := filepath.Join(t.TempDir(), "args")
	cfg := testsupport.NewConfig(t,
		testsupport.WithNodeConf("rpcuser=alice\nrpcpassword=secret\nserver=1\n"),
		testsupport.WithDaemonScript(testsupport.SleepingDaemonScript(argsFile)),
		startNode(t, node),
	)
	ctrl := newController(cfg)

	result, err := ctrl.EnsureStarted(context.Background())
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	t.Cleanup(func() { _ = syscall.Kill(result.PID, syscall.SIGTERM) })

	if result.State != daemonctl.StartStateStarted || !result.Ready || result.PID <= 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	args := readArgs(t, argsFile)
	want := []string{"-server=1", "-datadir=" + cfg.Paths.DataDir, "-conf=" + cfg.Paths.NodeConf}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("daemon args = %q, want %q", args, want)
	}
	for _, arg := range args {
		if strings.Contains(arg, "secret") {
			t.Fatalf("credentials leaked into argv: %q", args)
		}
	}
	pidData, err := os.ReadFile(cfg.PIDFile())
	if err != nil || strings.TrimSpace(string(pidData)) != strconv.Itoa(result.PID) {
		t.Fatalf("pid file = %q, %v", pidData, err)
	}
	if calls := node.calls(); len(calls) == 0 || calls[0] != "getinfo" {
		t.Fatalf("expected getinfo probe, got %v", calls)
	}

	again, err := ctrl.EnsureStarted(context.Background())
	if err != nil {
		t.Fatalf("second EnsureStarted: %v", err)
	}
	if again.State != daemonctl.StartStateAlreadyRunning || again.PID != result.PID {
		t.Fatalf("expected already running with pid %d, got %+v", result.PID, again)
	}
}

func TestEnsureStartedDetectsScannedProcess(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDaemonScript("#!/bin/sh\nexit 1\n"))
	ctrl := &daemonctl.Controller{
		Config: cfg,
		Finder: fakeFinder{procs: []procscan.Process{{PID: 31337, Cmdline: "anond -daemon"}}},
	}

	result, err := ctrl.EnsureStarted(context.Background())
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if result.State != daemonctl.StartStateAlreadyRunning || result.PID != 31337 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestEnsureStartedWithoutCredentialsSkipsProbe(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	cfg := testsupport.NewConfig(t, testsupport.WithDaemonScript(testsupport.SleepingDaemonScript(argsFile)))
	ctrl := newController(cfg)

	result, err := ctrl.EnsureStarted(context.Background())
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	t.Cleanup(func() { _ = syscall.Kill(result.PID, syscall.SIGTERM) })
	if result.Ready || result.Message == "" {
		t.Fatalf("expected unverified start, got %+v", result)
	}
}

func TestEnsureStartedReportsEarlyExit(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNodeConf("rpcuser=alice\nrpcpassword=secret\n"),
		testsupport.WithDaemonScript("#!/bin/sh\nexit 3\n"),
		testsupport.WithRPCEndpoint("127.0.0.1", 1),
	)

	_, err := newController(cfg).EnsureStarted(context.Background())
	if err == nil {
		t.Fatal("expected startup failure")
	}
}

func TestStopAndTerminateNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := newController(cfg).StopAndTerminate(context.Background(), time.Second)
	if !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestStopAndTerminateGracefulStop(t *testing.T) {
	node := &fakeNode{}
	argsFile := filepath.Join(t.TempDir(), "args")
	cfg := testsupport.NewConfig(t,
		testsupport.WithNodeConf("rpcuser=alice\nrpcpassword=secret\n"),
		testsupport.WithDaemonScript(testsupport.SleepingDaemonScript(argsFile)),
		startNode(t, node),
	)
	ctrl := newController(cfg)
	started, err := ctrl.EnsureStarted(context.Background())
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	readArgs(t, argsFile)

	node.mu.Lock()
	node.onStop = func() { _ = syscall.Kill(started.PID, syscall.SIGTERM) }
	node.mu.Unlock()

	result, err := ctrl.StopAndTerminate(context.Background(), 3*time.Second)
	if err != nil {
		t.Fatalf("StopAndTerminate: %v", err)
	}
	if !result.StopAcknowledged || result.Terminated || result.PID != started.PID {
		t.Fatalf("unexpected stop result %+v", result)
	}
	if _, err := os.Stat(cfg.PIDFile()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected pid file removed, got %v", err)
	}
}

func TestStopAndTerminateSignalsAfterGrace(t *testing.T) {
	node := &fakeNode{}
	argsFile := filepath.Join(t.TempDir(), "args")
	cfg := testsupport.NewConfig(t,
		testsupport.WithNodeConf("rpcuser=alice\nrpcpassword=secret\n"),
		testsupport.WithDaemonScript(testsupport.SleepingDaemonScript(argsFile)),
		startNode(t, node),
	)
	ctrl := newController(cfg)
	started, err := ctrl.EnsureStarted(context.Background())
	if err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	readArgs(t, argsFile)

	result, err := ctrl.StopAndTerminate(context.Background(), 300*time.Millisecond)
	if err != nil {
		t.Fatalf("StopAndTerminate: %v", err)
	}
	if !result.StopAcknowledged || !result.Terminated || result.PID != started.PID {
		t.Fatalf("unexpected stop result %+v", result)
	}
	calls := node.calls()
	if calls[len(calls)-1] != "stop" {
		t.Fatalf("expected rpc stop, got %v", calls)
	}
}

func TestCredentialsPreferRunningCommandLine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctrl := newController(cfg)
	record := nodeconf.ParseString("rpcuser=conf-user\nrpcpassword=conf-pass\n")

	creds := ctrl.Credentials(record, []procscan.Process{{PID: 5, Cmdline: "anond -rpcpassword=live -testnet"}})
	if creds.User != "conf-user" || creds.Password != "live" || !creds.Testnet || creds.Source != nodeconf.SourceMixed {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestClientUsesNodeConfPort(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctrl := newController(cfg)

	client := ctrl.Client(nodeconf.ParseString("rpcport=9999"), nodeconf.Credentials{})
	if client.Port != 9999 {
		t.Fatalf("expected rpcport override, got %d", client.Port)
	}
	client = ctrl.Client(nodeconf.NewRecord(), nodeconf.Credentials{Testnet: true})
	if client.Port != cfg.RPC.TestnetPort {
		t.Fatalf("expected testnet port, got %d", client.Port)
	}
}

func writePID(t *testing.T, cfg *config.Config, pid int) {
	t.Helper()
	if err := os.WriteFile(cfg.PIDFile(), []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
}

func TestPIDFileNamingOtherProcessIsIgnored(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithNodeConf("rpcuser=alice\nrpcpassword=secret\n"),
		testsupport.WithDaemonScript(testsupport.SleepingDaemonScript(filepath.Join(t.TempDir(), "args"))),
		testsupport.WithRPCEndpoint("127.0.0.1", 1),
	)

	other := exec.Command("sleep", "30")
	if err := other.Start(); err != nil {
		t.Fatalf("start unrelated process: %v", err)
	}
	exited := make(chan error, 1)
	go func() { exited <- other.Wait() }()
	t.Cleanup(func() {
		_ = other.Process.Kill()
		<-exited
	})

	ctrl := newController(cfg)
	writePID(t, cfg, other.Process.Pid)
	running, err := ctrl.Running()
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if len(running) != 0 {
		t.Fatalf("expected no daemon, got %+v", running)
	}
	if _, err := os.Stat(cfg.PIDFile()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stale pid file removed, got %v", err)
	}

	writePID(t, cfg, other.Process.Pid)
	if _, err := ctrl.StopAndTerminate(context.Background(), 100*time.Millisecond); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
	select {
	case err := <-exited:
		t.Fatalf("unrelated process was signalled: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRunningTrustsPIDFileWithoutProcessTable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctrl := &daemonctl.Controller{Config: cfg, Finder: fakeFinder{err: procscan.ErrUnsupported}}

	running, err := ctrl.Running()
	if err != nil || len(running) != 0 {
		t.Fatalf("expected nothing without pid file, got %+v, %v", running, err)
	}

	writePID(t, cfg, os.Getpid())
	running, err = ctrl.Running()
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if len(running) != 1 || running[0].PID != os.Getpid() {
		t.Fatalf("expected pid file fallback, got %+v", running)
	}
}

func TestRunningReportsScanFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctrl := &daemonctl.Controller{Config: cfg, Finder: fakeFinder{err: errors.New("permission denied")}}
	if _, err := ctrl.Running(); err == nil {
		t.Fatal("expected scan error")
	}
}
