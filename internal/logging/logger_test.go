package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"anonctl/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false, false))

	NewComponentLogger(logger, "daemonctl").Info("anond started",
		Int(FieldPID, 4242),
		String(FieldPath, "/home/u/.anon dir"),
	)

	line := buf.String()
	for _, want := range []string{" INFO daemonctl: anond started", "pid=4242", `path="/home/u/.anon dir"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("unexpected color codes: %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl, false, false))

	logger.Info("quiet")
	logger.Warn("loud")

	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleHandlerGroupsAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar), false, false))

	logger.WithGroup("rpc").Info("credentials resolved",
		String(FieldRPCUser, "alice"),
		String(FieldRPCPassword, "hunter2"),
	)

	line := buf.String()
	if !strings.Contains(line, "rpc.rpcuser=alice") {
		t.Fatalf("expected grouped key, got %q", line)
	}
	if strings.Contains(line, "hunter2") || !strings.Contains(line, "rpc.rpcpassword="+redacted) {
		t.Fatalf("password not redacted: %q", line)
	}
}

func TestJSONHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar), false))

	logger.Info("probe", String(FieldRPCPassword, "hunter2"), String(FieldRPCUser, "alice"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}
	if payload[FieldRPCPassword] != redacted {
		t.Fatalf("password not redacted: %v", payload)
	}
	if payload[FieldRPCUser] != "alice" || payload["level"] != "info" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestTeeHandlerWritesToAll(t *testing.T) {
	var console, file bytes.Buffer
	debug := new(slog.LevelVar)
	debug.Set(slog.LevelDebug)
	warn := new(slog.LevelVar)
	warn.Set(slog.LevelWarn)

	logger := slog.New(TeeHandler(
		newConsoleHandler(&console, warn, false, false),
		nil,
		newJSONHandler(&file, debug, false),
	)).With(String("network", "testnet"))

	logger.Debug("only json")
	logger.Warn("both")

	if strings.Contains(console.String(), "only json") || !strings.Contains(console.String(), "both") {
		t.Fatalf("unexpected console output %q", console.String())
	}
	if strings.Count(file.String(), "\n") != 2 || !strings.Contains(file.String(), `"network":"testnet"`) {
		t.Fatalf("unexpected json output %q", file.String())
	}
}

type failingHandler struct{ NoopHandler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

func TestTeeHandlerJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	h := TeeHandler(failingHandler{}, newConsoleHandler(&buf, new(slog.LevelVar), false, false))
	record := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	if err := h.Handle(context.Background(), record); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !strings.Contains(buf.String(), "msg") {
		t.Fatal("healthy handler should still receive the record")
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler().(NoopHandler); !ok {
		t.Fatal("expected noop handler for empty tee")
	}
	single := NoopHandler{}
	if got := TeeHandler(nil, single); got != slog.Handler(single) {
		t.Fatalf("expected single handler passthrough, got %T", got)
	}
}

func TestWithContextAddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newConsoleHandler(&buf, new(slog.LevelVar), false, false))

	id := NewCorrelationID()
	ctx := WithCorrelationID(context.Background(), id)
	if got, ok := CorrelationIDFromContext(ctx); !ok || got != id {
		t.Fatalf("CorrelationIDFromContext = %q, %v", got, ok)
	}
	WithContext(ctx, base).Info("hello")
	if !strings.Contains(buf.String(), FieldCorrelationID+"="+id) {
		t.Fatalf("missing correlation id in %q", buf.String())
	}

	if WithCorrelationID(ctx, "  ") != ctx {
		t.Fatal("blank id should leave context untouched")
	}
	if WithContext(context.Background(), nil) == nil {
		t.Fatal("expected nop logger for nil base")
	}
}

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg, "debug")
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Debug("written to file", String(FieldNetwork, "mainnet"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "anonctl.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("log file missing record: %s", data)
	}
}
