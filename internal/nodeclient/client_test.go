package nodeclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"anonctl/internal/nodeclient"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *nodeclient.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, portText, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return nodeclient.New(host, port, "alice", "secret", nodeclient.WithHTTPClient(srv.Client()))
}

func TestPingSendsAuthAndDecodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.JSONRPC != "1.0" || req.Method != "getinfo" || req.Params == nil {
			t.Errorf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"result":{"version":2000000,"blocks":1234,"connections":8,"testnet":true},"error":null,"id":"anonctl"}`))
	})

	info, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if info.Blocks != 1234 || info.Connections != 8 || !info.Testnet {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestCallUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Ping(context.Background())
	if !errors.Is(err, nodeclient.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCallRPCError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"result":null,"error":{"code":-28,"message":"Loading block index..."},"id":"anonctl"}`))
	})

	_, err := client.Ping(context.Background())
	var rpcErr *nodeclient.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != nodeclient.CodeWarmup {
		t.Fatalf("expected warmup RPCError, got %v", err)
	}
	if !nodeclient.IsWarmingUp(err) {
		t.Fatal("IsWarmingUp should be true")
	}
}

func TestCallNonJSONFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})

	if err := client.Stop(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStop(t *testing.T) {
	var method string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		method = req.Method
		_, _ = w.Write([]byte(`{"result":"Anon server stopping","error":null,"id":"anonctl"}`))
	})

	if err := client.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if method != "stop" {
		t.Fatalf("unexpected method %q", method)
	}
}

func TestCallConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	client := nodeclient.New("", port, "u", "p")
	if client.Host != "127.0.0.1" {
		t.Fatalf("expected default host, got %q", client.Host)
	}
	if _, err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}
