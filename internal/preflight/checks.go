package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"anonctl/internal/nodeclient"
	"anonctl/internal/nodeconf"
)

const rpcCheckName = "RPC"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckNodeConf verifies the daemon config exists, parses cleanly, and
// carries RPC credentials.
func CheckNodeConf(path string) Result {
	const name = "Node config"

	text, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	record, err := nodeconf.ParseStrict(string(text))
	var malformed *nodeconf.MalformedLinesError
	if errors.As(err, &malformed) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, malformed)}
	}
	creds := nodeconf.Reconcile(record, nil)
	if creds.Empty() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: rpcuser/rpcpassword not set)", path)}
	}
	network := "mainnet"
	if creds.Testnet {
		network = "testnet"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d keys, %s)", path, record.Len(), network)}
}

// CheckRPC verifies the daemon answers getinfo with the given credentials.
func CheckRPC(ctx context.Context, host string, port int, user, password string, timeout time.Duration) Result {
	if user == "" || password == "" {
		return Result{Name: rpcCheckName, Detail: "missing credentials"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := nodeclient.New(host, port, user, password, nodeclient.WithTimeout(timeout))
	info, err := client.Ping(checkCtx)
	if err != nil {
		return Result{Name: rpcCheckName, Detail: summarizeRPCError(err)}
	}
	return Result{Name: rpcCheckName, Passed: true, Detail: fmt.Sprintf("reachable (blocks %d, peers %d)", info.Blocks, info.Connections)}
}

func summarizeRPCError(err error) string {
	switch {
	case errors.Is(err, nodeclient.ErrUnauthorized):
		return "auth failed (check rpcuser/rpcpassword)"
	case nodeclient.IsWarmingUp(err):
		return "daemon warming up"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out (daemon unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (daemon unreachable)"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "not reachable"
	}
	return err.Error()
}
