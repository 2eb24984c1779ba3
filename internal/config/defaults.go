package config

const (
	defaultDaemonBinary      = "anond"
	defaultCLIBinary         = "anon-cli"
	defaultStartTimeout      = 60
	defaultStopGrace         = 30
	defaultRPCHost           = "127.0.0.1"
	defaultRPCMainnetPort    = 8023
	defaultRPCTestnetPort    = 18023
	defaultRPCTimeoutSeconds = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults. Path fields
// are left empty and resolved per platform during Load.
func Default() Config {
	return Config{
		Daemon: Daemon{
			Binary:       defaultDaemonBinary,
			CLIBinary:    defaultCLIBinary,
			StartTimeout: defaultStartTimeout,
			StopGrace:    defaultStopGrace,
		},
		RPC: RPC{
			Host:           defaultRPCHost,
			MainnetPort:    defaultRPCMainnetPort,
			TestnetPort:    defaultRPCTestnetPort,
			TimeoutSeconds: defaultRPCTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
