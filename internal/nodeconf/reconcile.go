package nodeconf

// Credential sources reported by Reconcile.
const (
	SourceNone    = "none"
	SourceConf    = "conf"
	SourceCmdline = "cmdline"
	SourceMixed   = "mixed"
)

// Credentials are the RPC settings a client should use to reach the daemon.
type Credentials struct {
	User     string
	Password string
	Testnet  bool
	Source   string
}

// Empty reports whether either credential is missing.
func (c Credentials) Empty() bool {
	return c.User == "" || c.Password == ""
}

// Reconcile merges credentials from the config file with those found on a
// running daemon's command line. Non-empty command-line values win per field
// because the running process ignores the file for options it was given
// explicitly. running may be nil when no daemon was found.
func Reconcile(conf *Record, running *CmdArgs) Credentials {
	var creds Credentials
	fromConf, fromCmd := false, false

	pick := func(cmdValue, confKey string) string {
		if cmdValue != "" {
			fromCmd = true
			return cmdValue
		}
		if v, ok := conf.Get(confKey); ok && v != "" {
			fromConf = true
			return v
		}
		return ""
	}

	var cmd CmdArgs
	if running != nil {
		cmd = *running
	}
	creds.User = pick(cmd.User, KeyRPCUser)
	creds.Password = pick(cmd.Password, KeyRPCPassword)
	creds.Testnet = cmd.IsTestnet || conf.IsTestnet()

	switch {
	case fromCmd && fromConf:
		creds.Source = SourceMixed
	case fromCmd:
		creds.Source = SourceCmdline
	case fromConf:
		creds.Source = SourceConf
	default:
		creds.Source = SourceNone
	}
	return creds
}
