package nodeconf

import "strings"

// CmdArgs holds the values extracted from a daemon command line.
type CmdArgs struct {
	User      string `json:"user"`
	Password  string `json:"password"`
	IsTestnet bool   `json:"isTestnet"`
}

const (
	flagRPCUser     = "-rpcuser"
	flagRPCPassword = "-rpcpassword"
	flagTestnet     = "-testnet"
)

// ParseCmdArgs extracts RPC credentials and network mode from a command line
// split on single spaces. Quoted values containing spaces are not supported;
// see ParseCmdArgsShell.
func ParseCmdArgs(cmd string) CmdArgs {
	return ParseArgv(strings.Split(cmd, " "))
}

// ParseArgv applies the ParseCmdArgs matching rules to pre-split tokens.
//
// The first token starting with -rpcuser, -rpcpassword and -testnet is used
// for each field. Credential values are whatever follows "-rpcuser=" or
// "-rpcpassword="; a matching token without that exact prefix gives "".
func ParseArgv(argv []string) CmdArgs {
	var out CmdArgs
	if tok, ok := firstWithPrefix(argv, flagRPCUser); ok {
		out.User = valueAfter(tok, flagRPCUser+"=")
	}
	if tok, ok := firstWithPrefix(argv, flagRPCPassword); ok {
		out.Password = valueAfter(tok, flagRPCPassword+"=")
	}
	_, out.IsTestnet = firstWithPrefix(argv, flagTestnet)
	return out
}

func firstWithPrefix(tokens []string, prefix string) (string, bool) {
	for _, tok := range tokens {
		if strings.HasPrefix(tok, prefix) {
			return tok, true
		}
	}
	return "", false
}

func valueAfter(tok, prefix string) string {
	value, ok := strings.CutPrefix(tok, prefix)
	if !ok {
		return ""
	}
	return value
}
