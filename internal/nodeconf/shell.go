package nodeconf

import (
	"fmt"

	"github.com/kballard/go-shellquote"
)

// ParseCmdArgsShell is ParseCmdArgs with shell-style tokenizing, so quoted
// values such as -rpcpassword="two words" survive intact.
func ParseCmdArgsShell(cmd string) (CmdArgs, error) {
	words, err := shellquote.Split(cmd)
	if err != nil {
		return CmdArgs{}, fmt.Errorf("split command line: %w", err)
	}
	return ParseArgv(words), nil
}
