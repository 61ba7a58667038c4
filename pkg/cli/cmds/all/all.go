// Package all registers all shell commands.
package all

import (
	// registers commands.
	_ "github.com/robotalks/orbipacket/pkg/cli/cmds/codec"
	_ "github.com/robotalks/orbipacket/pkg/cli/cmds/packet"
)
