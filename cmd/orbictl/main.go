package main

import (
	"github.com/robotalks/orbipacket/pkg/cli/sh"
	"github.com/robotalks/orbipacket/pkg/env"

	_ "github.com/robotalks/orbipacket/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
