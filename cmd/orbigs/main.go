package main

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/orbipacket/pkg/framework"
	"github.com/robotalks/orbipacket/pkg/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	e := env.NewConfig().MustNewEnv()
	glog.Infof("station %s on %s", e.Config.Station, e.Config.SerialPort)
	if err := fx.NewRunner().HandleSignals().Go(e.Runnables()...).Wait(); err != nil {
		glog.Exit(err)
	}
}
