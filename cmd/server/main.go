// plat-mailfix server - template repair over REST and MCP
package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/joeblew999/plat-mailfix/internal/config"
	"github.com/joeblew999/plat-mailfix/internal/server"
)

var version = "v0.1.0" // Overwritten at build time

func main() {
	configFile := flag.String("f", "etc/plat-mailfix.yaml", "config file path")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("plat-mailfix server %s\n", version)
		return
	}

	logx.DisableStat()

	var c config.Config
	conf.MustLoad(*configFile, &c, conf.UseEnv())

	s, err := server.New(c)
	logx.Must(err)
	defer s.Stop()

	logx.Infof("plat-mailfix server %s starting", version)
	s.Start()
}
