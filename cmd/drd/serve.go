package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willmcpherson2/drd/config"
	"github.com/willmcpherson2/drd/server"
	"github.com/willmcpherson2/drd/util"
)

// serveCommand starts the long-running TCP server, matching the
// original CLI's `Start` variant.
type serveCommand struct {
	Directory   string `short:"d" long:"directory" description:"Directory to store database files" value-name:"PATH" default:"db"`
	Port        int    `short:"p" long:"port" description:"Port to listen on" value-name:"PORT" default:"2345"`
	Timeout     int64  `short:"t" long:"timeout" description:"Connection timeout in milliseconds, 0 for no timeout" value-name:"TIMEOUT" default:"5000"`
	Concurrency int    `long:"concurrency" description:"Bound on concurrent file reads per request, 0 for unbounded"`
	Verbose     bool   `short:"v" long:"verbose" description:"Log each request's input, result, reads and writes"`
	Config      string `long:"config" description:"YAML file overriding directory/port/timeout/verbose/concurrency" value-name:"PATH"`
}

func (c *serveCommand) Execute(_ []string) error {
	file, err := config.ParseFile(c.Config)
	if err != nil {
		return err
	}

	conf := config.Merge(config.Defaults(), file, c.explicitFlags())

	util.InitSlog(conf.Verbose)

	fmt.Println("Starting server")
	fmt.Printf("Directory: %s\n", conf.Directory)
	fmt.Printf("http://localhost:%d\n", conf.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, conf)
}

// explicitFlags builds a config.File containing only the fields the
// user actually passed on the command line, not go-flags' struct-tag
// defaults, so a --config file value isn't silently clobbered by a
// flag the user never typed.
func (c *serveCommand) explicitFlags() config.File {
	var f config.File
	isSet := func(long string) bool {
		if activeParser == nil {
			return false
		}
		cmd := activeParser.Find("serve")
		if cmd == nil {
			return false
		}
		opt := cmd.FindOptionByLongName(long)
		return opt != nil && opt.IsSet()
	}
	if isSet("directory") {
		f.Directory = &c.Directory
	}
	if isSet("port") {
		f.Port = &c.Port
	}
	if isSet("timeout") {
		f.TimeoutMS = &c.Timeout
	}
	if isSet("verbose") {
		f.Verbose = &c.Verbose
	}
	if isSet("concurrency") {
		f.Concurrency = &c.Concurrency
	}
	return f
}
