// Command drd is the DRD language's CLI front-end: a single binary
// with two subcommands, `run` for one-shot evaluation (locally or
// against a running server) and `serve` for the long-running TCP
// server, matching the original implementation's two entrypoints.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/willmcpherson2/drd/util"
)

var version = "dev"

// activeParser lets a running subcommand ask which of its own flags
// were actually passed on the command line, to distinguish "explicitly
// set" from "left at its zero-value default" when merging with a
// --config file (see serveCommand.Execute).
var activeParser *flags.Parser

type options struct {
	Version bool `long:"version" description:"Show version and exit"`

	Run   runCommand   `command:"run" description:"Evaluate a single expression or file"`
	Serve serveCommand `command:"serve" description:"Start the DRD TCP server"`
}

func main() {
	util.InitSlog(false)

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	activeParser = parser
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if opts.Version {
			fmt.Println(version)
			return nil
		}
		if command == nil {
			parser.WriteHelp(os.Stdout)
			os.Exit(1)
		}
		return command.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
