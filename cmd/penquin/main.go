package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/penquin-lang/penquin/internal/compiler"
	"github.com/penquin-lang/penquin/internal/config"
	"github.com/penquin-lang/penquin/internal/diagnostics"
)

var DevMode string

func main() {
	config.SetDevMode(DevMode == "1")
	if config.DEV {
		fmt.Println("[DEV MODE] initialized")
	}

	args, err := cli()
	if err != nil {
		log.Fatal(err)
	}

	envs, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	switch args.Command {
	case COMMAND_HELP:
		fmt.Print(HELP_COMMAND)
	case COMMAND_ENV:
		envs.ShowAll(os.Stdout)
	case COMMAND_REPL:
		if err := runREPL(envs); err != nil {
			log.Fatal(err)
		}
	case COMMAND_BUILD:
		opts := compiler.Options{
			BuildType: args.BuildType,
			Output:    args.Output,
			EmitIR:    args.EmitIR,
			DebugDump: args.DebugDump,
			Jobs:      args.Jobs,
		}
		c := compiler.New(envs, opts, diagnostics.New())
		produced, err := c.Build(context.Background(), args.ArgLoc)
		if err != nil {
			exit(err)
		}
		if config.DEV {
			fmt.Printf("[DEV MODE] produced %v\n", produced)
		}
	}
}

// exit terminates a failed build. Diagnostics were already written by the
// collector, anything else still needs reporting.
func exit(err error) {
	if errors.Is(err, diagnostics.COMPILER_ERROR_FOUND) {
		os.Exit(1)
	}
	log.Fatal(err)
}
