package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/penquin-lang/penquin/internal/config"
)

type Command int

const (
	COMMAND_BUILD Command = iota
	COMMAND_REPL
	COMMAND_HELP
	COMMAND_ENV
)

type CliResult struct {
	Command   Command
	BuildType config.BuildType
	ArgLoc    string
	Output    string
	EmitIR    bool
	DebugDump bool
	Jobs      int
}

var HELP_COMMAND string = `Penquin - a small compiled language with modules, built on LLVM.

Usage:
  penquin <command> [arguments]

Available Commands:
  build <file> [flags]              Builds the program
      <file>        Entry module of the program
      -o <name>     Name of the executable (defaults to the file name)
      -release      Build in release mode
      -debug        Build in debug mode (default)
      -emit-ir      Write one .ll file per module instead of linking
      -debug-dump   Print every parsed module and generated unit
      -j <n>        Compile at most n modules at once

  repl                              Starts an interactive session

  env                               Show environment information

  help                              Show this help message

Examples:
  penquin build main.pq              Build main.pq into ./main
  penquin build main.pq -o hello     Build main.pq into ./hello
  penquin build main.pq -release     Build main.pq in release mode
  penquin build main.pq -emit-ir     Write the LLVM IR of every module
  penquin env                        Display environment details
`

func cli() (CliResult, error) {
	return parseArgs(os.Args[1:])
}

func parseArgs(args []string) (CliResult, error) {
	result := CliResult{}

	if len(args) == 0 {
		result.Command = COMMAND_HELP
		return result, nil
	}

	command := args[0]
	switch command {
	case "env":
		result.Command = COMMAND_ENV
	case "help", "-h", "--help":
		result.Command = COMMAND_HELP
	case "repl":
		result.Command = COMMAND_REPL
	case "build":
		result.Command = COMMAND_BUILD
		return result, parseBuildArgs(&result, args[1:])
	default:
		return result, fmt.Errorf("unknown command '%s', run 'penquin help' for usage", command)
	}
	return result, nil
}

func parseBuildArgs(result *CliResult, args []string) error {
	releaseBuildSet, debugBuildSet := false, false
	result.BuildType = config.DEBUG

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-release":
			releaseBuildSet = true
			result.BuildType = config.RELEASE
		case "-debug":
			debugBuildSet = true
			result.BuildType = config.DEBUG
		case "-emit-ir":
			result.EmitIR = true
		case "-debug-dump":
			result.DebugDump = true
		case "-o", "-j":
			if i+1 >= len(args) {
				return fmt.Errorf("flag %s needs a value", arg)
			}
			i++
			if arg == "-o" {
				result.Output = args[i]
				continue
			}
			jobs, err := strconv.Atoi(args[i])
			if err != nil || jobs < 1 {
				return fmt.Errorf("invalid value '%s' for -j", args[i])
			}
			result.Jobs = jobs
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return fmt.Errorf("unknown flag '%s'", arg)
			}
			if result.ArgLoc != "" {
				return fmt.Errorf("only one entry file can be built, got '%s' and '%s'", result.ArgLoc, arg)
			}
			result.ArgLoc = arg
		}
	}

	if releaseBuildSet && debugBuildSet {
		return fmt.Errorf("choose either -release or -debug, not both")
	}
	if result.ArgLoc == "" {
		return fmt.Errorf("no entry file given to build")
	}
	if _, err := os.Stat(result.ArgLoc); err != nil {
		return fmt.Errorf("no such file: %s", result.ArgLoc)
	}
	return nil
}
