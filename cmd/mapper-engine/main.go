// Package main provides the CLI entrypoint for mapper-engine.
//
// mapper-engine inspects mapper definitions and the schemas they connect:
//   - flatten prints a schema tree in canvas order
//   - check validates a definition against its schemas, offline or against the host
//   - suggest ranks input fields for every output field
//   - url rebuilds the host URLs of a provider descriptor
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"mapper-engine/internal/config"
	"mapper-engine/internal/logger"
)

// app carries what every command needs.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	debug bool
}

func main() {
	var (
		configPath string
		debug      bool
	)

	flag.StringVar(&configPath, "config", "", "config file (default: mapper-engine.yaml in . or ./config)")
	flag.BoolVar(&debug, "debug", false, "dump intermediate state to stderr")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fatalf("%v", err)
	}

	a := &app{cfg: cfg, log: logger.New(cfg.Logging), debug: debug}
	if debug {
		a.log.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()[1:]

	var code int

	switch flag.Arg(0) {
	case "flatten":
		code = a.flattenCmd(args)
	case "check":
		code = a.checkCmd(args)
	case "suggest":
		code = a.suggestCmd(args)
	case "url":
		code = a.urlCmd(args)
	default:
		usage()
		code = 2
	}

	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, `mapper-engine

Usage:
  mapper-engine [-config file] [-debug] <command> [flags]

Commands:
  flatten -schema fields.yaml
  check   -mapper mapper.yaml (-inputs in.yaml -outputs out.yaml [-context ctx.yaml] [-keys keys.yaml] | -online [-save-draft])
  suggest -inputs in.yaml -outputs out.yaml [-limit n]
  url     -descriptor type/name/path [-schema] [-options] [-search]`)
}

// dump writes v to stderr when -debug is set.
func (a *app) dump(label string, v any) {
	if !a.debug {
		return
	}

	fmt.Fprintf(os.Stderr, "=== %s ===\n", label)
	spew.Fdump(os.Stderr, v)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mapper-engine: "+format+"\n", args...)
	os.Exit(1)
}
