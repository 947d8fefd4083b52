package main

import (
	"fmt"
	"strings"
	"time"
)

const usage = `Usage: hintinfer [options] <file.py|dir>...

Infers the parameter and return types of every top-level function and
method of the given source files.

Options:
  -config <path>     use this hintinfer.yaml instead of searching for one
  -target <version>  override target_version of the configuration
  -timeout <dur>     stop inferring after the given duration (e.g. 5s)
  -json              print the report as JSON
  -no-color          never colour the text report
  -debug             log inference warnings to stderr
  -help              show this help
`

type options struct {
	configPath string
	target     string
	timeout    time.Duration
	json       bool
	noColor    bool
	debug      bool
	help       bool
	paths      []string
}

// parseArgs scans the command line. Flags may appear anywhere; both -flag
// and --flag spellings are accepted.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.paths = append(opts.paths, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag -%s needs a value", name)
			}
			i++
			return args[i], nil
		}

		var err error
		switch name {
		case "config":
			opts.configPath, err = next()
		case "target":
			opts.target, err = next()
		case "timeout":
			var raw string
			if raw, err = next(); err == nil {
				opts.timeout, err = time.ParseDuration(raw)
			}
		case "json":
			opts.json = true
		case "no-color":
			opts.noColor = true
		case "debug":
			opts.debug = true
		case "help", "h":
			opts.help = true
		default:
			return nil, fmt.Errorf("unknown flag %s", arg)
		}
		if err != nil {
			return nil, err
		}
	}
	if !opts.help && len(opts.paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	return opts, nil
}
