package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/hintinfer/internal/config"
	"github.com/funvibe/hintinfer/internal/inference"
	"github.com/funvibe/hintinfer/internal/pipeline"
	"github.com/funvibe/hintinfer/internal/utils"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, color))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, color bool) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, usage)
		return 2
	}
	if opts.help {
		fmt.Fprint(stdout, usage)
		return 0
	}

	root, files, err := collectFiles(opts.paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg, err := loadConfig(opts, root)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var stateOpts []inference.Option
	if opts.debug {
		stateOpts = append(stateOpts, inference.WithLogOutput(stderr))
	}
	s, err := inference.NewState(cfg, stateOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer s.Close()
	if opts.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		s.WithContext(ctx)
	}

	// Every file is loaded before any is inferred so imports between them
	// resolve.
	load := pipeline.New(pipeline.ReadProcessor{}, pipeline.LoadProcessor{})
	contexts := make([]*pipeline.PipelineContext, len(files))
	for i, path := range files {
		ctx := pipeline.NewPipelineContext("")
		ctx.FilePath = path
		ctx.ModuleName = utils.ModuleName(root, path)
		ctx.State = s
		contexts[i] = load.Run(ctx)
	}

	failed := false
	reportErrors := pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		for _, err := range ctx.Errors {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			failed = true
		}
		return ctx
	})
	infer := pipeline.New(pipeline.SignatureProcessor{}, reportErrors)
	for i, ctx := range contexts {
		contexts[i] = infer.Run(ctx)
	}

	if opts.json {
		if err := writeJSON(stdout, s, root, contexts); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		writeText(stdout, root, contexts, color && !opts.noColor)
	}
	if failed {
		return 1
	}
	return 0
}

// collectFiles expands the command line paths into source files. The root
// that module names are derived from is the first path's directory.
func collectFiles(paths []string) (string, []string, error) {
	var root string
	var files []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", nil, err
		}
		if !info.IsDir() && !config.HasSourceExt(abs) {
			return "", nil, fmt.Errorf("%s is not a source file", path)
		}
		if root == "" {
			root = utils.GetModuleDir(abs)
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}
		err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != abs && (strings.HasPrefix(d.Name(), ".") || d.Name() == "__pycache__") {
					return filepath.SkipDir
				}
				return nil
			}
			if config.HasSourceExt(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return "", nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	if len(files) == 0 {
		return "", nil, fmt.Errorf("no source files in %s", strings.Join(paths, ", "))
	}
	return root, files, nil
}

func loadConfig(opts *options, root string) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		found, err := config.FindConfig(root)
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.target != "" {
		if err := cfg.SetTarget(opts.target); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
