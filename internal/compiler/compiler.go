// Package compiler drives one compiler run: it loads the entry module and
// everything it imports, checks every module, generates one LLVM unit per
// module and hands the units to the backend.
package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/codegen/llvm"
	"github.com/penquin-lang/penquin/internal/config"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/modules"
	"github.com/penquin-lang/penquin/internal/sema"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	BuildType config.BuildType
	// Output is the executable path. Defaults to the entry file name without
	// its extension.
	Output    string
	EmitIR    bool
	DebugDump bool
	Jobs      int
}

// CompilationContext is the state shared by every stage of one run.
type CompilationContext struct {
	Envs      *config.Envs
	Registry  *modules.Registry
	Collector *diagnostics.Collector
	Backend   *llvm.Backend
}

func NewContext(envs *config.Envs, buildType config.BuildType, collector *diagnostics.Collector) *CompilationContext {
	return &CompilationContext{
		Envs:      envs,
		Registry:  modules.NewRegistry(envs.STD, collector),
		Collector: collector,
		Backend:   llvm.NewBackend(envs, buildType, collector),
	}
}

type Compiler struct {
	Ctx  *CompilationContext
	Opts Options

	// debug dumps go here
	Out io.Writer
}

func New(envs *config.Envs, opts Options, collector *diagnostics.Collector) *Compiler {
	if opts.Jobs <= 0 {
		opts.Jobs = envs.Jobs
	}
	opts.DebugDump = opts.DebugDump || envs.Debug
	return &Compiler{
		Ctx:  NewContext(envs, opts.BuildType, collector),
		Opts: opts,
		Out:  os.Stdout,
	}
}

// Load parses the entry module and, transitively, every module it imports.
// It returns all loaded modules ordered by path.
func (c *Compiler) Load(ctx context.Context, entryFile string) (*ast.Module, []*ast.Module, error) {
	entry, err := c.Ctx.Registry.LoadAll(ctx, entryFile, c.Opts.Jobs)
	if err != nil {
		return nil, nil, err
	}
	loaded := c.Ctx.Registry.Modules()
	if c.Opts.DebugDump {
		for _, module := range loaded {
			fmt.Fprintln(c.Out, ast.Sprint(module))
		}
	}
	return entry, loaded, nil
}

func (c *Compiler) Check(loaded []*ast.Module) error {
	for _, module := range loaded {
		if err := sema.New(c.Ctx.Collector).Check(module); err != nil {
			return err
		}
	}
	return nil
}

// Generate lowers every module into its own unit, in parallel. On failure
// the units already generated are disposed.
func (c *Compiler) Generate(ctx context.Context, loaded []*ast.Module) ([]*llvm.Unit, error) {
	units := make([]*llvm.Unit, len(loaded))

	g, ctx := errgroup.WithContext(ctx)
	if c.Opts.Jobs > 0 {
		g.SetLimit(c.Opts.Jobs)
	}
	for i, module := range loaded {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			unit, err := llvm.Generate(module, c.Ctx.Registry, c.Ctx.Collector)
			if err != nil {
				return err
			}
			units[i] = unit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		DisposeUnits(units)
		return nil, err
	}

	if c.Opts.DebugDump {
		for _, unit := range units {
			fmt.Fprintf(c.Out, "; unit %s\n%s", unit.Name, unit.IR())
		}
	}
	return units, nil
}

func DisposeUnits(units []*llvm.Unit) {
	for _, unit := range units {
		if unit != nil {
			unit.Dispose()
		}
	}
}

func (c *Compiler) OutputPath(entryFile string) string {
	if c.Opts.Output != "" {
		return c.Opts.Output
	}
	base := filepath.Base(entryFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Build compiles entryFile into an executable, or into one .ll file per
// module next to the output when EmitIR is set. It returns the paths of the
// files produced.
func (c *Compiler) Build(ctx context.Context, entryFile string) (produced []string, err error) {
	_, loaded, err := c.Load(ctx, entryFile)
	if err != nil {
		return nil, err
	}
	if err := c.Check(loaded); err != nil {
		return nil, err
	}

	units, err := c.Generate(ctx, loaded)
	if err != nil {
		return nil, err
	}
	defer DisposeUnits(units)

	output := c.OutputPath(entryFile)
	backend := c.Ctx.Backend

	if c.Opts.EmitIR {
		var irFiles []string
		for _, unit := range units {
			irPath, err := backend.WriteIR(unit, filepath.Dir(output))
			if err != nil {
				return nil, err
			}
			irFiles = append(irFiles, irPath)
		}
		return irFiles, nil
	}

	if err := backend.CheckBuildDir(); err != nil {
		return nil, err
	}

	var objects []string
	defer func() {
		if err == nil && config.DEV {
			fmt.Fprintf(c.Out, "[DEV MODE] keeping objects: %s\n", strings.Join(objects, " "))
			return
		}
		llvm.RemoveObjects(objects)
	}()

	for _, unit := range units {
		objectPath, err := backend.EmitObject(unit)
		if err != nil {
			return nil, err
		}
		objects = append(objects, objectPath)
	}

	if err := backend.Link(objects, output); err != nil {
		return nil, err
	}
	return []string{output}, nil
}
