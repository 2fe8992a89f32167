package modules

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/parser"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Registry caches parsed modules by canonical module path for the length of
// one compiler run. The first module stored under a path wins; concurrent
// loads of the same path share a single parse.
type Registry struct {
	StdRoot   string
	Collector *diagnostics.Collector

	mu      sync.RWMutex
	modules map[string]*ast.Module
	group   singleflight.Group
}

func NewRegistry(stdRoot string, collector *diagnostics.Collector) *Registry {
	return &Registry{
		StdRoot:   stdRoot,
		Collector: collector,
		modules:   make(map[string]*ast.Module),
	}
}

func (registry *Registry) Get(modulePath string) (*ast.Module, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	module, ok := registry.modules[modulePath]
	return module, ok
}

// Add stores module unless its path is already taken and returns the module
// that ends up registered.
func (registry *Registry) Add(module *ast.Module) *ast.Module {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if existing, ok := registry.modules[module.Path]; ok {
		return existing
	}
	registry.modules[module.Path] = module
	return module
}

// Modules returns every registered module ordered by path.
func (registry *Registry) Modules() []*ast.Module {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	modules := make([]*ast.Module, 0, len(registry.modules))
	for _, module := range registry.modules {
		modules = append(modules, module)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })
	return modules
}

// Load parses filePath unless a module with the same canonical path is
// already registered.
func (registry *Registry) Load(filePath string) (*ast.Module, error) {
	modulePath := ModulePath(filePath)
	if module, ok := registry.Get(modulePath); ok {
		return module, nil
	}

	result, err, _ := registry.group.Do(modulePath, func() (any, error) {
		if module, ok := registry.Get(modulePath); ok {
			return module, nil
		}
		src, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		module, err := parser.ParseSource(modulePath, filePath, src, registry.Collector)
		if err != nil {
			return nil, err
		}
		return registry.Add(module), nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*ast.Module), nil
}

// ImportPath is the file an import statement of importer refers to.
func (registry *Registry) ImportPath(importer *ast.Module, imp *ast.Import) string {
	return ResolvePath(filepath.Dir(importer.FilePath), imp.Path.Name(), registry.StdRoot)
}

// Resolve finds, loading it if needed, the module imp refers to.
func (registry *Registry) Resolve(importer *ast.Module, imp *ast.Import) (*ast.Module, error) {
	filePath := registry.ImportPath(importer, imp)
	module, err := registry.Load(filePath)
	if err != nil {
		if _, ok := diagnostics.KindOf(err); ok {
			return nil, err
		}
		return nil, registry.Collector.ReportAndSave(diagnostics.At(
			diagnostics.TYPE,
			imp.Pos(),
			"cannot import \"%s\": %s",
			imp.Path.Name(),
			err,
		))
	}
	return module, nil
}

// LoadAll loads the entry module and every module reachable through its
// imports, using at most jobs goroutines (unbounded when jobs <= 0).
func (registry *Registry) LoadAll(ctx context.Context, entryFile string, jobs int) (*ast.Module, error) {
	entry, err := registry.Load(entryFile)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	var seen sync.Map
	seen.Store(entry.Path, true)

	var visit func(module *ast.Module) error
	visit = func(module *ast.Module) error {
		for _, imp := range module.Imports() {
			key := ModulePath(registry.ImportPath(module, imp))
			if _, loaded := seen.LoadOrStore(key, true); loaded {
				continue
			}

			load := func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				dep, err := registry.Resolve(module, imp)
				if err != nil {
					return err
				}
				return visit(dep)
			}
			// A worker that cannot get a slot does the work itself instead
			// of blocking on the limit it is holding.
			if !g.TryGo(load) {
				if err := load(); err != nil {
					return err
				}
			}
		}
		return nil
	}

	g.Go(func() error { return visit(entry) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entry, nil
}
