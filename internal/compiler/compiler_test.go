package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/penquin-lang/penquin/internal/config"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/testutil"
)

var project = map[string]string{
	"main.pq": `import "math";
import "std:io";

extern fn printf(fmt: *s1, ...);

fn main() {
	io::print(math::add(1, 2));
}
`,
	"math.pq": `import "std:io";

fn add(a: s4, b: s4): s4 {
	return a + b;
}
`,
	"std/io.pq": `extern fn printf(fmt: *s1, ...);

fn print(n: s4) {
	printf("%d\n", n);
}
`,
}

func newCompiler(t *testing.T, dir string, opts Options) *Compiler {
	t.Helper()
	envs := &config.Envs{
		STD:       filepath.Join(dir, "std"),
		CC:        "cc",
		BUILD_DIR: t.TempDir(),
	}
	c := New(envs, opts, testutil.NewCollector())
	c.Out = &bytes.Buffer{}
	return c
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, project)
	c := newCompiler(t, dir, Options{Jobs: 2})

	entry, loaded, err := c.Load(context.Background(), filepath.Join(dir, "main.pq"))
	be.Err(t, err, nil)
	be.Equal(t, entry.Path, filepath.ToSlash(filepath.Join(dir, "main")))
	be.Equal(t, len(loaded), 3)
	be.Err(t, c.Check(loaded), nil)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, project)
	c := newCompiler(t, dir, Options{})

	ctx := context.Background()
	_, loaded, err := c.Load(ctx, filepath.Join(dir, "main.pq"))
	be.Err(t, err, nil)

	units, err := c.Generate(ctx, loaded)
	be.Err(t, err, nil)
	defer DisposeUnits(units)
	be.Equal(t, len(units), 3)

	mathPath := filepath.ToSlash(filepath.Join(dir, "math"))
	ioPath := filepath.ToSlash(filepath.Join(dir, "std", "io"))
	for _, unit := range units {
		switch unit.Path {
		case mathPath:
			add := unit.Module.NamedFunction(mathPath + "@add")
			be.True(t, add.BasicBlocksCount() > 0)
		case ioPath:
			printFn := unit.Module.NamedFunction(ioPath + "@print")
			be.True(t, printFn.BasicBlocksCount() > 0)
		default:
			main := unit.Module.NamedFunction("main")
			be.True(t, main.BasicBlocksCount() > 0)
			be.Equal(t, unit.Module.NamedFunction(mathPath+"@add").BasicBlocksCount(), 0)
			be.Equal(t, unit.Module.NamedFunction(ioPath+"@print").BasicBlocksCount(), 0)
		}
	}
}

func TestBuildEmitIR(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, project)
	out := t.TempDir()
	c := newCompiler(t, dir, Options{EmitIR: true, Output: filepath.Join(out, "app")})

	produced, err := c.Build(context.Background(), filepath.Join(dir, "main.pq"))
	be.Err(t, err, nil)
	be.Equal(t, len(produced), 3)
	for _, irPath := range produced {
		be.Equal(t, filepath.Dir(irPath), out)
		be.Equal(t, filepath.Ext(irPath), ".ll")
		content, err := os.ReadFile(irPath)
		be.Err(t, err, nil)
		be.True(t, strings.Contains(string(content), "define "))
	}
}

func TestDebugDump(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"main.pq": "fn main() {}\n"})
	c := newCompiler(t, dir, Options{DebugDump: true})

	ctx := context.Background()
	_, loaded, err := c.Load(ctx, filepath.Join(dir, "main.pq"))
	be.Err(t, err, nil)
	units, err := c.Generate(ctx, loaded)
	be.Err(t, err, nil)
	defer DisposeUnits(units)

	dump := c.Out.(*bytes.Buffer).String()
	be.True(t, strings.Contains(dump, "(fn main () (block))"))
	be.True(t, strings.Contains(dump, "define void @main()"))
}

func TestBuildRemovesObjectsOnLinkFailure(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, project)
	c := newCompiler(t, dir, Options{Output: filepath.Join(t.TempDir(), "app")})
	c.Ctx.Backend.CC = filepath.Join(dir, "no-such-cc")

	_, err := c.Build(context.Background(), filepath.Join(dir, "main.pq"))
	be.True(t, err != nil)
	kind, _ := diagnostics.KindOf(err)
	be.Equal(t, kind, diagnostics.BACKEND)

	entries, err := os.ReadDir(c.Ctx.Backend.BuildDir)
	be.Err(t, err, nil)
	be.Equal(t, len(entries), 0)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		kind  diagnostics.Kind
	}{
		{
			name:  "missing import",
			files: map[string]string{"main.pq": `import "nope"; fn main() {}`},
			kind:  diagnostics.TYPE,
		},
		{
			name: "syntax error in dependency",
			files: map[string]string{
				"main.pq": `import "dep"; fn main() {}`,
				"dep.pq":  "fn broken( {}",
			},
			kind: diagnostics.SYNTAX,
		},
		{
			name:  "lexical error",
			files: map[string]string{"main.pq": "fn main() { x = $; }"},
			kind:  diagnostics.LEXICAL,
		},
		{
			name:  "unknown type",
			files: map[string]string{"main.pq": "fn main(x: u4) {}"},
			kind:  diagnostics.TYPE,
		},
		{
			name: "undefined function",
			files: map[string]string{
				"main.pq": `import "dep"; fn main() { dep::missing(); }`,
				"dep.pq":  "fn present() {}",
			},
			kind: diagnostics.TYPE,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, test.files)
			c := newCompiler(t, dir, Options{EmitIR: true, Output: filepath.Join(dir, "app")})

			_, err := c.Build(context.Background(), filepath.Join(dir, "main.pq"))
			be.True(t, err != nil)
			kind, ok := diagnostics.KindOf(err)
			be.True(t, ok)
			be.Equal(t, kind, test.kind)
			be.True(t, c.Ctx.Collector.HasErrors())
		})
	}
}

func TestOutputPath(t *testing.T) {
	c := newCompiler(t, t.TempDir(), Options{})
	be.Equal(t, c.OutputPath("dir/hello.pq"), "hello")

	c.Opts.Output = "bin/app"
	be.Equal(t, c.OutputPath("dir/hello.pq"), "bin/app")
}

func TestNewUsesEnvDefaults(t *testing.T) {
	envs := &config.Envs{STD: "/std", Jobs: 3, Debug: true}
	c := New(envs, Options{}, testutil.NewCollector())
	be.Equal(t, c.Opts.Jobs, 3)
	be.True(t, c.Opts.DebugDump)
	be.Equal(t, c.Ctx.Registry.StdRoot, "/std")
}
