package llvm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/penquin-lang/penquin/internal/ast"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"github.com/penquin-lang/penquin/internal/testutil"
	"tinygo.org/x/go-llvm"
)

type mapResolver map[string]*ast.Module

func (resolver mapResolver) Resolve(importer *ast.Module, imp *ast.Import) (*ast.Module, error) {
	module, ok := resolver[imp.Path.Name()]
	if !ok {
		return nil, fmt.Errorf("no module named %q", imp.Path.Name())
	}
	return module, nil
}

func generate(t *testing.T, src string, deps map[string]string) (*Unit, error) {
	t.Helper()
	resolver := mapResolver{}
	for name, depSrc := range deps {
		resolver[name] = testutil.ParseModule(t, name, depSrc)
	}
	module := testutil.ParseModule(t, "test", src)
	unit, err := Generate(module, resolver, testutil.NewCollector())
	if unit != nil {
		t.Cleanup(unit.Dispose)
	}
	return unit, err
}

func mustGenerate(t *testing.T, src string, deps map[string]string) *Unit {
	t.Helper()
	unit, err := generate(t, src, deps)
	be.Err(t, err, nil)
	return unit
}

func instructions(fn llvm.Value) []llvm.Value {
	var insts []llvm.Value
	for bb := fn.FirstBasicBlock(); !bb.IsNil(); bb = llvm.NextBasicBlock(bb) {
		for inst := bb.FirstInstruction(); !inst.IsNil(); inst = llvm.NextInstruction(inst) {
			insts = append(insts, inst)
		}
	}
	return insts
}

func countOpcode(fn llvm.Value, opcode llvm.Opcode) int {
	count := 0
	for _, inst := range instructions(fn) {
		if inst.InstructionOpcode() == opcode {
			count++
		}
	}
	return count
}

func allocaNames(fn llvm.Value) []string {
	var names []string
	for _, inst := range instructions(fn) {
		if inst.InstructionOpcode() == llvm.Alloca {
			names = append(names, inst.Name())
		}
	}
	return names
}

func blockNames(fn llvm.Value) []string {
	var names []string
	for bb := fn.FirstBasicBlock(); !bb.IsNil(); bb = llvm.NextBasicBlock(bb) {
		names = append(names, bb.AsValue().Name())
	}
	return names
}

func contains(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}

func TestQualifiedNames(t *testing.T) {
	src := `import "math";
extern fn printf(fmt: *s1, ...);
fn helper(): s4 { return 1; }
fn main() {
	printf("%d\n", math::add(helper(), 2));
}
`
	deps := map[string]string{
		"math": "fn add(a: s4, b: s4): s4 { return a + b; }\nfn main() {}\n",
	}
	unit := mustGenerate(t, src, deps)
	be.Equal(t, unit.Name, "test")
	be.Equal(t, unit.Path, "test")

	add := unit.Module.NamedFunction("math@add")
	be.True(t, !add.IsNil())
	be.Equal(t, add.ParamsCount(), 2)
	be.Equal(t, add.BasicBlocksCount(), 0)

	// the imported module's main never leaks into the importer
	be.True(t, unit.Module.NamedFunction("math@main").IsNil())

	printf := unit.Module.NamedFunction("printf")
	be.True(t, !printf.IsNil())
	be.Equal(t, printf.BasicBlocksCount(), 0)
	be.True(t, unit.Module.NamedFunction("test@printf").IsNil())

	be.True(t, !unit.Module.NamedFunction("test@helper").IsNil())
	be.True(t, unit.Module.NamedFunction("helper").IsNil())

	main := unit.Module.NamedFunction("main")
	be.True(t, !main.IsNil())
	be.True(t, main.BasicBlocksCount() > 0)
}

func TestAccessorToImportedExternal(t *testing.T) {
	src := `import "io";
extern fn puts(s: *s1): s4;
fn main() {
	io::puts("hi");
}`
	deps := map[string]string{"io": "extern fn puts(s: *s1): s4;"}
	unit := mustGenerate(t, src, deps)
	be.True(t, !unit.Module.NamedFunction("puts").IsNil())
	be.True(t, unit.Module.NamedFunction("io@puts").IsNil())
}

func TestImportedModuleOwnUnit(t *testing.T) {
	module := testutil.ParseModule(t, "lib/math", "fn add(a: s4, b: s4): s4 { return a + b; }")
	unit, err := Generate(module, mapResolver{}, testutil.NewCollector())
	be.Err(t, err, nil)
	defer unit.Dispose()

	be.Equal(t, unit.Name, "lib_math")
	add := unit.Module.NamedFunction("lib/math@add")
	be.True(t, !add.IsNil())
	be.True(t, add.BasicBlocksCount() > 0)
}

func TestDeclarationOrder(t *testing.T) {
	unit := mustGenerate(t, "fn main() { helper(); }\nfn helper() {}", nil)
	be.True(t, unit.Module.NamedFunction("test@helper").BasicBlocksCount() > 0)
}

func TestImplicitReturn(t *testing.T) {
	tests := []struct {
		src    string
		fnName string
		rets   int
	}{
		{"fn f() { x = 1; }", "test@f", 1},
		{"fn f() { return; }", "test@f", 1},
		{"fn f() { return; x = 1; }", "test@f", 1},
		{"fn f(x: s4) { if x { return; } }", "test@f", 2},
		{"fn f(x: s4): s4 { if x { return 1; } else { return 2; } }", "test@f", 2},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			unit := mustGenerate(t, test.src, nil)
			fn := unit.Module.NamedFunction(test.fnName)
			be.True(t, !fn.IsNil())
			be.Equal(t, countOpcode(fn, llvm.Ret), test.rets)
		})
	}
}

func TestMissingReturnIsUnreachable(t *testing.T) {
	unit := mustGenerate(t, "fn f(x: s4): s4 { if x { return 1; } }", nil)
	fn := unit.Module.NamedFunction("test@f")
	be.Equal(t, countOpcode(fn, llvm.Unreachable), 1)
}

func TestLocalStorage(t *testing.T) {
	unit := mustGenerate(t, "fn f(a: s4) { x = a + 1; while x { y = x; x = x - 1; } }", nil)
	fn := unit.Module.NamedFunction("test@f")
	names := allocaNames(fn)
	be.True(t, contains(names, "a"))
	be.True(t, contains(names, "x"))
	be.True(t, contains(names, "y"))

	// every stack slot lives in the entry block
	entry := fn.EntryBasicBlock()
	for inst := entry.FirstInstruction(); !inst.IsNil(); inst = llvm.NextInstruction(inst) {
		if inst.InstructionOpcode() != llvm.Alloca {
			break
		}
		names = names[1:]
	}
	be.Equal(t, len(names), 0)
}

func TestControlFlowBlocks(t *testing.T) {
	src := `fn f(x: s4): s4 {
	while x > 0 { x = x - 1; }
	if x == 0 { return 1; } else { return 2; }
}`
	unit := mustGenerate(t, src, nil)
	names := blockNames(unit.Module.NamedFunction("test@f"))
	for _, name := range []string{"entry", ".whileinit", ".whilebody", ".whileend", ".if", ".else", ".end"} {
		be.True(t, contains(names, name))
	}
}

func TestRestParams(t *testing.T) {
	src := `fn sum(count: s4, ...nums: s4): s4 {
	total = 0;
	i = 0;
	while i < count {
		total = total + nums[i];
		i = i + 1;
	}
	return total;
}
fn main() {
	sum(3, 1, 2, 3);
	sum(0);
}`
	unit := mustGenerate(t, src, nil)

	sum := unit.Module.NamedFunction("test@sum")
	be.Equal(t, sum.ParamsCount(), 2)
	be.Equal(t, sum.Param(1).Type().TypeKind(), llvm.PointerTypeKind)

	main := unit.Module.NamedFunction("main")
	var rest []llvm.Value
	for _, inst := range instructions(main) {
		if inst.InstructionOpcode() == llvm.Alloca && strings.HasPrefix(inst.Name(), ".rest") {
			rest = append(rest, inst)
		}
	}
	be.Equal(t, len(rest), 1)
	be.Equal(t, rest[0].AllocatedType().ArrayLength(), 3)
	be.Equal(t, countOpcode(main, llvm.Call), 2)
}

func TestVarargCall(t *testing.T) {
	src := `extern fn printf(fmt: *s1, ...): s4;
fn main() {
	printf("%d %d\n", 1, 2 == 2);
}`
	unit := mustGenerate(t, src, nil)
	printf := unit.Module.NamedFunction("printf")
	be.True(t, printf.GlobalValueType().IsFunctionVarArg())
}

func TestTopLevelInit(t *testing.T) {
	src := `counter = 10;
fn main() {
	counter = counter + 1;
}`
	unit := mustGenerate(t, src, nil)

	global := unit.Module.NamedGlobal("test@counter")
	be.True(t, !global.IsNil())

	initFn := unit.Module.NamedFunction("test@init")
	be.True(t, !initFn.IsNil())
	be.Equal(t, initFn.Linkage(), llvm.InternalLinkage)

	ctors := unit.Module.NamedGlobal("llvm.global_ctors")
	be.True(t, !ctors.IsNil())
	be.Equal(t, ctors.Linkage(), llvm.AppendingLinkage)
}

func TestNoInitWithoutTopLevelStatements(t *testing.T) {
	unit := mustGenerate(t, "fn main() {}", nil)
	be.True(t, unit.Module.NamedFunction("test@init").IsNil())
	be.True(t, unit.Module.NamedGlobal("llvm.global_ctors").IsNil())
}

func TestValues(t *testing.T) {
	tests := []string{
		`fn f() { s = "hi"; c = s[1]; }`,
		"fn f() { a = [1, 2, 3]; b = a[2]; }",
		"fn f(x: s4) { a = [x, x + 1]; b = a[0]; }",
		"fn f(): s4 { return [4, 5][1]; }",
		"fn f(p: *s2): s2 { return p[3]; }",
		"fn f(x: s8): s1 { y = x * 2 % 7; return y; }",
		"fn f() { big = 10_000_000_000; small = 1; small = big; }",
		"fn f() { { a = 1; } a = 2; }",
		"fn f(x: s4): s4 { return (x + 1) * (x - 1) / 2; }",
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			mustGenerate(t, src, nil)
		})
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		src     string
		message string
	}{
		{"fn add(a: s4, b: s4): s4 { return a + b; }\nfn main() { add(1); }", "not enough arguments"},
		{"fn add(a: s4, b: s4): s4 { return a + b; }\nfn main() { add(1, 2, 3); }", "too many arguments"},
		{"fn sum(a: s4, ...xs: s4) {}\nfn main() { sum(); }", "not enough arguments"},
		{"fn main() { y = x; }", "undefined: x"},
		{"fn main() { foo::bar(); }", "unknown module 'foo'"},
		{`import "math"; fn main() { math::sub(1); }`, "has no function 'sub'"},
		{`import "math"; fn main() { math::main(); }`, "has no function 'main'"},
		{`import "math"; extern fn puts(s: *s1): s4; fn main() { math::puts("x"); }`, "has no function 'puts'"},
		{"fn f(a: u8) {}", "unknown type 'u8'"},
		{"fn f() { return 1; }", "has no return type"},
		{"fn f(): s4 { return; }", "must return a value"},
		{`fn f(): s4 { return "x"; }`, "cannot return"},
		{"fn f() {}\nfn main() { f = 1; }", "cannot assign to function"},
		{"fn f() {}\nfn g() { x = f(); }", "has no value"},
		{`fn f() { x = 1; x = "s"; }`, "cannot assign"},
		{"fn f() { x = 1; x(); }", "is not a function"},
		{"fn init() {}\nx = 1;", "reserved"},
		{"fn f() {}\nfn f() {}", "already declared"},
	}

	deps := map[string]string{"math": "fn add(a: s4, b: s4): s4 { return a + b; }"}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			_, err := generate(t, test.src, deps)
			be.True(t, err != nil)
			kind, ok := diagnostics.KindOf(err)
			be.True(t, ok)
			be.Equal(t, kind, diagnostics.TYPE)
			be.True(t, strings.Contains(err.Error(), test.message))
		})
	}
}

func TestImportWithoutResolver(t *testing.T) {
	module := testutil.ParseModule(t, "test", `import "math";`)
	_, err := Generate(module, nil, testutil.NewCollector())
	be.True(t, err != nil)
	kind, _ := diagnostics.KindOf(err)
	be.Equal(t, kind, diagnostics.TYPE)
}

func TestImportResolverError(t *testing.T) {
	_, err := generate(t, `import "missing";`, nil)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "missing"))
}

func TestIRDump(t *testing.T) {
	unit := mustGenerate(t, "fn main() { x = 1; }", nil)
	ir := unit.IR()
	be.True(t, strings.Contains(ir, "define void @main()"))
	be.True(t, strings.Contains(ir, "%x = alloca i32"))
}
