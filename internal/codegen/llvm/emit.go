package llvm

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/penquin-lang/penquin/internal/config"
	"github.com/penquin-lang/penquin/internal/diagnostics"
	"golang.org/x/sys/unix"
	"tinygo.org/x/go-llvm"
)

var (
	initTargetOnce sync.Once
	initTargetErr  error

	// target machines are not safe for concurrent emission
	emitMu sync.Mutex
)

func initTarget() error {
	initTargetOnce.Do(func() {
		if err := llvm.InitializeNativeTarget(); err != nil {
			initTargetErr = err
			return
		}
		initTargetErr = llvm.InitializeNativeAsmPrinter()
	})
	return initTargetErr
}

// Backend turns generated units into object files and links them.
type Backend struct {
	BuildDir  string
	CC        string
	BuildType config.BuildType
	Collector *diagnostics.Collector
}

func NewBackend(envs *config.Envs, buildType config.BuildType, collector *diagnostics.Collector) *Backend {
	return &Backend{
		BuildDir:  envs.BUILD_DIR,
		CC:        envs.CC,
		BuildType: buildType,
		Collector: collector,
	}
}

func (b *Backend) backendError(format string, args ...any) error {
	return b.Collector.ReportAndSave(diagnostics.Newf(diagnostics.BACKEND, format, args...))
}

// CheckBuildDir makes sure objects can be written to the build directory.
func (b *Backend) CheckBuildDir() error {
	if err := unix.Access(b.BuildDir, unix.W_OK); err != nil {
		return b.backendError("build directory '%s' is not writable: %s", b.BuildDir, err)
	}
	return nil
}

func (b *Backend) ObjectPath(unit *Unit) string {
	return filepath.Join(b.BuildDir, unit.Name+".o")
}

// EmitObject compiles unit for the host and writes it to
// <build-dir>/<unit>.o, returning the path written.
func (b *Backend) EmitObject(unit *Unit) (string, error) {
	if err := initTarget(); err != nil {
		return "", b.backendError("could not initialize native target: %s", err)
	}

	emitMu.Lock()
	defer emitMu.Unlock()

	triple := llvm.DefaultTargetTriple()
	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return "", b.backendError("unknown target '%s': %s", triple, err)
	}

	optLevel := llvm.CodeGenLevelNone
	if b.BuildType == config.RELEASE {
		optLevel = llvm.CodeGenLevelAggressive
	}
	machine := target.CreateTargetMachine(triple, "", "", optLevel, llvm.RelocPIC, llvm.CodeModelDefault)
	defer machine.Dispose()

	targetData := machine.CreateTargetData()
	defer targetData.Dispose()
	unit.Module.SetTarget(triple)
	unit.Module.SetDataLayout(targetData.String())

	buffer, err := machine.EmitToMemoryBuffer(unit.Module, llvm.ObjectFile)
	if err != nil {
		return "", b.backendError("could not emit '%s': %s", unit.Path, err)
	}
	defer buffer.Dispose()

	objectPath := b.ObjectPath(unit)
	if err := os.WriteFile(objectPath, buffer.Bytes(), 0o644); err != nil {
		return "", b.backendError("could not write '%s': %s", objectPath, err)
	}
	return objectPath, nil
}

// WriteIR writes the textual IR of unit to <dir>/<unit>.ll.
func (b *Backend) WriteIR(unit *Unit, dir string) (string, error) {
	irPath := filepath.Join(dir, unit.Name+".ll")
	if err := os.WriteFile(irPath, []byte(unit.IR()), 0o644); err != nil {
		return "", b.backendError("could not write '%s': %s", irPath, err)
	}
	return irPath, nil
}

// LinkCommand is the C compiler invocation that links objects into output.
func (b *Backend) LinkCommand(objects []string, output string) *exec.Cmd {
	args := append([]string{}, b.BuildType.LinkFlags()...)
	args = append(args, objects...)
	args = append(args, "-o", output)
	return exec.Command(b.CC, args...)
}

func (b *Backend) Link(objects []string, output string) error {
	cmd := b.LinkCommand(objects, output)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if config.DEV {
		fmt.Printf("[DEV MODE] LINK COMMAND: %s\n", cmd)
	}
	if err := cmd.Run(); err != nil {
		return b.backendError(
			"link failed: %s: %s\n%s",
			strings.Join(cmd.Args, " "),
			err,
			strings.TrimSpace(stderr.String()),
		)
	}
	return nil
}

// RemoveObjects deletes emitted objects, skipping the ones already gone.
func RemoveObjects(objects []string) {
	for _, object := range objects {
		_ = os.Remove(object)
	}
}
