package modules

import (
	"path"
	"path/filepath"
	"strings"
)

const (
	Extension = ".pq"
	StdPrefix = "std:"
)

// ResolvePath maps an import name to a source file. Names carrying the std
// prefix live under stdRoot, every other name is relative to baseDir.
func ResolvePath(baseDir, name, stdRoot string) string {
	if rest, ok := strings.CutPrefix(name, StdPrefix); ok {
		return filepath.Join(stdRoot, rest+Extension)
	}
	return filepath.Join(baseDir, name+Extension)
}

// ModulePath is the canonical path of the module stored in filePath: the
// cleaned, slash separated path without its extension. It keys the
// registry and prefixes qualified names.
func ModulePath(filePath string) string {
	clean := filepath.ToSlash(filepath.Clean(filePath))
	return strings.TrimSuffix(clean, path.Ext(clean))
}

// Alias is the local name an import is referred to by: the last path
// element without extension.
func Alias(importName string) string {
	name := strings.TrimPrefix(importName, StdPrefix)
	return strings.TrimSuffix(path.Base(filepath.ToSlash(name)), Extension)
}

var unitReplacer = strings.NewReplacer("/", "_", ".", "_", ":", "_")

// UnitName turns a module path into something usable as a file name.
func UnitName(modulePath string) string {
	return unitReplacer.Replace(strings.TrimLeft(modulePath, "/"))
}
