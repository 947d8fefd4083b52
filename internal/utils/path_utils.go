package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/hintinfer/internal/config"
)

// packageInit is the file that makes a directory importable as a package.
const packageInit = "__init__"

// ExtractModuleName derives a module name from a file path.
// It takes the base filename and removes any recognized source extension.
func ExtractModuleName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}

// ModuleName derives the dotted import name of the source file at path,
// relative to root. A package's init file is named after its directory.
// Paths outside root fall back to ExtractModuleName.
func ModuleName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ExtractModuleName(path)
	}
	parts := strings.Split(filepath.ToSlash(config.TrimSourceExt(rel)), "/")
	if len(parts) > 1 && parts[len(parts)-1] == packageInit {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// GetModuleDir returns the directory context for a module path.
// If the path points to a source file, returns the file's directory.
// If the path points to a directory (no extension), returns the path itself.
func GetModuleDir(path string) string {
	if config.HasSourceExt(path) {
		return filepath.Dir(path)
	}
	return path
}
