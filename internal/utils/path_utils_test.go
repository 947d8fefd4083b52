package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleName(t *testing.T) {
	root := filepath.FromSlash("/src/project")
	tests := []struct {
		path string
		want string
	}{
		{"/src/project/main.py", "main"},
		{"/src/project/pkg/util.py", "pkg.util"},
		{"/src/project/pkg/__init__.py", "pkg"},
		{"/src/project/stubs/os.pyi", "stubs.os"},
		{"/elsewhere/tool.py", "tool"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ModuleName(root, filepath.FromSlash(tt.path)), tt.path)
	}
}

func TestGetModuleDir(t *testing.T) {
	assert.Equal(t, filepath.FromSlash("pkg"), GetModuleDir(filepath.FromSlash("pkg/util.py")))
	assert.Equal(t, "pkg", GetModuleDir("pkg"))
	assert.Equal(t, "util", ExtractModuleName(filepath.FromSlash("pkg/util.py")))
}
