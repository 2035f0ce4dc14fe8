package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRoot(t *testing.T) (root, outside string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "rfqs")
	outside = filepath.Join(base, "elsewhere")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024"), 0o750))
	require.NoError(t, os.MkdirAll(outside, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2024", "rfq.pdf"), []byte("%PDF-1.4"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.pdf"), []byte("%PDF-1.4"), 0o600))
	return root, outside
}

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator("/non/existent/path/../path")
	require.NoError(t, err)
	assert.Equal(t, "/non/existent/path", v.GetConfiguredDirectory())
}

func TestPathValidator_ValidatePath(t *testing.T) {
	root, outside := setupRoot(t)
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"file in subdirectory", filepath.Join(root, "2024", "rfq.pdf"), false},
		{"root itself", root, false},
		{"not yet created", filepath.Join(root, "new.pdf"), false},
		{"outside", filepath.Join(outside, "secret.pdf"), true},
		{"traversal", filepath.Join(root, "..", "elsewhere", "secret.pdf"), true},
		{"sibling with shared prefix", root + "-old/rfq.pdf", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	root, outside := setupRoot(t)
	link := filepath.Join(root, "link.pdf")
	if err := os.Symlink(filepath.Join(outside, "secret.pdf"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	err = v.ValidatePath(link)
	assert.ErrorIs(t, err, ErrOutsideDirectory)
}

func TestPathValidator_NormalizePath(t *testing.T) {
	root, _ := setupRoot(t)
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	got, err := v.NormalizePath("2024/rfq.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024", "rfq.pdf"), got)

	_, err = v.NormalizePath("../elsewhere/secret.pdf")
	assert.ErrorIs(t, err, ErrOutsideDirectory)

	_, err = v.NormalizePath("")
	assert.Error(t, err)
}

func TestPathValidator_ValidateDirectory(t *testing.T) {
	root, outside := setupRoot(t)
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	assert.NoError(t, v.ValidateDirectory(filepath.Join(root, "2024")))
	assert.NoError(t, v.ValidateDirectory(filepath.Join(root, "later")))
	assert.Error(t, v.ValidateDirectory(filepath.Join(root, "2024", "rfq.pdf")))
	assert.Error(t, v.ValidateDirectory(outside))
}

func TestPathValidator_SanitizePath(t *testing.T) {
	root, _ := setupRoot(t)
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	got, err := v.SanitizePath("2024/rfq\x00.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024", "rfq.pdf"), got)
}
