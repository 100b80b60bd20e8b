package fs

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecureDirAlreadyHere(t *testing.T) {
	tmpPath := path.Join(t.TempDir(), "config")

	fpath, err := CreateSecureFolder(tmpPath)
	require.NoError(t, err)
	require.Equal(t, tmpPath, fpath)

	npath, err := CreateSecureFolder(tmpPath)
	require.NoError(t, err)
	require.Equal(t, fpath, npath)

	b, e := Exists(npath)
	require.True(t, b)
	require.NoError(t, e)

	b, e = Exists(path.Join(tmpPath, "blou"))
	require.False(t, b)
	require.NoError(t, e)
}

func TestSecureDirAlreadyHereWrongPerm(t *testing.T) {
	tmpPath := path.Join(t.TempDir(), "config")
	require.NoError(t, os.Mkdir(tmpPath, 0777))
	require.NoError(t, os.Chmod(tmpPath, 0777))

	_, err := CreateSecureFolder(tmpPath)
	require.Error(t, err)
}

func TestSecureFile(t *testing.T) {
	tmpPath := t.TempDir()
	file := path.Join(tmpPath, "secured")

	f, err := CreateSecureFile(file)
	require.NoError(t, err)
	require.NotNil(t, f)
	_, err = f.WriteString("secret")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(SecretFilePermission), info.Mode().Perm())

	// recreating truncates
	f, err = CreateSecureFile(file)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Empty(t, content)

	require.NoError(t, os.Mkdir(path.Join(tmpPath, "sub"), 0700))
	files, err := Files(tmpPath)
	require.NoError(t, err)
	require.Equal(t, []string{file}, files)

	require.True(t, FileExists(tmpPath, "secured"))
	require.False(t, FileExists(tmpPath, "sub"))
	require.False(t, FileExists(path.Join(tmpPath, "nope"), "secured"))
}
