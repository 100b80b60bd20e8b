// Package fs holds some utilities for manipulating the file system
package fs

import (
	"fmt"
	"os"
	"os/user"
	"path"
)

const defaultDirectoryPermission = 0740

// SecretFilePermission is the permission of files holding secret keys.
const SecretFilePermission = 0600

// HomeFolder returns the home folder of the current user
func HomeFolder() string {
	u, err := user.Current()
	if err != nil {
		panic(err)
	}
	return u.HomeDir
}

// CreateSecureFolder checks if the folder exists and has the appropriate
// permission rights, creating it when it does not exist. It returns an error
// when the folder exists with different permissions.
func CreateSecureFolder(folder string) (string, error) {
	exists, err := Exists(folder)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := os.MkdirAll(folder, defaultDirectoryPermission); err != nil {
			return "", fmt.Errorf("creating folder %s: %w", folder, err)
		}
		// umask may have cleared some of the bits
		if err := os.Chmod(folder, defaultDirectoryPermission); err != nil {
			return "", fmt.Errorf("setting permission of %s: %w", folder, err)
		}
		return folder, nil
	}

	info, err := os.Lstat(folder)
	if err != nil {
		return "", fmt.Errorf("checking folder %s: %w", folder, err)
	}
	perm := info.Mode().Perm()
	if perm != defaultDirectoryPermission {
		return "", fmt.Errorf("folder %s has permission %#o instead of %#o", folder, perm, defaultDirectoryPermission)
	}
	return folder, nil
}

// Exists returns whether the given file or directory exists.
func Exists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return true, err
}

// CreateSecureFile creates a file with wr permission for user only and returns
// the file handle.
func CreateSecureFile(file string) (*os.File, error) {
	fd, err := os.Create(file)
	if err != nil {
		return nil, err
	}
	fd.Close()
	if err := os.Chmod(file, SecretFilePermission); err != nil {
		return nil, err
	}
	return os.OpenFile(file, os.O_RDWR|os.O_TRUNC, SecretFilePermission)
}

// Files returns the list of file names included in the given path or error if
// any.
func Files(folderPath string) ([]string, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range entries {
		if !f.IsDir() {
			files = append(files, path.Join(folderPath, f.Name()))
		}
	}
	return files, nil
}

// FileExists returns true if the given name is a file in the given path. name
// must be the "basename" of the file and path must be the folder where it lies.
func FileExists(filePath, name string) bool {
	list, err := Files(filePath)
	if err != nil {
		return false
	}

	for _, l := range list {
		if l == path.Join(filePath, name) {
			return true
		}
	}

	return false
}
