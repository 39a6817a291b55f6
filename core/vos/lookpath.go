package vos

import (
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(proc VProc, file string) error {
	d, err := proc.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted. The result may be an absolute path or a path
// relative to the current directory.
//
// A file that exists on the PATH but is not executable yields
// fs.ErrPermission if no executable match is found later in the PATH.
func LookPath(proc VProc, file string) (string, error) {
	if strings.Contains(file, "/") {
		err := findExecutable(proc, file)
		if err == nil {
			return file, nil
		}
		return "", err
	}

	lastErr := ErrNotFound
	path := proc.Getenv(EnvPath)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, ".") {
			path = "." + string(filepath.Separator) + path
		}
		err := findExecutable(proc, path)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			lastErr = err
		}
	}
	return "", lastErr
}
