// This software is distributed under the MIT License.
//
// You should have received a copy of the MIT License along with this program.
// If not, see <https://opensource.org/licenses/MIT>

package realpath

import (
	"errors"
	"os"
	"path"
	"strings"
)

const (
	pathSeparator = "/"
	maxLinks      = 16
)

var (
	errTooManyLinks = errors.New("too many levels of symbolic links")
)

// OS is the subset of an operating system Realpath needs.
type OS interface {
	Getwd() (dir string, err error)
	Lstat(name string) (os.FileInfo, error)
	Readlink(name string) (string, error)
}

// Realpath returns the canonical absolute path of fpath: relative paths are
// resolved against the working directory of fsys, "." and ".." components
// are removed and every symbolic link is replaced by its target.
func Realpath(fsys OS, fpath string) (string, error) {
	if len(fpath) == 0 {
		fpath = "."
	}

	if !path.IsAbs(fpath) {
		pwd, err := fsys.Getwd()
		if err != nil {
			return "", err
		}
		fpath = path.Join(pwd, fpath)
	}

	pending := strings.Split(fpath, pathSeparator)
	resolved := pathSeparator
	nlinks := 0

	for len(pending) > 0 {
		component := pending[0]
		pending = pending[1:]

		switch component {
		case "", ".":
			continue
		case "..":
			// resolved never contains links, so its parent is physical.
			resolved = path.Dir(resolved)
			continue
		}

		next := path.Join(resolved, component)
		fi, err := fsys.Lstat(next)
		if err != nil {
			return "", err
		}

		if !isSymlink(fi) {
			resolved = next
			continue
		}

		nlinks++
		if nlinks > maxLinks {
			return "", &os.PathError{Op: "realpath", Path: fpath, Err: errTooManyLinks}
		}

		link, err := fsys.Readlink(next)
		if err != nil {
			return "", err
		}
		if path.IsAbs(link) {
			resolved = pathSeparator
		}
		pending = append(strings.Split(link, pathSeparator), pending...)
	}

	return resolved, nil
}

// test if a link is symbolic link
func isSymlink(fi os.FileInfo) bool {
	return fi.Mode()&os.ModeSymlink == os.ModeSymlink
}
