// Package ingest turns user-supplied paths into the ordered list of page
// images a run will process: directory walks, PDF rasterization, exotic
// format conversion, and a watch mode for drop directories.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kwheaton/canvass/constants"
)

// Discover expands paths (files or directories) into allowed source files.
// Hidden files and directories are skipped. Results come back in natural
// filename order so page2 precedes page10.
func Discover(paths []string, skipHidden bool) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if constants.IsAllowedExt(filepath.Ext(p)) {
				addUnique(&out, seen, p)
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if skipHidden && isHidden(path) && path != p {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if constants.IsAllowedExt(filepath.Ext(path)) {
				addUnique(&out, seen, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i], out[j]) })
	return out, nil
}

func addUnique(out *[]string, seen map[string]struct{}, path string) {
	if _, ok := seen[path]; ok {
		return
	}
	seen[path] = struct{}{}
	*out = append(*out, path)
}

func isHidden(path string) bool {
	return len(filepath.Base(path)) > 0 && filepath.Base(path)[0] == '.'
}

// naturalLess orders strings with digit runs compared numerically, so
// "page2.png" sorts before "page10.png".
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ia, jb := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[ia:i], "0")
			nb := strings.TrimLeft(b[jb:j], "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
