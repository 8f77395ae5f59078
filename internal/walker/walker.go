// Package walker discovers spec files under a source tree root.
package walker

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options selects which files under Root are spec files.
type Options struct {
	Root         string
	Extension    string   // e.g. ".rs"
	SpecSegment  string   // required directory segment, e.g. "specs"
	ExcludeDirs  []string // directory names pruned from the walk
	ExcludeGlobs []string // doublestar patterns over root-relative slash paths
}

// FindSpecFiles walks Root and returns the sorted absolute paths of
// candidate spec files. Excluded directories are pruned, the spec
// segment gate applies to the root-relative path, and exclude globs
// are matched against the slash-form relative path.
func FindSpecFiles(opts Options) ([]string, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excluded[d] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), opts.Extension) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		relSlash := filepath.ToSlash(rel)
		if !hasSegment(relSlash, opts.SpecSegment) {
			return nil
		}
		for _, g := range opts.ExcludeGlobs {
			if ok, _ := doublestar.Match(g, relSlash); ok {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// hasSegment reports whether the slash path contains seg as a whole
// directory segment (not the file name itself).
func hasSegment(relSlash, seg string) bool {
	if seg == "" {
		return true
	}
	parts := strings.Split(relSlash, "/")
	for _, p := range parts[:len(parts)-1] {
		if p == seg {
			return true
		}
	}
	return false
}
