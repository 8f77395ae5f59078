// Package aggregate folds per-file rule reports into directory and
// project rollups, and restricts the file set to a requested subtree.
package aggregate

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

// Build folds non-empty FileReports into the aggregate tree. Counts
// sum associatively, so file order never changes the result; Files is
// sorted by path for stable rendering.
func Build(files []ir.FileReport, root, stripPrefix string) ir.Report {
	rep := ir.Report{Directories: map[string]ir.Counts{}}

	sorted := make([]ir.FileReport, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, f := range sorted {
		if f.Counts.Total == 0 {
			continue
		}
		rep.Total.Merge(f.Counts)

		dir := DisplayPath(filepath.Dir(f.Path), root, stripPrefix)
		dc := rep.Directories[dir]
		dc.Merge(f.Counts)
		rep.Directories[dir] = dc

		rep.Files = append(rep.Files, ir.FileSummary{
			File:   DisplayPath(f.Path, root, stripPrefix),
			Counts: f.Counts,
			Rules:  f.Rules,
		})
	}
	return rep
}

// DisplayPath renders a path relative to root, in slash form, with
// the display prefix (typically "packages/") stripped. Cosmetic only:
// two distinct directories always keep distinct keys because the
// prefix is a fixed leading segment.
func DisplayPath(path, root, stripPrefix string) string {
	p := path
	if filepath.IsAbs(p) && root != "" {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	p = filepath.ToSlash(p)
	if stripPrefix != "" {
		p = strings.TrimPrefix(p, stripPrefix)
	}
	return p
}
