package aggregate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

// ResolveTarget locates a --path filter target. Relative targets are
// tried against root first, then against the working directory. A
// target that exists nowhere is a user error.
func ResolveTarget(target, root string) (string, error) {
	p := target
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, target)
		if _, err := os.Stat(p); err != nil {
			if abs, aerr := filepath.Abs(target); aerr == nil {
				p = abs
			}
		}
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("path does not exist: %s", target)
	}
	return p, nil
}

// ByPath keeps the FileReports selected by a resolved target. A file
// target keeps exactly the report with the same canonical path; a
// directory target keeps every report at or below it in the hierarchy.
// An empty result is "filter matched nothing", which the caller must
// treat as a user error distinct from "no filter requested".
func ByPath(files []ir.FileReport, target string) []ir.FileReport {
	info, err := os.Stat(target)
	if err != nil {
		return nil
	}
	ct := canonical(target)

	var kept []ir.FileReport
	for _, f := range files {
		cf := canonical(f.Path)
		if !info.IsDir() {
			if cf == ct {
				kept = append(kept, f)
			}
			continue
		}
		if underDir(cf, ct) {
			kept = append(kept, f)
		}
	}
	return kept
}

// underDir is the subtree relation over resolved paths. filepath.Rel
// keeps "specs" out of "specs_old": this is a hierarchy check, not a
// string prefix.
func underDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return false
	}
	return true
}

func canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
