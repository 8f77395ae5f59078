package walker

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("fn x() {}\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func defaults(root string) Options {
	return Options{
		Root:        root,
		Extension:   ".rs",
		SpecSegment: "specs",
		ExcludeDirs: []string{".certora_internal", "target", ".git"},
	}
}

func names(t *testing.T, root string, paths []string) []string {
	t.Helper()
	var out []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFindSpecFiles_SegmentGateAndExcludes(t *testing.T) {
	root := writeTree(t,
		"packages/a/specs/x.rs",
		"packages/a/specs/sub/y.rs",
		"packages/a/src/not_spec.rs",       // no specs segment
		"packages/a/specs/readme.md",       // wrong extension
		"target/specs/built.rs",            // excluded dir
		".git/specs/ignored.rs",            // excluded dir
		".certora_internal/specs/cache.rs", // excluded dir
		"specs",                            // a *file* named specs gates nothing
	)
	got, err := FindSpecFiles(defaults(root))
	if err != nil {
		t.Fatalf("FindSpecFiles: %v", err)
	}
	want := []string{
		"packages/a/specs/sub/y.rs",
		"packages/a/specs/x.rs",
	}
	rel := names(t, root, got)
	if len(rel) != len(want) {
		t.Fatalf("got %v, want %v", rel, want)
	}
	for i := range want {
		if rel[i] != want[i] {
			t.Fatalf("got %v, want %v", rel, want)
		}
	}
}

func TestFindSpecFiles_ExcludeGlobs(t *testing.T) {
	root := writeTree(t,
		"a/specs/keep.rs",
		"a/specs/generated/skip.rs",
	)
	opts := defaults(root)
	opts.ExcludeGlobs = []string{"**/generated/**"}
	got, err := FindSpecFiles(opts)
	if err != nil {
		t.Fatalf("FindSpecFiles: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "keep.rs" {
		t.Fatalf("got %v, want only keep.rs", got)
	}
}

func TestFindSpecFiles_EmptyTree(t *testing.T) {
	got, err := FindSpecFiles(defaults(t.TempDir()))
	if err != nil {
		t.Fatalf("FindSpecFiles: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}
