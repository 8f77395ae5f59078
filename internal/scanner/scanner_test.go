package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func analyze(t *testing.T, src string) []string {
	t.Helper()
	return strings.Split(src, "\n")
}

func TestAnalyze_ThreeRuleOutcomes(t *testing.T) {
	src := `#[rule]
// status: verified
pub fn vault_solvent() {
}

#[rule]
// status: bug - off by one in fee math
pub fn vault_overdraw() {
}

#[rule]
pub fn vault_fees_accrue() {
}
`
	rep := Analyze("vault.rs", analyze(t, src), Options{})
	c := rep.Counts
	if c.Total != 3 || c.Verified != 1 || c.Unverified != 1 || c.Bug != 1 {
		t.Fatalf("counts = %+v, want total=3 verified=1 unverified=1 bug=1", c)
	}
	if got := c.Verified + c.Unverified + c.Bug; got != c.Total {
		t.Fatalf("conservation violated: %d != %d", got, c.Total)
	}
	if rep.Rules[0].Name != "vault_solvent" || rep.Rules[0].Line != 1 {
		t.Fatalf("rule[0] = %+v, want vault_solvent at line 1", rep.Rules[0])
	}
	if rep.Rules[2].Status != nil {
		t.Fatalf("rule[2] status = %q, want absent", *rep.Rules[2].Status)
	}
	if rep.Rules[2].Outcome() != "unverified" {
		t.Fatalf("absent status must classify unverified, got %s", rep.Rules[2].Outcome())
	}
}

func TestAnalyze_ForwardStatusPreferred(t *testing.T) {
	// Status both before and after the marker: the forward one wins so
	// a previous rule's trailing status is never inherited.
	src := `// status: bug


#[rule]
// some note
// status: verified
fn forward_wins() {
}
`
	rep := Analyze("f.rs", analyze(t, src), Options{})
	if len(rep.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rep.Rules))
	}
	r := rep.Rules[0]
	if r.Status == nil || *r.Status != "verified" {
		t.Fatalf("status = %v, want %q", r.Status, "verified")
	}
	if !r.Verified || r.Bug {
		t.Fatalf("classification = %+v, want verified", r)
	}
}

func TestAnalyze_BackwardStopsAtBoundary(t *testing.T) {
	// The status at line 3 belongs to the first rule. The second rule's
	// backward search must stop at the first rule's function line and
	// resolve to no status at all.
	src := `//
//
// status: bug - stale annotation
//
#[rule]
fn first_rule() {
}




#[rule]
fn second_rule() {
}
`
	rep := Analyze("b.rs", analyze(t, src), Options{})
	if len(rep.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rep.Rules))
	}
	first, second := rep.Rules[0], rep.Rules[1]
	if first.Status == nil || !first.Bug {
		t.Fatalf("first rule = %+v, want backward-resolved bug status", first)
	}
	if second.Status != nil {
		t.Fatalf("second rule status = %q, want absent", *second.Status)
	}
}

func TestAnalyze_BackwardWindowBounded(t *testing.T) {
	// A status more than 10 lines above the marker is out of range.
	var b strings.Builder
	b.WriteString("// status: verified\n")
	for i := 0; i < 11; i++ {
		b.WriteString("//\n")
	}
	b.WriteString("#[rule]\nfn far_away() {\n}\n")

	rep := Analyze("w.rs", analyze(t, b.String()), Options{})
	if len(rep.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rep.Rules))
	}
	if rep.Rules[0].Status != nil {
		t.Fatalf("status = %q, want absent (out of backscan range)", *rep.Rules[0].Status)
	}
}

func TestAnalyze_SanityRulesExcluded(t *testing.T) {
	src := `#[rule]
// status: verified
fn transfer_sanity() {
}

#[rule]
// status: verified
fn transfer_ok() {
}
`
	rep := Analyze("s.rs", analyze(t, src), Options{})
	if len(rep.Rules) != 1 {
		t.Fatalf("got %d rules, want 1 (sanity excluded)", len(rep.Rules))
	}
	if rep.Rules[0].Name != "transfer_ok" {
		t.Fatalf("kept rule = %s, want transfer_ok", rep.Rules[0].Name)
	}
}

func TestAnalyze_MarkerWithoutFunctionDiscarded(t *testing.T) {
	// No function within the 15-line window: the marker attaches to
	// nothing, including any later rule.
	var b strings.Builder
	b.WriteString("#[rule]\n")
	for i := 0; i < 16; i++ {
		b.WriteString("// filler\n")
	}
	b.WriteString("fn too_far() {\n}\n")

	rep := Analyze("d.rs", analyze(t, b.String()), Options{})
	if len(rep.Rules) != 0 {
		t.Fatalf("got %d rules, want 0", len(rep.Rules))
	}
}

func TestAnalyze_SpacedMarker(t *testing.T) {
	src := `#[ rule ]
// status: verified
pub fn spaced_marker_ok() {
}
`
	rep := Analyze("sp.rs", analyze(t, src), Options{})
	if len(rep.Rules) != 1 || rep.Rules[0].Name != "spaced_marker_ok" {
		t.Fatalf("spaced marker not recognized: %+v", rep.Rules)
	}
}

func TestAnalyze_StatusKeywordCaseInsensitive(t *testing.T) {
	src := `#[rule]
// STATUS: Verified with precise_bitwise_ops
fn case_insensitive() {
}
`
	rep := Analyze("c.rs", analyze(t, src), Options{})
	if len(rep.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rep.Rules))
	}
	r := rep.Rules[0]
	if r.Status == nil || *r.Status != "Verified with precise_bitwise_ops" {
		t.Fatalf("status = %v, want raw text preserved", r.Status)
	}
	if !r.Verified {
		t.Fatalf("prefix classification should be case-insensitive: %+v", r)
	}
}

func TestAnalyze_PrefixClassification(t *testing.T) {
	cases := []struct {
		status  string
		outcome string
	}{
		{"verified: see proof X", "verified"},
		{"bug: off-by-one", "bug"},
		{"violated - symbol issue", "unverified"},
		{"timeout", "unverified"},
		{"  ", "unverified"},
	}
	for _, tc := range cases {
		src := "#[rule]\n// status: " + tc.status + "\nfn r() {\n}\n"
		rep := Analyze("p.rs", analyze(t, src), Options{})
		if len(rep.Rules) != 1 {
			t.Fatalf("status %q: got %d rules", tc.status, len(rep.Rules))
		}
		if got := rep.Rules[0].Outcome(); got != tc.outcome {
			t.Errorf("status %q: outcome = %s, want %s", tc.status, got, tc.outcome)
		}
	}
}

func TestAnalyze_CommentsBetweenMarkerAndFunction(t *testing.T) {
	src := `#[rule]
// Ensures the vault never lends more than its balance.
// See audit finding #12.
// status: verified
pub fn no_overlend() {
}
`
	rep := Analyze("m.rs", analyze(t, src), Options{})
	if len(rep.Rules) != 1 || rep.Rules[0].Name != "no_overlend" {
		t.Fatalf("rules = %+v, want no_overlend", rep.Rules)
	}
	if !rep.Rules[0].Verified {
		t.Fatalf("status across comments not resolved: %+v", rep.Rules[0])
	}
}

func TestAnalyzeFile_Unreadable(t *testing.T) {
	_, err := AnalyzeFile(filepath.Join(t.TempDir(), "nope.rs"), Options{})
	if err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestAnalyzeFile_ReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ok.rs")
	if err := os.WriteFile(p, []byte("#[rule]\nfn from_disk() {\n}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rep, err := AnalyzeFile(p, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if rep.Counts.Total != 1 || rep.Rules[0].Name != "from_disk" {
		t.Fatalf("report = %+v", rep)
	}
}
