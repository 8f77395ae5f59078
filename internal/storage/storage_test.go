package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "certstat.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.CreateSchema(); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func testRun(id string, started time.Time) *ir.Run {
	status := "verified"
	f := ir.FileReport{Path: "/r/packages/a/specs/x.rs"}
	f.AddRule(ir.NewRule("keeps_balance", &status, 3))
	f.AddRule(ir.NewRule("no_status_yet", nil, 9))
	return &ir.Run{
		ID:        id,
		StartedAt: started,
		Root:      "/r",
		IRVersion: ir.Version,
		Files:     []ir.FileReport{f},
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	run := testRun("run-1", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadRun("run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != "run-1" || got.Root != "/r" || len(got.Files) != 1 {
		t.Fatalf("got = %+v", got)
	}
	rules := got.Files[0].Rules
	if len(rules) != 2 || rules[0].Name != "keeps_balance" || !rules[0].Verified {
		t.Fatalf("rules = %+v", rules)
	}
	if rules[1].Status != nil {
		t.Fatalf("rules[1].Status = %v, want nil", rules[1].Status)
	}

	ok, err := db.HasRun("run-1")
	if err != nil || !ok {
		t.Fatalf("HasRun = %v, %v", ok, err)
	}
	if ok, _ := db.HasRun("run-none"); ok {
		t.Fatal("HasRun for missing run")
	}
}

func TestSaveRun_Upsert(t *testing.T) {
	db := openTestDB(t)
	run := testRun("run-1", time.Now().UTC())
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Saving again must replace, not duplicate, the rule rows.
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("resave: %v", err)
	}
	rows, err := db.ListRules("run-1", "")
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rule rows, want 2", len(rows))
	}
}

func TestListRunsAndLatest(t *testing.T) {
	db := openTestDB(t)
	old := testRun("run-old", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	cur := testRun("run-new", time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	if err := db.SaveRun(old); err != nil {
		t.Fatalf("save old: %v", err)
	}
	if err := db.SaveRun(cur); err != nil {
		t.Fatalf("save new: %v", err)
	}

	rows, err := db.ListRuns(10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "run-new" {
		t.Fatalf("rows = %+v, want run-new first", rows)
	}
	if rows[0].Rules != 2 {
		t.Fatalf("rows[0].Rules = %d, want 2", rows[0].Rules)
	}

	latest, err := db.LoadLatestRun()
	if err != nil || latest.ID != "run-new" {
		t.Fatalf("latest = %+v, %v", latest, err)
	}
}

func TestListRulesByOutcome(t *testing.T) {
	db := openTestDB(t)
	run := testRun("run-1", time.Now().UTC())
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	verified, err := db.ListRules("run-1", "verified")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(verified) != 1 || verified[0].Name != "keeps_balance" {
		t.Fatalf("verified = %+v", verified)
	}
	unverified, err := db.ListRules("run-1", "unverified")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unverified) != 1 || unverified[0].Status != nil {
		t.Fatalf("unverified = %+v", unverified)
	}
}

func TestUsersAndSessions(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreateUser("alice", "hash-not-checked-here", "admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u, hash, err := db.GetUserByUsername("alice")
	if err != nil || u.ID != id || hash != "hash-not-checked-here" || u.Role != "admin" {
		t.Fatalf("get user = %+v, %q, %v", u, hash, err)
	}

	if err := db.CreateSession(id, "tok-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	su, err := db.GetSession("tok-1")
	if err != nil || su.Username != "alice" {
		t.Fatalf("get session = %+v, %v", su, err)
	}
	if err := db.DeleteSession("tok-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := db.GetSession("tok-1"); err == nil {
		t.Fatal("session survived deletion")
	}

	if err := db.CreateSession(id, "tok-2", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("create expired session: %v", err)
	}
	if _, err := db.GetSession("tok-2"); err == nil {
		t.Fatal("expired session accepted")
	}
}
