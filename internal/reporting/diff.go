package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

type diffPayload struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary diffSummary   `json:"summary"`
	Added   []diffRule    `json:"added"`
	Removed []diffRule    `json:"removed"`
	Changed []diffChanged `json:"changed"`
}

type diffSummary struct {
	AddedCount   int `json:"added"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type diffRule struct {
	File    string  `json:"file"`
	Name    string  `json:"name"`
	Line    int     `json:"line"`
	Status  *string `json:"status"`
	Outcome string  `json:"outcome"`
}

type diffChanged struct {
	Key     string   `json:"key"`
	Base    diffRule `json:"base"`
	Head    diffRule `json:"head"`
	Changed []string `json:"fields_changed"`
}

// WriteDiffJSON compares two stored runs by rule identity (file|name)
// and reports added and removed rules plus outcome/status transitions,
// e.g. a rule moving from unverified to verified between runs.
func WriteDiffJSON(baseID, headID, outDir string, base, head *ir.Run) (string, error) {
	path := filepath.Join(outDir, "diff_"+baseID+"__"+headID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	bm := indexRules(base)
	hm := indexRules(head)

	var added []diffRule
	var removed []diffRule
	var changed []diffChanged

	for k, hr := range hm {
		br, ok := bm[k]
		if !ok {
			added = append(added, hr)
			continue
		}
		var fields []string
		if br.Outcome != hr.Outcome {
			fields = append(fields, "outcome")
		}
		if statusText(br.Status) != statusText(hr.Status) {
			fields = append(fields, "status")
		}
		if len(fields) > 0 {
			changed = append(changed, diffChanged{Key: k, Base: br, Head: hr, Changed: fields})
		}
	}
	for k, br := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, br)
		}
	}

	// stable sort
	byKey := func(rs []diffRule) {
		sort.Slice(rs, func(i, j int) bool {
			if rs[i].File == rs[j].File {
				return rs[i].Name < rs[j].Name
			}
			return rs[i].File < rs[j].File
		})
	}
	byKey(added)
	byKey(removed)
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	payload := diffPayload{
		BaseID: baseID, HeadID: headID,
		Summary: diffSummary{
			AddedCount:   len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		Added:   added,
		Removed: removed,
		Changed: changed,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func indexRules(run *ir.Run) map[string]diffRule {
	m := map[string]diffRule{}
	for _, f := range run.Files {
		for _, r := range f.Rules {
			m[f.Path+"|"+r.Name] = diffRule{
				File:    f.Path,
				Name:    r.Name,
				Line:    r.Line,
				Status:  r.Status,
				Outcome: r.Outcome(),
			}
		}
	}
	return m
}

func statusText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
