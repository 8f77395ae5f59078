package reporting

import (
	"encoding/json"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

type fileJSON struct {
	File string `json:"file"`
	ir.Counts
	Rules []ir.Rule `json:"rules"`
}

// RenderJSON serializes the aggregate tree, pretty-printed with stable
// key order (total, by_directory, by_file). Verbosity gates which
// sections appear; the counts themselves are taken as-is.
func RenderJSON(rep ir.Report, verbosity string) ([]byte, error) {
	dirs := rep.Directories
	if dirs == nil {
		dirs = map[string]ir.Counts{}
	}

	switch verbosity {
	case VerbosityRepo:
		return json.MarshalIndent(struct {
			Total ir.Counts `json:"total"`
		}{rep.Total}, "", "  ")
	case VerbosityDirectory:
		return json.MarshalIndent(struct {
			Total       ir.Counts            `json:"total"`
			ByDirectory map[string]ir.Counts `json:"by_directory"`
		}{rep.Total, dirs}, "", "  ")
	default: // VerbosityFile
		byFile := make([]fileJSON, 0, len(rep.Files))
		for _, f := range rep.Files {
			rules := f.Rules
			if rules == nil {
				rules = []ir.Rule{}
			}
			byFile = append(byFile, fileJSON{File: f.File, Counts: f.Counts, Rules: rules})
		}
		return json.MarshalIndent(struct {
			Total       ir.Counts            `json:"total"`
			ByDirectory map[string]ir.Counts `json:"by_directory"`
			ByFile      []fileJSON           `json:"by_file"`
		}{rep.Total, dirs, byFile}, "", "  ")
	}
}
