package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

// Verbosity levels, least to most detailed.
const (
	VerbosityRepo      = "repo"
	VerbosityDirectory = "directory"
	VerbosityFile      = "file"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

const banner = "========================================"

// ValidFormat reports whether s names a supported output format.
func ValidFormat(s string) bool {
	return s == FormatTable || s == FormatJSON
}

// ValidVerbosity reports whether s names a supported verbosity level.
func ValidVerbosity(s string) bool {
	return s == VerbosityRepo || s == VerbosityDirectory || s == VerbosityFile
}

// RenderTable renders the aggregate tree as the fixed-heading text
// report. Directories and files come pre-sorted from the aggregate;
// rules list in discovery order.
func RenderTable(rep ir.Report, verbosity string) string {
	var out []string

	out = append(out, banner)
	out = append(out, "Formal Verification Status Summary")
	out = append(out, banner)
	out = append(out, "")

	out = append(out, "Total:")
	out = append(out, fmt.Sprintf("  Total Rules: %d", rep.Total.Total))
	out = append(out, fmt.Sprintf("  Verified: %d", rep.Total.Verified))
	out = append(out, fmt.Sprintf("  Unverified: %d", rep.Total.Unverified))
	out = append(out, fmt.Sprintf("  Bug: %d", rep.Total.Bug))
	out = append(out, "")

	if verbosity == VerbosityDirectory || verbosity == VerbosityFile {
		out = append(out, banner)
		out = append(out, "By Directory:")
		out = append(out, banner)
		out = append(out, "")

		dirs := make([]string, 0, len(rep.Directories))
		for d := range rep.Directories {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		for _, d := range dirs {
			c := rep.Directories[d]
			out = append(out, d+":")
			out = append(out, fmt.Sprintf("  Total: %d, Verified: %d, Unverified: %d, Bug: %d",
				c.Total, c.Verified, c.Unverified, c.Bug))
			out = append(out, "")
		}
	}

	if verbosity == VerbosityFile {
		out = append(out, banner)
		out = append(out, "By File:")
		out = append(out, banner)
		out = append(out, "")

		for _, f := range rep.Files {
			c := f.Counts
			out = append(out, f.File+":")
			out = append(out, fmt.Sprintf("  Total: %d, Verified: %d, Unverified: %d, Bug: %d",
				c.Total, c.Verified, c.Unverified, c.Bug))

			var unverified []ir.Rule
			for _, r := range f.Rules {
				if !r.Verified && !r.Bug {
					unverified = append(unverified, r)
				}
			}
			if len(unverified) > 0 {
				out = append(out, "  Unverified Rules:")
				for _, r := range unverified {
					out = append(out, fmt.Sprintf("    - %s (line %d): %s", r.Name, r.Line, r.StatusText()))
				}
			}
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}
