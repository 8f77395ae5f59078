package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

// WriteHTML renders the aggregate as a self-contained dashboard page.
func WriteHTML(runID, outDir string, rep ir.Report) (string, error) {
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .bug{color:#b00} .ok{color:#070}</style>")
	fmt.Fprint(f, "</head><body>")

	// Title + project totals
	fmt.Fprintf(f, "<h1>certstat report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	fmt.Fprintf(f, "<p><b>Total rules</b>: %d &nbsp; <span class='ok'>Verified: %d</span> &nbsp; Unverified: %d &nbsp; <span class='bug'>Bug: %d</span></p>",
		rep.Total.Total, rep.Total.Verified, rep.Total.Unverified, rep.Total.Bug)

	// Per-directory rollup
	if len(rep.Directories) > 0 {
		dirs := make([]string, 0, len(rep.Directories))
		for d := range rep.Directories {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)

		fmt.Fprint(f, "<h2>By Directory</h2><table><tr><th>Directory</th><th>Total</th><th>Verified</th><th>Unverified</th><th>Bug</th></tr>")
		for _, d := range dirs {
			c := rep.Directories[d]
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>",
				html.EscapeString(d), c.Total, c.Verified, c.Unverified, c.Bug)
		}
		fmt.Fprint(f, "</table>")
	}

	// Per-file detail with unverified rules
	if len(rep.Files) > 0 {
		fmt.Fprint(f, "<h2>By File</h2><table><tr><th>File</th><th>Total</th><th>Verified</th><th>Unverified</th><th>Bug</th></tr>")
		for _, fs := range rep.Files {
			c := fs.Counts
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>",
				html.EscapeString(fs.File), c.Total, c.Verified, c.Unverified, c.Bug)
		}
		fmt.Fprint(f, "</table>")

		fmt.Fprint(f, "<h2>Unverified Rules</h2>")
		any := false
		for _, fs := range rep.Files {
			var rows []ir.Rule
			for _, r := range fs.Rules {
				if !r.Verified && !r.Bug {
					rows = append(rows, r)
				}
			}
			if len(rows) == 0 {
				continue
			}
			any = true
			fmt.Fprintf(f, "<h3 class='mono'>%s</h3><table><tr><th>Rule</th><th>Line</th><th>Status</th></tr>", html.EscapeString(fs.File))
			for _, r := range rows {
				fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%s</td></tr>",
					html.EscapeString(r.Name), r.Line, html.EscapeString(r.StatusText()))
			}
			fmt.Fprint(f, "</table>")
		}
		if !any {
			fmt.Fprint(f, "<p class='dim'>Every reported rule is verified or flagged as a bug.</p>")
		}
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}
