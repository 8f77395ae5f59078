// Package scanner extracts #[rule] verification obligations and their
// status comments from spec source files.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
)

const (
	// DefaultMarker is the attribute token that declares a rule.
	DefaultMarker = "#[rule]"

	// defaultFuncLookahead bounds the forward search from a marker to
	// the function it decorates. Tuned against Certora spec layouts;
	// do not re-derive.
	defaultFuncLookahead = 15

	// defaultStatusBackscan bounds the fallback backward search for a
	// status comment above the marker.
	defaultStatusBackscan = 10

	// sanitySuffix marks scaffolding rules that are never reported.
	sanitySuffix = "_sanity"
)

var (
	fnRe     = regexp.MustCompile(`(?:pub\s+)?fn\s+(\w+)`)
	statusRe = regexp.MustCompile(`(?i)//\s*status\s*:\s*(.+)`)
)

// Options tunes the extraction pass. Zero values mean defaults.
type Options struct {
	Marker         string
	FuncLookahead  int
	StatusBackscan int
}

func (o Options) withDefaults() Options {
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.FuncLookahead == 0 {
		o.FuncLookahead = defaultFuncLookahead
	}
	if o.StatusBackscan == 0 {
		o.StatusBackscan = defaultStatusBackscan
	}
	return o
}

// AnalyzeFile reads path and extracts its rules. An unreadable file
// returns an empty report and the read error; callers skip the file
// and keep going.
func AnalyzeFile(path string, opts Options) (ir.FileReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return ir.FileReport{Path: path}, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return ir.FileReport{Path: path}, fmt.Errorf("read %s: %w", path, err)
	}
	return Analyze(path, lines, opts), nil
}

// Analyze extracts rules from the given lines. One pass: each marker
// that resolves to a function within the lookahead window yields one
// rule, unless the function is a _sanity scaffold.
func Analyze(path string, lines []string, opts Options) ir.FileReport {
	opts = opts.withDefaults()
	rep := ir.FileReport{Path: path}

	for i, line := range lines {
		if !containsMarker(line, opts.Marker) {
			continue
		}

		// Find the decorated function, skipping intervening comments.
		name := ""
		funcIdx := i
		end := i + opts.FuncLookahead
		if end > len(lines) {
			end = len(lines)
		}
		for j := i + 1; j < end; j++ {
			if n, ok := functionName(lines[j]); ok {
				name = n
				funcIdx = j
				break
			}
		}
		if name == "" {
			// Marker with no function in range attaches to nothing.
			continue
		}
		if strings.HasSuffix(name, sanitySuffix) {
			continue
		}

		status := resolveStatus(lines, i, funcIdx, opts)
		rep.AddRule(ir.NewRule(name, status, i+1))
	}
	return rep
}

// containsMarker reports whether line declares a rule. The marker is
// matched literally, and again with all whitespace removed from the
// line to tolerate spaced-out spellings like "#[ rule ]".
func containsMarker(line, marker string) bool {
	if strings.Contains(line, marker) {
		return true
	}
	return strings.Contains(stripSpace(line), marker)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// functionName extracts the identifier from a function definition
// line, e.g. "pub fn transfer_ok(" or "fn balance_never_negative<...>".
func functionName(line string) (string, bool) {
	m := fnRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// resolveStatus finds the status comment nearest to a marker.
//
// Forward first: lines strictly between the marker and the function
// definition (capped by the lookahead window). Status comments are
// conventionally written right after the marker, and searching forward
// first avoids inheriting a previous rule's trailing status.
//
// Backward only as a fallback: up to StatusBackscan lines above the
// marker, nearest first, stopping at another marker or function line
// since anything beyond that boundary belongs to a different rule.
func resolveStatus(lines []string, markerIdx, funcIdx int, opts Options) *string {
	end := markerIdx + opts.FuncLookahead
	if funcIdx < end {
		end = funcIdx
	}
	if len(lines) < end {
		end = len(lines)
	}
	for i := markerIdx + 1; i < end; i++ {
		if s, ok := statusFrom(lines[i]); ok {
			return &s
		}
	}

	stop := markerIdx - opts.StatusBackscan
	if stop < 0 {
		stop = 0
	}
	for i := markerIdx - 1; i >= stop; i-- {
		if containsMarker(lines[i], opts.Marker) || fnRe.MatchString(lines[i]) {
			break
		}
		if s, ok := statusFrom(lines[i]); ok {
			return &s
		}
	}
	return nil
}

func statusFrom(line string) (string, bool) {
	m := statusRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
