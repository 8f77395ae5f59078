package ir

import (
	"strings"
	"time"
)

const Version = "1.0"

// Run is one complete scan of a source tree.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Root      string    `json:"root,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Files []FileReport `json:"files"`
}

// Rule is a single #[rule] obligation found in a spec file.
// Status is nil when no status comment was found near the marker.
type Rule struct {
	Name     string  `json:"name"`
	Line     int     `json:"line"` // 1-based line of the marker
	Status   *string `json:"status"`
	Verified bool    `json:"verified"`
	Bug      bool    `json:"bug"`
}

// NewRule classifies the status text once, at construction.
func NewRule(name string, status *string, line int) Rule {
	r := Rule{Name: name, Status: status, Line: line}
	if status != nil {
		s := strings.ToLower(strings.TrimSpace(*status))
		r.Bug = strings.HasPrefix(s, "bug")
		r.Verified = !r.Bug && strings.HasPrefix(s, "verified")
	}
	return r
}

// Outcome renders the three-way classification as a stable label.
func (r Rule) Outcome() string {
	switch {
	case r.Bug:
		return "bug"
	case r.Verified:
		return "verified"
	default:
		return "unverified"
	}
}

// StatusText is the raw status, or "no status" when absent.
func (r Rule) StatusText() string {
	if r.Status == nil {
		return "no status"
	}
	return *r.Status
}

// Counts is a pure rollup of rule outcomes at any scope.
type Counts struct {
	Total      int `json:"total_rules"`
	Verified   int `json:"verified_rules"`
	Unverified int `json:"unverified_rules"`
	Bug        int `json:"bug_rules"`
}

func (c *Counts) Add(r Rule) {
	c.Total++
	switch {
	case r.Bug:
		c.Bug++
	case r.Verified:
		c.Verified++
	default:
		c.Unverified++
	}
}

func (c *Counts) Merge(o Counts) {
	c.Total += o.Total
	c.Verified += o.Verified
	c.Unverified += o.Unverified
	c.Bug += o.Bug
}

// FileReport is one file's rules plus derived counts.
type FileReport struct {
	Path   string `json:"path"`
	Rules  []Rule `json:"rules"`
	Counts Counts `json:"counts"`
}

func (f *FileReport) AddRule(r Rule) {
	f.Rules = append(f.Rules, r)
	f.Counts.Add(r)
}

// Report is the finished aggregate tree the renderers consume.
// Directories map display keys to summed counts; Files is sorted by
// display path. Renderers do no further filtering or classification.
type Report struct {
	Total       Counts
	Directories map[string]Counts
	Files       []FileSummary
}

// FileSummary is one file's slice of the aggregate, keyed by its
// display path.
type FileSummary struct {
	File   string
	Counts Counts
	Rules  []Rule
}
