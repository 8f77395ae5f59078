package shared

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "" = no persistence
	} `yaml:"database"`

	Scan struct {
		Root         string   `yaml:"root"`          // "."
		Extension    string   `yaml:"extension"`     // ".rs"
		SpecSegment  string   `yaml:"spec_segment"`  // "specs"
		ExcludeDirs  []string `yaml:"exclude_dirs"`  // [".certora_internal", "target", ".git"]
		ExcludeGlobs []string `yaml:"exclude_globs"` // doublestar patterns, root-relative
	} `yaml:"scan"`

	Reporting struct {
		Format      string `yaml:"format"`       // "table"|"json"
		Verbosity   string `yaml:"verbosity"`    // "repo"|"directory"|"file"
		OutDir      string `yaml:"out_dir"`      // "./reports"
		StripPrefix string `yaml:"strip_prefix"` // "packages/" ("" disables)
	} `yaml:"reporting"`

	Server struct {
		Addr            string   `yaml:"addr"`             // ":8080"
		AllowedOrigins  []string `yaml:"allowed_origins"`  // ["*"]
		SessionDuration string   `yaml:"session_duration"` // "24h"
	} `yaml:"server"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Scan.Root = "."
	c.Scan.Extension = ".rs"
	c.Scan.SpecSegment = "specs"
	c.Scan.ExcludeDirs = []string{".certora_internal", "target", ".git"}
	c.Reporting.Format = "table"
	c.Reporting.Verbosity = "file"
	c.Reporting.OutDir = "./reports"
	c.Reporting.StripPrefix = "packages/"
	c.Server.Addr = ":8080"
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.SessionDuration = "24h"
	c.Logging.Format = "text"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("CERTSTAT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CERTSTAT_ROOT"); v != "" {
		c.Scan.Root = v
	}
	if v := os.Getenv("CERTSTAT_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("CERTSTAT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CERTSTAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return c, nil
}
