package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OpenZeppelin/stellar-contracts/internal/aggregate"
	"github.com/OpenZeppelin/stellar-contracts/internal/api"
	"github.com/OpenZeppelin/stellar-contracts/internal/ir"
	"github.com/OpenZeppelin/stellar-contracts/internal/reporting"
	"github.com/OpenZeppelin/stellar-contracts/internal/scanner"
	"github.com/OpenZeppelin/stellar-contracts/internal/security"
	"github.com/OpenZeppelin/stellar-contracts/internal/shared"
	"github.com/OpenZeppelin/stellar-contracts/internal/storage"
	"github.com/OpenZeppelin/stellar-contracts/internal/walker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "scan":
		scanCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user":
		userCmd(os.Args[2:])
	case "version":
		fmt.Println("certstat – formal verification status reporter IR:", ir.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `certstat – Formal Verification Status Reporter

Usage:
  certstat scan   [--root <dir>] [--path <file-or-dir>] [--format table|json] [--verbosity repo|directory|file] [--db ./certstat.db] [--config ./certstat.yaml]
  certstat report --run <run-id> [--format table|json] [--verbosity repo|directory|file] [--html] [--out <reports-dir>] [--db ./certstat.db] [--config ./certstat.yaml]
  certstat diff   --base <run-id> --head <run-id> [--out <reports-dir>] [--db ./certstat.db] [--config ./certstat.yaml]
  certstat serve  [--addr :8080] [--db ./certstat.db] [--config ./certstat.yaml]
  certstat user   add --username <name> [--role admin|viewer] [--db ./certstat.db]
  certstat version
`)
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	rootFlag := fs.String("root", "", "Root directory to search")
	pathFlag := fs.String("path", "", "Filter results to a directory or file (relative to root or absolute)")
	format := fs.String("format", "", "Output format: table|json")
	verbosity := fs.String("verbosity", "", "Detail level: repo|directory|file")
	dbPath := fs.String("db", "", "SQLite database path (optional; persists the run)")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *rootFlag == "" {
		*rootFlag = cfg.Scan.Root
	}
	if *format == "" {
		*format = cfg.Reporting.Format
	}
	if *verbosity == "" {
		*verbosity = cfg.Reporting.Verbosity
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	if !reporting.ValidFormat(*format) {
		fmt.Fprintln(os.Stderr, "scan: --format must be 'table' or 'json'")
		os.Exit(2)
	}
	if !reporting.ValidVerbosity(*verbosity) {
		fmt.Fprintln(os.Stderr, "scan: --verbosity must be 'repo', 'directory' or 'file'")
		os.Exit(2)
	}

	root, err := filepath.Abs(*rootFlag)
	if err == nil {
		_, err = os.Stat(root)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Root directory does not exist: %s\n", *rootFlag)
		os.Exit(1)
	}

	files, err := walker.FindSpecFiles(walker.Options{
		Root:         root,
		Extension:    cfg.Scan.Extension,
		SpecSegment:  cfg.Scan.SpecSegment,
		ExcludeDirs:  cfg.Scan.ExcludeDirs,
		ExcludeGlobs: cfg.Scan.ExcludeGlobs,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error walking root directory:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No spec files found in specs directories.")
		os.Exit(1)
	}

	var reports []ir.FileReport
	for _, p := range files {
		rep, err := scanner.AnalyzeFile(p, scanner.Options{Marker: scanner.DefaultMarker})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", p, err)
			continue
		}
		if rep.Counts.Total > 0 {
			reports = append(reports, rep)
		}
	}

	if *pathFlag != "" {
		target, err := aggregate.ResolveTarget(*pathFlag, root)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		reports = aggregate.ByPath(reports, target)
		if len(reports) == 0 {
			fmt.Fprintf(os.Stderr, "No spec files found matching path: %s\n", *pathFlag)
			os.Exit(1)
		}
	}

	rep := aggregate.Build(reports, root, cfg.Reporting.StripPrefix)
	printReport(rep, *format, *verbosity)

	// Persist only when a database is configured; never changes output.
	if *dbPath != "" {
		run := ir.Run{
			ID:        fmt.Sprintf("run-%d", time.Now().Unix()),
			StartedAt: time.Now().UTC(),
			Root:      root,
			IRVersion: ir.Version,
			Files:     reports,
		}
		db, err := storage.OpenSQLite(*dbPath)
		if err != nil {
			slog.Error("db open error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.CreateSchema(); err != nil {
			slog.Error("db schema error", "err", err)
			os.Exit(1)
		}
		if err := db.SaveRun(&run); err != nil {
			slog.Error("db save run error", "err", err)
			os.Exit(1)
		}
		slog.Info("scan persisted", "run", run.ID, "db", filepath.Clean(*dbPath))
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	runID := fs.String("run", "", "Run ID")
	format := fs.String("format", "", "Output format: table|json")
	verbosity := fs.String("verbosity", "", "Detail level: repo|directory|file")
	htmlOut := fs.Bool("html", false, "Also write an HTML report to --out")
	outDir := fs.String("out", "", "Output directory for HTML reports")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *format == "" {
		*format = cfg.Reporting.Format
	}
	if *verbosity == "" {
		*verbosity = cfg.Reporting.Verbosity
	}
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *runID == "" {
		fmt.Fprintln(os.Stderr, "report: --run is required")
		os.Exit(2)
	}
	if !reporting.ValidFormat(*format) || !reporting.ValidVerbosity(*verbosity) {
		fmt.Fprintln(os.Stderr, "report: invalid --format or --verbosity")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	run, err := db.LoadRun(*runID)
	if err != nil {
		slog.Error("load run error", "run", *runID, "err", err)
		os.Exit(1)
	}

	rep := aggregate.Build(run.Files, run.Root, cfg.Reporting.StripPrefix)
	printReport(rep, *format, *verbosity)

	if *htmlOut {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			slog.Error("cannot create out dir", "err", err)
			os.Exit(1)
		}
		path, err := reporting.WriteHTML(run.ID, *outDir, rep)
		if err != nil {
			slog.Error("write html error", "err", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "HTML:", path)
	}
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(1)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(1)
	}
	path, err := reporting.WriteDiffJSON(*base, *head, *outDir, &br, &hr)
	if err != nil {
		slog.Error("write diff error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Diff OK\n  %s\n", path)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *addr == "" {
		*addr = cfg.Server.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "serve: --db (or database.dsn in config) is required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	ttl, err := time.ParseDuration(cfg.Server.SessionDuration)
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}

	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Logger:          logger,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		SessionDuration: ttl,
	}
	slog.Info("serving", "addr", *addr, "db", filepath.Clean(*dbPath))
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func userCmd(args []string) {
	if len(args) < 1 || args[0] != "add" {
		fmt.Fprintln(os.Stderr, "user: expected 'add' subcommand")
		os.Exit(2)
	}
	fs := flag.NewFlagSet("user add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	username := fs.String("username", "", "Username")
	role := fs.String("role", "viewer", "Role: admin|viewer")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args[1:])

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "user add: --username is required")
		os.Exit(2)
	}
	if *role != "admin" && *role != "viewer" {
		fmt.Fprintln(os.Stderr, "user add: --role must be 'admin' or 'viewer'")
		os.Exit(2)
	}

	pw := os.Getenv("CERTSTAT_PASSWORD")
	if pw == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		sc := bufio.NewScanner(os.Stdin)
		if sc.Scan() {
			pw = strings.TrimSpace(sc.Text())
		}
	}
	if pw == "" {
		fmt.Fprintln(os.Stderr, "user add: empty password")
		os.Exit(2)
	}

	hash, err := security.HashPassword(pw)
	if err != nil {
		slog.Error("hash error", "err", err)
		os.Exit(1)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	id, err := db.CreateUser(*username, hash, *role)
	if err != nil {
		slog.Error("create user error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("User OK\n  ID: %d\n  Username: %s\n  Role: %s\n", id, *username, *role)
}

func printReport(rep ir.Report, format, verbosity string) {
	if format == reporting.FormatJSON {
		b, err := reporting.RenderJSON(rep, verbosity)
		if err != nil {
			slog.Error("render json error", "err", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}
	fmt.Println(reporting.RenderTable(rep, verbosity))
}
