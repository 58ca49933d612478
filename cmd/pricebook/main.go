package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Faxeron/back-home-new-sub000/internal/config"
	"github.com/Faxeron/back-home-new-sub000/internal/core"
	"github.com/Faxeron/back-home-new-sub000/internal/database"
	"github.com/Faxeron/back-home-new-sub000/internal/logging"
)

const usage = `Usage: pricebook <command> [flags]

Commands:
  import    validate and apply a pricebook workbook
  export    write the current catalog as a workbook
  template  write the blank workbook template

Run 'pricebook <command> -h' for command flags.`

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := connect(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	service := core.NewService(database.NewStore(pool),
		core.WithTemplatePath(cfg.Import.TemplatePath),
		core.WithMaxFileSize(cfg.Import.MaxFileSize),
	)

	if err := run(ctx, service, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// connect builds the pgx pool from config and verifies the connection.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

func run(ctx context.Context, service *core.Service, command string, args []string) error {
	switch command {
	case "import":
		return runImport(ctx, service, args)
	case "export":
		return runExport(ctx, service, args)
	case "template":
		return runTemplate(service, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// scopeFlags registers the tenant/company pair every command needs.
func scopeFlags(fs *flag.FlagSet) (tenant, company *int64) {
	tenant = fs.Int64("tenant", 0, "tenant id (required)")
	company = fs.Int64("company", 0, "company id (required)")
	return tenant, company
}

func requireScope(tenant, company int64) error {
	if tenant <= 0 {
		return fmt.Errorf("-tenant is required")
	}
	if company <= 0 {
		return fmt.Errorf("-company is required")
	}
	return nil
}

func runImport(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	tenant, company := scopeFlags(fs)
	user := fs.Int64("user", 0, "acting user id (required)")
	file := fs.String("file", "", "path to the workbook (required)")
	fs.Parse(args)

	if err := requireScope(*tenant, *company); err != nil {
		return err
	}
	if *user <= 0 {
		return fmt.Errorf("-user is required")
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	sum, err := service.Import(ctx, *tenant, *company, *user, *file)
	if err != nil {
		return err
	}
	if len(sum.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "import rejected, %d issue(s):\n", len(sum.Errors))
		for _, e := range sum.Errors {
			fmt.Fprintln(os.Stderr, "  "+e)
		}
		return fmt.Errorf("workbook failed validation")
	}
	fmt.Printf("import applied: created %d, updated %d, archived %d\n",
		sum.Created, sum.Updated, sum.Archived)
	return nil
}

func runExport(ctx context.Context, service *core.Service, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	tenant, company := scopeFlags(fs)
	out := fs.String("out", "pricebook-export.xlsx", "output workbook path")
	fs.Parse(args)

	if err := requireScope(*tenant, *company); err != nil {
		return err
	}
	if err := service.ExportToFile(ctx, *tenant, *company, *out); err != nil {
		return err
	}
	fmt.Printf("export written to %s\n", *out)
	return nil
}

func runTemplate(service *core.Service, args []string) error {
	fs := flag.NewFlagSet("template", flag.ExitOnError)
	fs.Parse(args)

	path, err := service.Template()
	if err != nil {
		return err
	}
	fmt.Printf("template written to %s\n", path)
	return nil
}
