package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/UnitVectorY-Labs/shoppinglist/internal/config"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/database"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/handler"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/logger"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/middleware"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/model"
	"github.com/UnitVectorY-Labs/shoppinglist/internal/schema"
	swaggerdoc "github.com/UnitVectorY-Labs/shoppinglist/internal/swagger"
)

// Version is the application version, injected at build time via ldflags
var Version = "dev"

const defaultConfigPath = "config.yaml"

func main() {
	// Set the build version from the build info if not set by the build system
	if Version == "dev" || Version == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
				Version = bi.Main.Version
			}
		}
	}

	if len(os.Args) < 2 {
		// Default to api command
		os.Args = append(os.Args, "api")
	}

	switch os.Args[1] {
	case "api":
		runAPI()
	case "validate":
		runValidate()
	case "migrate":
		runMigrate()
	case "openapi":
		runOpenAPI()
	case "version":
		fmt.Println(Version)
	default:
		printUsage()
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  api       Start the API server")
	fmt.Fprintln(os.Stderr, "  validate  Validate the configuration file")
	fmt.Fprintln(os.Stderr, "  migrate   Create the shopping list table")
	fmt.Fprintln(os.Stderr, "  openapi   Generate OpenAPI YAML")
	fmt.Fprintln(os.Stderr, "  version   Print version")
	os.Exit(1)
}

// envOrDefault returns the environment variable value if set and the flag is at its default,
// otherwise returns the flag value.
func envOrDefault(flagVal, flagDefault, envVar string) string {
	if envVal := os.Getenv(envVar); envVal != "" && flagVal == flagDefault {
		return envVal
	}
	return flagVal
}

// loadConfig reads and validates the config file. A missing file at the
// default path is not an error; the built-in defaults are used instead.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// dbFlags holds the connection flags shared by the api and migrate commands.
type dbFlags struct {
	host     *string
	port     *string
	name     *string
	user     *string
	password *string
	sslmode  *string
}

func registerDBFlags(fs *flag.FlagSet) dbFlags {
	return dbFlags{
		host:     fs.String("db-host", "localhost", "Database host"),
		port:     fs.String("db-port", "5432", "Database port"),
		name:     fs.String("db-name", "", "Database name"),
		user:     fs.String("db-user", "", "Database username"),
		password: fs.String("db-password", "", "Database password"),
		sslmode:  fs.String("db-sslmode", "disable", "SSL mode"),
	}
}

func (f dbFlags) resolveEnv() {
	*f.host = envOrDefault(*f.host, "localhost", "DB_HOST")
	*f.port = envOrDefault(*f.port, "5432", "DB_PORT")
	*f.name = envOrDefault(*f.name, "", "DB_NAME")
	*f.user = envOrDefault(*f.user, "", "DB_USER")
	*f.password = envOrDefault(*f.password, "", "DB_PASSWORD")
	*f.sslmode = envOrDefault(*f.sslmode, "disable", "DB_SSLMODE")
}

func (f dbFlags) check() error {
	if *f.name == "" {
		return errors.New("database name is required: set -db-name or DB_NAME")
	}
	if *f.user == "" {
		return errors.New("database user is required: set -db-user or DB_USER")
	}
	if *f.password == "" {
		return errors.New("database password is required: set -db-password or DB_PASSWORD")
	}
	if _, err := strconv.Atoi(*f.port); err != nil {
		return fmt.Errorf("invalid db-port: %w", err)
	}
	return nil
}

func (f dbFlags) open() (*database.Store, func(), error) {
	if err := f.check(); err != nil {
		return nil, nil, err
	}
	port, _ := strconv.Atoi(*f.port)
	db, err := database.Connect(*f.host, port, *f.name, *f.user, *f.password, *f.sslmode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database.NewStore(db), func() { db.Close() }, nil
}

func runAPI() {
	fs := flag.NewFlagSet("api", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	port := fs.String("port", "", "Server port")
	storeDriver := fs.String("store", "", "Store driver (memory or postgres)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	db := registerDBFlags(fs)
	fs.Parse(os.Args[2:])

	*configPath = envOrDefault(*configPath, defaultConfigPath, "CONFIG")
	*port = envOrDefault(*port, "", "PORT")
	*storeDriver = envOrDefault(*storeDriver, "", "STORE")
	*logLevel = envOrDefault(*logLevel, "", "LOG_LEVEL")
	db.resolveEnv()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Override config from flag/env if set
	if *port != "" {
		p, err := strconv.Atoi(*port)
		if err != nil {
			log.Fatalf("invalid port: %v", err)
		}
		cfg.Server.Port = p
	}
	if *storeDriver != "" {
		cfg.Store.Driver = *storeDriver
	}
	if *logLevel != "" {
		cfg.Server.LogLevel = *logLevel
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	l, err := logger.New(os.Stderr, cfg.Server.LogLevel, false)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	slog.SetDefault(l)

	var store handler.Store
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, closeDB, err := db.open()
		if err != nil {
			l.Error("postgres store unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer closeDB()
		store = pg
	default:
		store = database.NewMemoryStore()
	}

	mode, _ := model.ParseUpsertMode(cfg.Shopping.UpsertMode)
	opts := handler.Options{
		DefaultPageSize: cfg.Shopping.DefaultPageSize,
		MaxPageSize:     cfg.Shopping.MaxPageSize,
		UpsertMode:      mode,
		Logger:          l,
	}
	if cfg.Server.OpenAPI.Enabled {
		opts.OpenAPI = swaggerdoc.NewProvider(openAPIOptions(cfg))
	}

	h, err := handler.NewWithOptions(store, opts)
	if err != nil {
		l.Error("failed to create handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	h.SetupRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           middleware.Chain(mux, middleware.Recoverer(l), middleware.RequestLogger(l)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	l.Info("shoppinglist starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
		slog.String("store", cfg.Store.Driver),
		slog.String("upsertMode", string(mode)),
		slog.Bool("openapi", cfg.Server.OpenAPI.Enabled),
	)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown error", slog.String("error", err.Error()))
		return
	}
	l.Info("server stopped")
}

func runValidate() {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	fs.Parse(os.Args[2:])

	*configPath = envOrDefault(*configPath, defaultConfigPath, "CONFIG")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Compile the item payload schema to verify it is valid
	if _, err := schema.NewItemValidator(); err != nil {
		fmt.Fprintf(os.Stderr, "item schema error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("Store: %s, upsert mode: %s, page size: %d\n",
		cfg.Store.Driver, cfg.Shopping.UpsertMode, cfg.Shopping.DefaultPageSize)
}

func runOpenAPI() {
	fs := flag.NewFlagSet("openapi", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	outputPath := fs.String("output", "", "Write YAML to file (stdout when omitted)")
	fs.Parse(os.Args[2:])

	*configPath = envOrDefault(*configPath, defaultConfigPath, "CONFIG")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	doc, err := swaggerdoc.GenerateYAML(openAPIOptions(cfg))
	if err != nil {
		log.Fatalf("failed to generate OpenAPI: %v", err)
	}

	if *outputPath == "" {
		fmt.Print(string(doc))
		return
	}

	if err := os.WriteFile(*outputPath, doc, 0644); err != nil {
		log.Fatalf("failed to write OpenAPI file: %v", err)
	}
}

func runMigrate() {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	reset := fs.Bool("reset", false, "Drop the table before recreating it")
	dryRun := fs.Bool("dry-run", false, "Print changes without applying them")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	dbf := registerDBFlags(fs)
	fs.Parse(os.Args[2:])

	*logLevel = envOrDefault(*logLevel, "info", "LOG_LEVEL")
	dbf.resolveEnv()

	l, err := logger.New(os.Stderr, strings.ToLower(*logLevel), false)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	slog.SetDefault(l)

	if err := dbf.check(); err != nil {
		log.Fatal(err)
	}
	port, _ := strconv.Atoi(*dbf.port)
	db, err := database.Connect(*dbf.host, port, *dbf.name, *dbf.user, *dbf.password, *dbf.sslmode)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, database.MigrateOptions{Reset: *reset, DryRun: *dryRun}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	fmt.Println("Migrations complete")
}

func openAPIOptions(cfg *config.Config) swaggerdoc.Options {
	return swaggerdoc.Options{
		Version:         Version,
		DefaultPageSize: cfg.Shopping.DefaultPageSize,
		MaxPageSize:     cfg.Shopping.MaxPageSize,
		UpsertMode:      cfg.Shopping.UpsertMode,
	}
}
