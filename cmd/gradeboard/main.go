package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/gradeboard/internal/dashboard"
	"github.com/pavelanni/gradeboard/internal/fixture"
	"github.com/pavelanni/gradeboard/internal/handler"
	appI18n "github.com/pavelanni/gradeboard/internal/i18n"
	"github.com/pavelanni/gradeboard/internal/model"
	"github.com/pavelanni/gradeboard/internal/store"
)

// Record sources accepted by --source.
const (
	sourceFixture = "fixture"
	sourceSQLite  = "sqlite"
	sourceFile    = "file"
)

//go:generate templ generate -path ../../internal/handler/views

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gradeboard",
		Short: "Dashboard over automated exercise grading results",
	}

	serve := serveCmd()
	root.AddCommand(serve, importCmd(), tableCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `gradeboard --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("source", sourceFixture, "Where records come from (fixture, sqlite, file)")
	f.String("db", "gradeboard.db", "SQLite database path (source=sqlite)")
	f.String("records", "", "YAML or JSON records file (source=file)")
}

func addLangFlag(cmd *cobra.Command) {
	cmd.Flags().String("lang", appI18n.DefaultLang, "Display language of the labels")
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP dashboard server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /td3)")
	addSourceFlags(cmd)
	addLangFlag(cmd)
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GRADEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gradeboard")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/gradeboard")
	v.AddConfigPath("/etc/gradeboard")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openLoader returns the loader for the configured source and a cleanup func.
func openLoader(v *viper.Viper) (dashboard.Loader, func(), error) {
	noop := func() {}
	switch source := strings.ToLower(strings.TrimSpace(v.GetString("source"))); source {
	case "", sourceFixture:
		return fixture.DefaultLoader{}, noop, nil
	case sourceFile:
		path := v.GetString("records")
		if path == "" {
			return nil, noop, errors.New("--records is required with source=file")
		}
		return fixture.FileLoader{Path: path}, noop, nil
	case sourceSQLite:
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return nil, noop, fmt.Errorf("open database: %w", err)
		}
		return db, func() { db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown source %q (want fixture, sqlite or file)", source)
	}
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	loader, closeLoader, err := openLoader(v)
	if err != nil {
		return err
	}
	defer closeLoader()

	// A load failure is not fatal: the dashboard shows its unavailable state.
	records, loadErr := dashboard.Load(context.Background(), loader)
	if loadErr != nil {
		slog.Error("loading records failed", "error", loadErr)
	} else {
		slog.Info("records loaded", "students", records.Len(), "results", records.ResultCount())
	}

	basePath := normalizeBasePath(v.GetString("base-path"))
	cfg := model.DashboardConfig{
		BasePath: basePath,
		Source:   v.GetString("source"),
	}

	h, err := handler.New(records, loadErr, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := newRouter(h, basePath)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"source", cfg.Source,
		"base_path", basePath,
	)
	return http.ListenAndServe(addr, r)
}

func newRouter(h *handler.Handler, basePath string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(appI18n.Lang()))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}
	return r
}
