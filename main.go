package main

import (
	"context"
	"database/sql"
	_ "embed"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seating/grouping"
	"seating/internal/config"
	"seating/internal/metrics"
	"seating/internal/preview"
)

//go:embed schema.sql
var schema string

type previewStore interface {
	Put(ctx context.Context, p preview.Preview) error
	Get(ctx context.Context, classroomID int64) (preview.Preview, error)
	Delete(ctx context.Context, classroomID int64) error
}

type rosterStore interface {
	LoadRoster(ctx context.Context, classroomID int64) (grouping.Roster, int, error)
	SaveGroups(ctx context.Context, classroomID int64, groups []grouping.Group) error
	LatestGroups(ctx context.Context, classroomID int64) ([]grouping.Group, error)
}

type server struct {
	db       *sql.DB
	cfg      config.Config
	rosters  rosterStore
	previews previewStore
	metrics  *metrics.Collector
	log      *slog.Logger
}

type pgRosters struct {
	db *sql.DB
}

func (p pgRosters) LoadRoster(ctx context.Context, classroomID int64) (grouping.Roster, int, error) {
	return loadRoster(ctx, p.db, classroomID)
}

func (p pgRosters) SaveGroups(ctx context.Context, classroomID int64, groups []grouping.Group) error {
	return saveGroups(ctx, p.db, classroomID, groups)
}

func (p pgRosters) LatestGroups(ctx context.Context, classroomID int64) ([]grouping.Group, error) {
	return listGroups(ctx, p.db, classroomID)
}

func main() {
	configPath := flag.String("config", os.Getenv(config.EnvPath), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Postgres)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if _, err := db.Exec(schema); err != nil {
		logger.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	previews := preview.NewStore(rdb, cfg.Preview.TTL)
	if err := previews.Ping(context.Background()); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "err", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &server{
		db:       db,
		cfg:      cfg,
		rosters:  pgRosters{db: db},
		previews: previews,
		metrics:  metrics.New(reg),
		log:      logger,
	}

	mux := s.routes()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		if err := previews.Ping(r.Context()); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("listening", "addr", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/google/callback", s.handleGoogleCallback)
	mux.HandleFunc("GET /api/admin/check", s.handleAdminCheck)

	mux.HandleFunc("GET /api/classrooms", s.requireAdmin(s.handleListClassrooms))
	mux.HandleFunc("POST /api/classrooms", s.requireAdmin(s.handleCreateClassroom))
	mux.HandleFunc("GET /api/classrooms/{classroomID}", s.requireAdmin(s.handleGetClassroom))
	mux.HandleFunc("PATCH /api/classrooms/{classroomID}", s.requireAdmin(s.handleUpdateClassroom))
	mux.HandleFunc("DELETE /api/classrooms/{classroomID}", s.requireAdmin(s.handleDeleteClassroom))

	mux.HandleFunc("GET /api/classrooms/{classroomID}/students", s.requireAdmin(s.handleListStudents))
	mux.HandleFunc("POST /api/classrooms/{classroomID}/students", s.requireAdmin(s.handleCreateStudent))
	mux.HandleFunc("PATCH /api/classrooms/{classroomID}/students/{studentID}", s.requireAdmin(s.handleUpdateStudent))
	mux.HandleFunc("DELETE /api/classrooms/{classroomID}/students/{studentID}", s.requireAdmin(s.handleDeleteStudent))
	mux.HandleFunc("POST /api/classrooms/{classroomID}/incompatibilities", s.requireAdmin(s.handleAddIncompatibility))
	mux.HandleFunc("DELETE /api/classrooms/{classroomID}/incompatibilities", s.requireAdmin(s.handleRemoveIncompatibility))
	mux.HandleFunc("POST /api/classrooms/{classroomID}/import", s.requireAdmin(s.handleImportRoster))

	mux.HandleFunc("POST /api/classrooms/{classroomID}/generate", s.requireAdmin(s.handleGenerate))
	mux.HandleFunc("GET /api/classrooms/{classroomID}/preview", s.requireAdmin(s.handleGetPreview))
	mux.HandleFunc("DELETE /api/classrooms/{classroomID}/preview", s.requireAdmin(s.handleDiscardPreview))
	mux.HandleFunc("POST /api/classrooms/{classroomID}/groups", s.requireAdmin(s.handleCommitGroups))
	mux.HandleFunc("GET /api/classrooms/{classroomID}/groups", s.requireAdmin(s.handleListGroups))
	mux.HandleFunc("GET /api/classrooms/{classroomID}/groups/export", s.requireAdmin(s.handleExportGroups))
	return mux
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
