package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/medinsight/internal/application"
	appai "github.com/bryanwahyu/medinsight/internal/application/ai"
	appanalysis "github.com/bryanwahyu/medinsight/internal/application/analysis"
	"github.com/bryanwahyu/medinsight/internal/application/extract"
	apppersons "github.com/bryanwahyu/medinsight/internal/application/persons"
	appusage "github.com/bryanwahyu/medinsight/internal/application/usage"
	"github.com/bryanwahyu/medinsight/internal/config"
	"github.com/bryanwahyu/medinsight/internal/domain/activity"
	"github.com/bryanwahyu/medinsight/internal/domain/medicines"
	"github.com/bryanwahyu/medinsight/internal/domain/ocr"
	"github.com/bryanwahyu/medinsight/internal/domain/persons"
	"github.com/bryanwahyu/medinsight/internal/domain/reports"
	"github.com/bryanwahyu/medinsight/internal/domain/usage"
	openaiclient "github.com/bryanwahyu/medinsight/internal/infra/ai/openai"
	"github.com/bryanwahyu/medinsight/internal/infra/ai/prompt"
	memorycache "github.com/bryanwahyu/medinsight/internal/infra/cache/memory"
	rediscache "github.com/bryanwahyu/medinsight/internal/infra/cache/redis"
	mysqlp "github.com/bryanwahyu/medinsight/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/medinsight/internal/infra/db/postgres"
	"github.com/bryanwahyu/medinsight/internal/infra/httpserver"
	"github.com/bryanwahyu/medinsight/internal/infra/ocr/gcpvision"
	minioStore "github.com/bryanwahyu/medinsight/internal/infra/storage"
	"github.com/bryanwahyu/medinsight/internal/logger"
	"github.com/bryanwahyu/medinsight/internal/middleware"
)

// repositories groups the driver-specific persistence adapters.
type repositories struct {
	reports   reports.Repository
	medicines medicines.Repository
	persons   persons.Repository
	activity  activity.Repository
	usage     usage.Counter
}

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()

	// connect database
	db, repos, err := openDatabase(ctx, cfg)
	if err != nil {
		lg.Fatal("database connect error", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	// usage counter
	counter := repos.usage
	switch cfg.Usage.Store {
	case "memory":
		counter = memorycache.NewCounter()
	case "redis":
		rdb, err := rediscache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			lg.Fatal("redis connect error", "addr", cfg.Redis.Addr, "error", err)
		}
		defer rdb.Close()
		rc := rediscache.NewCounter(rdb, cfg.Usage.SessionTTL)
		counter = rc
		checkers["redis"] = middleware.CheckerFunc(rc.Check)
	}
	lg.Info("usage counter ready", "store", cfg.Usage.Store, "anonymous_quota", cfg.Usage.AnonymousQuota)

	// OCR engine, optional
	var engine ocr.Engine
	if cfg.OCR.Provider == "gcpvision" {
		e, err := gcpvision.New(ctx, gcpvision.Options{
			CredentialsFile: cfg.OCR.CredentialsFile,
			Preprocess:      cfg.OCR.Preprocess,
			MaxDimension:    cfg.OCR.MaxDimension,
		}, lg)
		if err != nil {
			// raster images fall back to the vision model
			lg.Warn("ocr engine unavailable", "error", err)
		} else {
			defer e.Close()
			engine = e
		}
	}

	// init openai
	llm := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	llm.MaxTokens = cfg.OpenAI.MaxTokens
	llm.Temperature = *cfg.OpenAI.Temperature
	if cfg.OpenAI.VisionModel != "" {
		llm.VisionModel = cfg.OpenAI.VisionModel
	}

	// init minio, optional
	var archive reports.ArchiveStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			lg.Fatal("minio init error", "endpoint", cfg.Minio.Endpoint, "error", err)
		}
		archive = store
		checkers["minio"] = middleware.CheckerFunc(store.Check)
	}

	clock := application.SystemClock{}
	personSvc := apppersons.NewService(repos.persons, clock)

	// init service
	svc := appanalysis.New(appanalysis.Service{
		Gate:      appusage.NewGate(counter, cfg.Usage.AnonymousQuota),
		Extractor: extract.NewService(engine, llm, cfg.Timeouts.OCR, cfg.Timeouts.Vision, lg),
		Generator: appai.NewGenerator(llm, prompt.Builder{}, cfg.Timeouts.Generation, lg),
		Reports:   repos.reports,
		Medicines: repos.medicines,
		Persons:   personSvc,
		Activity:  repos.activity,
		Archive:   archive,
		Clock:     clock,
		Log:       lg,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	stopSweep := make(chan struct{})
	go limiter.Run(stopSweep)
	defer close(stopSweep)

	// init router
	handler := httpserver.NewRouter(svc, personSvc, lg, httpserver.Options{
		UserTokens:     cfg.Auth.Tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SecureCookie:   cfg.Production(),
		Limiter:        limiter,
		Checkers:       checkers,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		lg.Info("server listening", "addr", addr, "driver", cfg.Database.Driver, "ocr", engine != nil, "archive", archive != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("server error", "error", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	lg.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error("shutdown error", "error", err)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, repositories{}, err
		}
		return db, repositories{
			reports:   pgp.NewReportRepository(db),
			medicines: pgp.NewMedicineRepository(db),
			persons:   pgp.NewPersonRepository(db),
			activity:  pgp.NewActivityRepository(db),
			usage:     pgp.NewUsageCounter(db),
		}, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, repositories{}, err
		}
		return db, repositories{
			reports:   mysqlp.NewReportRepository(db),
			medicines: mysqlp.NewMedicineRepository(db),
			persons:   mysqlp.NewPersonRepository(db),
			activity:  mysqlp.NewActivityRepository(db),
			usage:     mysqlp.NewUsageCounter(db),
		}, nil
	default:
		return nil, repositories{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
