package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rkit/filemanager-go/internal/conf"
	"github.com/rkit/filemanager-go/internal/file/biz"
	filedata "github.com/rkit/filemanager-go/internal/file/data"
	"github.com/rkit/filemanager-go/internal/file/storage"
	"github.com/rkit/filemanager-go/internal/pkg/database"
	"github.com/rkit/filemanager-go/internal/pkg/logger"
	"github.com/rkit/filemanager-go/internal/pkg/minio"
)

// purge-temp removes temporary files that were staged but never
// bound. The engine itself does no background sweeping; this command
// owns the age-based retention policy and is meant to run from cron.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	olderThan := flag.Duration("older-than", 0, "retention override (default from config)")
	limit := flag.Int("limit", 0, "maximum number of files to purge per run (0 = unlimited)")
	flag.Parse()

	cfg, err := conf.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logCfg := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	appLog, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	dbCfg := database.DefaultConfig()
	dbCfg.Host = cfg.Database.Host
	dbCfg.Port = cfg.Database.Port
	dbCfg.User = cfg.Database.User
	dbCfg.Password = cfg.Database.Password
	dbCfg.DBName = cfg.Database.DBName
	if cfg.Database.SSLMode != "" {
		dbCfg.SSLMode = cfg.Database.SSLMode
	}
	db, err := database.New(dbCfg, appLog)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	store, err := newStorage(cfg, appLog)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	owners, err := biz.NewOwnerTypes(cfg.Files.OwnerTypes)
	if err != nil {
		log.Fatalf("invalid owner type registry: %v", err)
	}

	// Every registered owner type gets a minimal attribute so the
	// purge can resolve a stale file back to its storage.
	attrs := make([]*biz.Attribute, 0, len(cfg.Files.OwnerTypes))
	for name := range cfg.Files.OwnerTypes {
		attrs = append(attrs, &biz.Attribute{
			Name:    name,
			Storage: store,
		})
	}

	uc, err := biz.NewFileUseCase(
		filedata.NewFileRepo(db),
		filedata.NewLinkRepo(db),
		owners,
		attrs,
		db,
		appLog,
	)
	if err != nil {
		log.Fatalf("failed to build file use case: %v", err)
	}

	retention := cfg.Files.TempRetention
	if *olderThan > 0 {
		retention = *olderThan
	}
	cutoff := time.Now().Add(-retention)

	fmt.Printf("purging temporary files staged before %s\n", cutoff.Format(time.RFC3339))

	purged, err := uc.PurgeTemporary(context.Background(), cutoff, *limit)
	if err != nil {
		log.Fatalf("purge failed after %d files: %v", purged, err)
	}

	fmt.Printf("done, %d temporary files removed\n", purged)
}

// newStorage builds the backend named by storage.driver so purge runs
// against the same bytes the application writes.
func newStorage(cfg *conf.Config, appLog *logger.Logger) (biz.Storage, error) {
	if cfg.Storage.Driver == "minio" {
		minioCfg := minio.DefaultConfig()
		minioCfg.Endpoint = cfg.MinIO.Endpoint
		minioCfg.AccessKeyID = cfg.MinIO.AccessKey
		minioCfg.SecretAccessKey = cfg.MinIO.SecretKey
		minioCfg.UseSSL = cfg.MinIO.UseSSL

		client, err := minio.NewClient(minioCfg, appLog.Logger)
		if err != nil {
			return nil, err
		}
		return storage.NewMinIO(context.Background(), client, cfg.MinIO.Bucket, cfg.Storage.PublicBaseURL, appLog)
	}

	return storage.NewLocal(
		cfg.Storage.UploadDir,
		cfg.Storage.ProtectedDir,
		cfg.Storage.PublicBaseURL,
		appLog,
	)
}
