// Package app wires configuration, stores and HTTP routes together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcatalog/internal/config"
	"foodcatalog/internal/database"
	"foodcatalog/internal/domain/food"
	"foodcatalog/internal/domain/upload"
	"foodcatalog/internal/middleware"
	"foodcatalog/internal/pkg/response"
)

// App owns the router and the connections behind it.
type App struct {
	Router  *gin.Engine
	closers []func(context.Context) error
}

// New opens the catalog store and upload storage selected by cfg and builds
// the router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func(context.Context) error{closeStore}}

	storage, err := openStorage(ctx, cfg)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.Router = NewRouter(cfg, store, storage)
	return a, nil
}

// OpenStore connects to the catalog store named by cfg.DatabaseURL. The
// returned func closes the connection.
func OpenStore(ctx context.Context, cfg *config.Config) (food.Store, func(context.Context) error, error) {
	if cfg.IsMongo() {
		client, err := database.ConnectMongo(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := food.NewMongoStore(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		slog.Info("catalog store ready", "driver", "mongodb", "database", cfg.MongoDatabase)
		return store, client.Disconnect, nil
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func(context.Context) error { return database.Close(db) }

	store, err := food.NewGormStore(db)
	if err != nil {
		_ = closeDB(ctx)
		return nil, nil, err
	}
	slog.Info("catalog store ready", "driver", db.Dialector.Name())
	return store, closeDB, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (upload.Storage, error) {
	switch cfg.UploadBackend {
	case config.UploadBackendS3:
		s, err := upload.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		slog.Info("upload storage ready", "backend", "s3", "bucket", cfg.S3Bucket)
		return s, nil
	case config.UploadBackendDisk:
		slog.Info("upload storage ready", "backend", "disk", "dir", cfg.UploadDir)
		return upload.NewDiskStorage(cfg.UploadDir), nil
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
	}
}

// NewRouter builds the gin engine serving the catalog and upload APIs.
func NewRouter(cfg *config.Config, store food.Store, storage upload.Storage) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	if disk, ok := storage.(*upload.DiskStorage); ok {
		r.Static("/images", disk.Root())
	}

	foodHandler := food.NewHandler(food.NewCatalogService(store), food.NewMutationService(store))
	uploadHandler := upload.NewHandler(upload.NewPipeline(storage, cfg.PublicBaseURL), cfg.UploadMaxSize, cfg.UploadMaxFiles)

	v1 := r.Group("/api/v1")
	{
		food.RegisterRoutes(v1, foodHandler)
		upload.RegisterRoutes(v1, uploadHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return r
}

// Close releases the store connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
