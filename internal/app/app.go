// Package app initializes and holds the long-lived clients the service
// needs, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/youpredict/you-predict-core/internal/blobstore"
	"github.com/youpredict/you-predict-core/internal/config"
	"github.com/youpredict/you-predict-core/internal/logging"
	"github.com/youpredict/you-predict-core/internal/taskqueue"
	"github.com/youpredict/you-predict-core/internal/warehouse"
	"github.com/youpredict/you-predict-core/internal/websub"
	"github.com/youpredict/you-predict-core/internal/ytapi"
)

// App holds the shared clients: logger, warehouse, raw blob store, task
// queue, the video API client and the hub client. It is built once at
// startup and handed to the components that need it.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Warehouse warehouse.Service
	Blobs     blobstore.Store
	Queue     taskqueue.Queue
	VideoAPI  *ytapi.Client
	Hub       *websub.Client

	bqClient  *bigquery.Client
	gcsClient *gcs.Client
	ctQueue   *taskqueue.CloudTasks
}

// New builds every client from the configuration, failing fast when any
// of them cannot be initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("app: init logger: %w", err)
	}
	logger.Info("initializing services", zap.String("project", cfg.GCP.ProjectID))

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("app: init warehouse client: %w", err)
	}
	wh := warehouse.NewBigQuery(bqClient, cfg.GCP.ProjectID, cfg.Warehouse.Dataset, logger)

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: init storage client: %w", err)
	}
	blobs, err := blobstore.NewGCS(ctx, gcsClient, cfg.Storage.RawBucket, logger)
	if err != nil {
		return nil, fmt.Errorf("app: init blob store: %w", err)
	}

	queue, err := taskqueue.NewCloudTasks(ctx, cfg.GCP.ProjectID, cfg.Tasks.Location, cfg.Tasks.Queue, logger)
	if err != nil {
		return nil, fmt.Errorf("app: init task queue: %w", err)
	}

	videoAPI, err := ytapi.New(ctx, cfg.YouTube.APIKey, cfg.YouTube.QuotaLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("app: init video api client: %w", err)
	}

	hub := websub.New(cfg.Server.BaseURL+"/webhook", logger)

	logger.Info("services initialized")
	return &App{
		Config:    cfg,
		Logger:    logger,
		Warehouse: wh,
		Blobs:     blobs,
		Queue:     queue,
		VideoAPI:  videoAPI,
		Hub:       hub,
		bqClient:  bqClient,
		gcsClient: gcsClient,
		ctQueue:   queue,
	}, nil
}

// Close shuts the clients down and flushes the logger.
func (a *App) Close() {
	a.Logger.Info("shutting down services")
	if err := a.ctQueue.Close(); err != nil {
		a.Logger.Warn("task queue close failed", zap.Error(err))
	}
	if err := a.bqClient.Close(); err != nil {
		a.Logger.Warn("warehouse client close failed", zap.Error(err))
	}
	if err := a.gcsClient.Close(); err != nil {
		a.Logger.Warn("storage client close failed", zap.Error(err))
	}
	// Sync can fail on stderr; best effort.
	_ = a.Logger.Sync()
}
