package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"sgfkit/internal/adapters"
	"sgfkit/internal/bootstrap"
	collectionsDelivery "sgfkit/internal/delivery/collections"
	"sgfkit/internal/httpresponse"
	ownMiddleware "sgfkit/internal/middleware"
	"sgfkit/internal/repository"
	collectionsUsecase "sgfkit/internal/usecase/collections"
)

type mainDeliveryHandler struct {
	collections *collectionsDelivery.CollectionHandler
	pingers     []pinger
}

type pinger interface {
	Ping(ctx context.Context) error
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		bootstrap.NewLogger("info").Errorw("Failed to setup configuration", "error", err)
		return
	}
	logger := bootstrap.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	var store collectionsUsecase.CollectionStore
	var pingers []pinger
	if cfg.Storage == bootstrap.StorageMemory {
		logger.Info("Using in-memory collection storage")
		store = repository.NewMapCollectionStorage(cfg.PageLimitCollections)
	} else {
		databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
		defer databaseAdapters.mongoAdapter.Close(context.Background())
		defer databaseAdapters.redisAdapter.Close(context.Background())

		store = repository.NewCollectionRepository(*cfg, logger, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
		pingers = []pinger{databaseAdapters.mongoAdapter, databaseAdapters.redisAdapter}
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go serveGrpc(grpcServer, cfg.GrpcPort, logger)
	defer grpcServer.GracefulStop()

	handlers := initializeDeliveryHandlers(*cfg, logger, store, pingers)
	r := chi.NewRouter()
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		healthServer.Shutdown()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("HTTP shutdown failed", "error", err)
		}
	}()

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)
	h.collections.Router(r)
}

func (h *mainDeliveryHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			httpresponse.WriteResponseWithStatus(w, http.StatusServiceUnavailable, httpresponse.ErrorResponse{ErrorDescription: err.Error()})
			return
		}
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "ok")
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize MongoDB", "error", err)
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize Redis", "error", err)
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	store collectionsUsecase.CollectionStore,
	pingers []pinger,
) *mainDeliveryHandler {
	collectionUC := collectionsUsecase.NewCollectionUseCase(cfg, log, store)

	return &mainDeliveryHandler{
		collections: collectionsDelivery.NewCollectionHandler(cfg, log, collectionUC),
		pingers:     pingers,
	}
}

func serveGrpc(server *grpc.Server, port string, log *zap.SugaredLogger) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		log.Fatalw("Failed to listen for gRPC", "error", err)
	}
	log.Infof("gRPC health service is running on port %s", port)
	if err := server.Serve(lis); err != nil {
		log.Errorw("gRPC server stopped", "error", err)
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
