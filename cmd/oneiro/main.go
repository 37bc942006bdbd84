package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/oneiro/internal/ai"
	"github.com/xxxsen/oneiro/internal/config"
	"github.com/xxxsen/oneiro/internal/corpus"
	"github.com/xxxsen/oneiro/internal/db"
	"github.com/xxxsen/oneiro/internal/docstore"
	"github.com/xxxsen/oneiro/internal/handler"
	"github.com/xxxsen/oneiro/internal/interpret"
	"github.com/xxxsen/oneiro/internal/job"
	"github.com/xxxsen/oneiro/internal/middleware"
	"github.com/xxxsen/oneiro/internal/pkg/jwt"
	"github.com/xxxsen/oneiro/internal/repo"
	"github.com/xxxsen/oneiro/internal/retrieve"
	"github.com/xxxsen/oneiro/internal/schedule"
	"github.com/xxxsen/oneiro/internal/service"
)

func main() {
	var configPath string
	var tokenTTLHours int

	rootCmd := &cobra.Command{
		Use:   "oneiro",
		Short: "oneiro dream interpretation server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg, conn)
		},
	}

	buildCmd := &cobra.Command{
		Use:   "build-corpus",
		Short: "index the research corpus into a fresh generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			return runBuildCorpus(cmd.Context(), cfg, conn)
		},
	}

	tokenCmd := &cobra.Command{
		Use:   "admin-token",
		Short: "issue an admin token for corpus management",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			token, err := jwt.GenerateToken(jwt.RoleAdmin, []byte(cfg.AdminSecret), time.Duration(tokenTTLHours)*time.Hour)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	tokenCmd.Flags().IntVar(&tokenTTLHours, "ttl-hours", 24, "token lifetime in hours")

	rootCmd.AddCommand(runCmd, buildCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	conn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func buildManager(cfg config.AIConfig) (*ai.Manager, error) {
	provider, err := ai.NewProvider(cfg.Provider, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("init ai provider: %w", err)
	}
	generator := ai.NewGenerator(provider, cfg.Model)
	embedder := ai.NewEmbedder(provider, cfg.EmbedModel)
	if len(cfg.Fallbacks) > 0 {
		generators := []ai.GeneratorEntry{{Name: cfg.Provider, Generator: generator}}
		embedders := []ai.EmbedderEntry{{Name: cfg.EmbedModel, Embedder: embedder}}
		for _, fb := range cfg.Fallbacks {
			fbProvider, err := ai.NewProvider(fb.Provider, fb.Data)
			if err != nil {
				return nil, fmt.Errorf("init fallback ai provider %s: %w", fb.Provider, err)
			}
			if fb.Model != "" {
				generators = append(generators, ai.GeneratorEntry{Name: fb.Provider, Generator: ai.NewGenerator(fbProvider, fb.Model)})
			}
			if fb.EmbedModel != "" {
				embedders = append(embedders, ai.EmbedderEntry{Name: fb.EmbedModel, Embedder: ai.NewEmbedder(fbProvider, fb.EmbedModel)})
			}
		}
		generator = ai.NewGroupGenerator(generators)
		embedder = ai.NewGroupEmbedder(embedders)
	}
	return ai.NewManager(generator, embedder, ai.ManagerConfig{
		Timeout:       cfg.Timeout,
		MaxInputChars: cfg.MaxInputChars,
	}), nil
}

func buildCorpusBuilder(cfg *config.Config, conn *sql.DB, manager *ai.Manager) (*corpus.Builder, error) {
	store, err := docstore.New(cfg.Corpus.DocStore)
	if err != nil {
		return nil, fmt.Errorf("init doc store: %w", err)
	}
	sources := corpus.NewSourceTable()
	if cfg.Corpus.SourcesFile != "" {
		sources, err = corpus.LoadSourceTable(cfg.Corpus.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("load sources: %w", err)
		}
	}
	chunkRepo := repo.NewChunkRepo(conn)
	return corpus.NewBuilder(store, chunkRepo, manager, sources, cfg.Corpus.ChunkSize, cfg.Corpus.ChunkOverlap), nil
}

func runBuildCorpus(ctx context.Context, cfg *config.Config, conn *sql.DB) error {
	manager, err := buildManager(cfg.AI)
	if err != nil {
		return err
	}
	builder, err := buildCorpusBuilder(cfg, conn, manager)
	if err != nil {
		return err
	}
	count, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("indexed %d chunks\n", count)
	return nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("doc_store", cfg.Corpus.DocStore.Type),
	)

	manager, err := buildManager(cfg.AI)
	if err != nil {
		return err
	}
	chunkRepo := repo.NewChunkRepo(conn)
	cacheRepo := repo.NewEmbeddingCacheRepo(conn)
	journalRepo := repo.NewJournalRepo(conn)

	index := retrieve.NewPGIndex(chunkRepo, cacheRepo, manager)
	retriever := retrieve.NewRetriever(index)
	researcher := interpret.NewResearcher(retriever)
	ragInterpreter := interpret.NewRAGInterpreter(manager, researcher)
	agenticInterpreter := interpret.NewAgenticInterpreter(manager, researcher)

	builder, err := buildCorpusBuilder(cfg, conn, manager)
	if err != nil {
		return err
	}

	interpretService := service.NewInterpretService(ragInterpreter, agenticInterpreter, journalRepo, manager.MaxInputChars())
	journalService := service.NewJournalService(journalRepo)
	corpusService := service.NewCorpusService(builder, chunkRepo)

	deps := handler.RouterDeps{
		Interpret:   handler.NewInterpretHandler(interpretService),
		Journal:     handler.NewJournalHandler(journalService),
		Corpus:      handler.NewCorpusHandler(corpusService),
		AdminSecret: []byte(cfg.AdminSecret),
		RateWindow:  time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	cleanup := job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Cache.EmbeddingTTLDays)
	if err := scheduler.AddJob(cleanup, cfg.Cache.CleanupCron); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
