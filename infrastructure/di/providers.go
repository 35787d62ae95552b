package di

import (
	"context"

	"wikigraph-backend/application/ports"
	appservices "wikigraph-backend/application/services"
	domainconfig "wikigraph-backend/domain/config"
	"wikigraph-backend/domain/core/aggregates"
	domainservices "wikigraph-backend/domain/services"
	"wikigraph-backend/infrastructure/config"
	dynamopersistence "wikigraph-backend/infrastructure/persistence/dynamodb"
	"wikigraph-backend/infrastructure/persistence/memory"
	"wikigraph-backend/infrastructure/wikipedia"
	"wikigraph-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Graph     *aggregates.Graph
	Resolver  ports.ArticleResolver
	Snapshots ports.SnapshotRepository
	Stats     ports.ArticleStatsRepository
	Linker    *appservices.LinkerService
	Replay    *appservices.ReplayService
	Share     *appservices.ShareService
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the metrics registry
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideDomainConfig creates the domain limits
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideGraph creates the session graph
func ProvideGraph(domainCfg *domainconfig.DomainConfig) *aggregates.Graph {
	return aggregates.NewGraph(domainCfg)
}

// ProvideResolver creates the article resolver
func ProvideResolver(cfg *config.Config, logger *zap.Logger) ports.ArticleResolver {
	return wikipedia.NewClient(cfg, logger)
}

// ProvideSnapshotRepository selects the snapshot store for the environment.
// Development keeps snapshots in memory; everything else goes to DynamoDB.
func ProvideSnapshotRepository(
	client *awsdynamodb.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.SnapshotRepository {
	if cfg.IsDevelopment() {
		return memory.NewSnapshotRepository(cfg.SnapshotTTL, cfg.ViewExtension)
	}
	return dynamopersistence.NewSnapshotRepository(
		client,
		cfg.SnapshotsTable,
		cfg.SnapshotTTL,
		cfg.ViewExtension,
		logger,
	)
}

// ProvideArticleStatsRepository selects the stats store for the environment
func ProvideArticleStatsRepository(
	client *awsdynamodb.Client,
	cfg *config.Config,
	logger *zap.Logger,
) ports.ArticleStatsRepository {
	if cfg.IsDevelopment() {
		return memory.NewArticleStatsRepository()
	}
	return dynamopersistence.NewArticleStatsRepository(client, cfg.StatsTable, logger)
}

// ProvideBFSSeeder creates the replay seeder
func ProvideBFSSeeder() *domainservices.BFSSeeder {
	return domainservices.NewBFSSeeder()
}

// ProvideAnalytics creates the analytics service
func ProvideAnalytics() *domainservices.GraphAnalyticsService {
	return domainservices.NewGraphAnalyticsService()
}

// ProvideLinkerService creates the linker service
func ProvideLinkerService(
	graph *aggregates.Graph,
	resolver ports.ArticleResolver,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *appservices.LinkerService {
	return appservices.NewLinkerService(graph, resolver, domainCfg, logger, metrics)
}

// ProvideReplayService creates the replay service
func ProvideReplayService(
	graph *aggregates.Graph,
	seeder *domainservices.BFSSeeder,
	cfg *config.Config,
	logger *zap.Logger,
) *appservices.ReplayService {
	return appservices.NewReplayService(graph, seeder, cfg.ReplayStepDelay, logger)
}

// ProvideShareService creates the share service
func ProvideShareService(
	graph *aggregates.Graph,
	snapshots ports.SnapshotRepository,
	stats ports.ArticleStatsRepository,
	analytics *domainservices.GraphAnalyticsService,
	logger *zap.Logger,
	metrics *observability.Metrics,
) *appservices.ShareService {
	return appservices.NewShareService(graph, snapshots, stats, analytics, logger, metrics)
}
