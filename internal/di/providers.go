package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
	"github.com/quantfra/swingdesk/internal/handler/api"
	"github.com/quantfra/swingdesk/internal/ledger"
	internalrepo "github.com/quantfra/swingdesk/internal/repository"
	icache "github.com/quantfra/swingdesk/internal/service/cache"
	"github.com/quantfra/swingdesk/internal/service/ratelimit"
	"github.com/quantfra/swingdesk/internal/services/external"
	"github.com/quantfra/swingdesk/internal/services/indicators"
	"github.com/quantfra/swingdesk/internal/services/marketctx"
	"github.com/quantfra/swingdesk/internal/services/scoring"
	"github.com/quantfra/swingdesk/internal/services/sizing"
	"github.com/quantfra/swingdesk/internal/usecase"
	pkgcache "github.com/quantfra/swingdesk/pkg/cache"
	pkgch "github.com/quantfra/swingdesk/pkg/clickhouse"
	"github.com/quantfra/swingdesk/pkg/config"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
	pkgkafka "github.com/quantfra/swingdesk/pkg/kafka"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
	"github.com/quantfra/swingdesk/pkg/metrics"
	"github.com/quantfra/swingdesk/pkg/queue"
	"github.com/quantfra/swingdesk/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and initializes
// the bar schema. Returns nil for the http backend.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Provider.Backend != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideRedisClient creates a shared redis client, nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCacheService creates the bar cache: layered over redis when
// enabled, in-process memory otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix("swingdesk"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideBarSource selects the history backend and wraps it with the
// redis bar cache when available.
func ProvideBarSource(
	cfg *config.Config,
	chClient *pkgch.Client,
	cacheSvc pkgcache.Service,
	l *applogger.Logger,
) (domrepo.BarSource, error) {
	var base domrepo.BarSource
	switch cfg.Provider.Backend {
	case "clickhouse":
		store := internalrepo.NewCHBarStore(chClient, cfg.ClickHouse.Database)
		store.SetLogger(l)
		base = store
	case "http":
		base = internalrepo.NewHTTPBarSource(cfg.Provider.BaseURL, cfg.Provider.Timeout)
	default:
		return nil, fmt.Errorf("unknown provider backend: %s", cfg.Provider.Backend)
	}
	if cacheSvc == nil {
		return base, nil
	}
	cached := internalrepo.NewCachedBarSource(base, cacheSvc, cfg.Provider.CacheTTL)
	cached.SetLogger(l)
	return cached, nil
}

// ProvideSignalSource wires the optional sentiment/fear provider.
func ProvideSignalSource(cfg *config.Config) domrepo.SignalSource {
	if cfg.Signals.BaseURL == "" {
		return external.NoopSignalSource{}
	}
	return external.NewHTTPSignalSource(cfg)
}

// ProvideTradePublisher creates the kafka audit publisher, or a noop
// when no broker is configured.
func ProvideTradePublisher(cfg *config.Config) (domrepo.TradePublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopTradePublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaTradePublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideSnapshotStore creates the portfolio snapshot file store.
func ProvideSnapshotStore(cfg *config.Config) domrepo.SnapshotStore {
	return internalrepo.NewFileSnapshotStore(cfg.Ledger.SnapshotPath)
}

// ProvideLedger creates the multi-currency paper ledger.
func ProvideLedger(cfg *config.Config) *ledger.Ledger {
	return ledger.New(ledger.Config{
		InitialCash:   cfg.Ledger.InitialCash,
		StopLossPct:   cfg.Ledger.StopLossPct,
		TakeProfitPct: cfg.Ledger.TakeProfitPct,
	})
}

// ProvideIndicatorEngine creates the indicator engine with contract
// default periods.
func ProvideIndicatorEngine() domsvc.IndicatorEngine {
	return indicators.NewEngine(indicators.Config{})
}

// ProvideClassifier creates the market context classifier.
func ProvideClassifier(cfg *config.Config) domsvc.ContextClassifier {
	return marketctx.NewClassifier(marketctx.Config{PerfBand: cfg.Analysis.PerfBandPct})
}

// ProvideScorer creates the composite scorer.
func ProvideScorer() domsvc.Scorer {
	return scoring.NewScorer(scoring.Config{})
}

// ProvideSizer creates the position sizer.
func ProvideSizer(cfg *config.Config) domsvc.Sizer {
	return sizing.NewSizer(sizing.Config{
		RiskPerTrade:    cfg.Analysis.RiskPerTrade,
		StopFallbackPct: cfg.Analysis.StopFallbackPct,
		TargetPct:       cfg.Analysis.TargetPct,
	})
}

// ProvideAnalyzer creates the per-symbol analysis pipeline.
func ProvideAnalyzer(
	bars domrepo.BarSource,
	signals domrepo.SignalSource,
	engine domsvc.IndicatorEngine,
	classifier domsvc.ContextClassifier,
	scorer domsvc.Scorer,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Analyzer {
	a := usecase.NewAnalyzer(bars, signals, engine, classifier, scorer)
	a.SetLogger(l)
	a.SetResultTTL(cfg.Analysis.ResultTTL)
	return a
}

// ProvideScanner creates the bounded market scanner.
func ProvideScanner(
	analyzer *usecase.Analyzer,
	cfg *config.Config,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.Scanner {
	s := usecase.NewScanner(analyzer, ratelimit.New(), usecase.ScannerConfig{
		Workers:       cfg.Scan.Workers,
		RateCapacity:  cfg.Provider.RateCapacity,
		RateRefillSec: cfg.Provider.RateRefillSec,
		Threshold:     cfg.Scan.Threshold,
		TopK:          cfg.Scan.TopK,
	}, m)
	s.SetLogger(l)
	return s
}

// ProvideTrading creates the ledger write path.
func ProvideTrading(
	lg *ledger.Ledger,
	sizer domsvc.Sizer,
	bars domrepo.BarSource,
	store domrepo.SnapshotStore,
	publisher domrepo.TradePublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.TradingUseCase {
	uc := usecase.NewTradingUseCase(lg, sizer, bars, store, publisher, m)
	uc.SetLogger(l)
	return uc
}

// ProvideBytesCache backs handler response caching and parked scan
// results; redis when available, in-process otherwise.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideAsyncScans creates the background scan publisher, nil when
// the queue is disabled.
func ProvideAsyncScans(
	cfg *config.Config,
	rdb *redis.Client,
	results icache.BytesCache,
	l *applogger.Logger,
) *usecase.AsyncScans {
	if !cfg.Queue.Enabled || rdb == nil {
		return nil
	}
	pub := queue.NewRedisPublisher(l, rdb)
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "error_logs",
		Publisher:      pub,
	})
	return usecase.NewAsyncScans(pub, results)
}

// ProvideQueueConsumer creates the scan job consumer, nil when the
// queue is disabled.
func ProvideQueueConsumer(
	cfg *config.Config,
	rdb *redis.Client,
	scanner *usecase.Scanner,
	results icache.BytesCache,
	l *applogger.Logger,
) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rdb == nil {
		return nil
	}
	job := usecase.NewScanJob(scanner, results, time.Hour)
	return queue.NewRedisConsumer(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rdb, []queue.Job{job})
}

// ProvideRoutes assembles every HTTP handler.
func ProvideRoutes(
	analyzer *usecase.Analyzer,
	scanner *usecase.Scanner,
	async *usecase.AsyncScans,
	trading *usecase.TradingUseCase,
	bars domrepo.BarSource,
	bytesCache icache.BytesCache,
	m domrepo.Metrics,
	l *applogger.Logger,
) xhttp.Handler {
	analysis := api.NewAnalysisHandler(analyzer, scanner, async, trading, bars)
	analysis.SetCache(bytesCache)
	analysis.SetLogger(l)

	portfolio := api.NewPortfolioHandler(trading)
	portfolio.SetLogger(l)

	stream := api.NewScanStreamHandler(scanner, m)
	stream.SetLogger(l)

	return api.NewRoutes(analysis, portfolio, stream)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	trading *usecase.TradingUseCase,
	bars domrepo.BarSource,
	consumer *queue.RedisQueue,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, l, handler, trading, bars, consumer, chClient)
}
