// ShopService 主程序
// 功能：商品目录、购物车、支付台账与联系人录入的 REST 服务
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/shoplite/shoplite/internal/cart/application"
	cartdomain "github.com/shoplite/shoplite/internal/cart/domain"
	cartmysql "github.com/shoplite/shoplite/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/shoplite/shoplite/internal/cart/interfaces/http"
	catalogapp "github.com/shoplite/shoplite/internal/catalog/application"
	catalogdomain "github.com/shoplite/shoplite/internal/catalog/domain"
	catalogmysql "github.com/shoplite/shoplite/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/shoplite/shoplite/internal/catalog/interfaces/http"
	contactapp "github.com/shoplite/shoplite/internal/contact/application"
	contactdomain "github.com/shoplite/shoplite/internal/contact/domain"
	contactmysql "github.com/shoplite/shoplite/internal/contact/infrastructure/persistence/mysql"
	contacthttp "github.com/shoplite/shoplite/internal/contact/interfaces/http"
	paymentapp "github.com/shoplite/shoplite/internal/payment/application"
	paymentdomain "github.com/shoplite/shoplite/internal/payment/domain"
	"github.com/shoplite/shoplite/internal/payment/infrastructure/messaging"
	paymentmysql "github.com/shoplite/shoplite/internal/payment/infrastructure/persistence/mysql"
	paymenthttp "github.com/shoplite/shoplite/internal/payment/interfaces/http"
	"github.com/shoplite/shoplite/pkg/cache"
	"github.com/shoplite/shoplite/pkg/config"
	"github.com/shoplite/shoplite/pkg/db"
	"github.com/shoplite/shoplite/pkg/logger"
	"github.com/shoplite/shoplite/pkg/metrics"
	"github.com/shoplite/shoplite/pkg/middleware"
	"github.com/shoplite/shoplite/pkg/mq"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/shop/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting ShopService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(
			&catalogdomain.Product{},
			&cartdomain.CartItem{},
			&paymentdomain.Payment{},
			&contactdomain.Contact{},
		); err != nil {
			logger.Fatal(ctx, "Failed to migrate database", "error", err)
		}
	}

	// 4. 初始化 Redis（可选）
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Error(ctx, "Failed to initialize Redis, continuing without cache", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	// 5. 初始化 Kafka（可选）
	var publisher paymentdomain.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Error(ctx, "Failed to initialize Kafka producer, continuing without events", "error", err)
		} else {
			defer producer.Close()
			publisher = messaging.NewKafkaPublisher(producer, cfg.Kafka.PaymentTopic)
		}
	}

	// 6. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := metricsInstance.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 7. 初始化仓储
	cacheTTL := time.Duration(cfg.Redis.ProductCacheTTL) * time.Second
	productRepo := catalogmysql.NewProductRepository(database.DB, redisCache, cacheTTL)
	cartItemRepo := cartmysql.NewCartItemRepository(database.DB)
	paymentRepo := paymentmysql.NewPaymentRepository(database.DB)
	contactRepo := contactmysql.NewContactRepository(database.DB)

	// 8. 初始化应用服务
	catalogService := catalogapp.NewCatalogService(productRepo, metricsInstance)
	cartService := cartapp.NewCartService(database.DB, cartItemRepo, productRepo, metricsInstance)
	paymentService := paymentapp.NewPaymentService(database.DB, paymentRepo, cartItemRepo, productRepo, publisher, metricsInstance)
	contactService := contactapp.NewContactService(contactRepo, metricsInstance)

	// 9. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, metricsInstance, catalogService, cartService, paymentService, contactService)

	// 10. 启动与优雅关停
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			logger.Info(ctx, "Shutting down ShopService")
		case <-gctx.Done():
			logger.Info(ctx, "Context cancelled, shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server exited with error", "error", err)
	}
	logger.Info(ctx, "ShopService stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(
	cfg *config.Config,
	m *metrics.Metrics,
	catalogService *catalogapp.CatalogService,
	cartService *cartapp.CartService,
	paymentService *paymentapp.PaymentService,
	contactService *contactapp.ContactService,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	router.Use(middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(1000, 1000)))

	api := router.Group("/")
	cataloghttp.NewProductHandler(catalogService).RegisterRoutes(api)
	carthttp.NewCartHandler(cartService).RegisterRoutes(api)
	paymenthttp.NewPaymentHandler(paymentService).RegisterRoutes(api)
	contacthttp.NewContactHandler(contactService).RegisterRoutes(api)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
