package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ssg-mis/order-to-dispatch-backend/internal/application"
	"github.com/ssg-mis/order-to-dispatch-backend/internal/domain"
	mongoRepo "github.com/ssg-mis/order-to-dispatch-backend/internal/infrastructure/mongodb"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/errors"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/events"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/kafka"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/logging"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/metrics"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/middleware"
	"github.com/ssg-mis/order-to-dispatch-backend/pkg/mongodb"
)

const serviceName = "dispatch-api"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting dispatch pipeline API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	protectedMongo := mongodb.NewProtectedClient(mongoClient, m, logger)
	defer protectedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	kafkaProducer := kafka.NewProducer(config.Kafka, m)
	defer kafkaProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := events.NewFactory("/dispatch-api")

	orderRepo := mongoRepo.NewOrderRepository(protectedMongo)
	skuRepo := mongoRepo.NewSkuRepository(protectedMongo)

	dispatchService := application.NewDispatchService(orderRepo, kafkaProducer, eventFactory, logger)
	dashboardService := application.NewDashboardService(orderRepo, m, logger)
	reportService := application.NewReportService(orderRepo, skuRepo, logger)

	middleware.InitValidator()

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return protectedMongo.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api")
	{
		api.GET("/dashboard", getDashboardHandler(dashboardService, logger))
		api.GET("/dashboard/stats", getStatsHandler(dashboardService, logger))
		api.GET("/reports", getReportHandler(reportService, logger))

		orders := api.Group("/orders")
		{
			orders.POST("", punchOrderHandler(dispatchService, m, logger))
			orders.GET("/:orderNo", getOrderHandler(dispatchService, logger))
			orders.GET("/:orderNo/progress", getProgressHandler(dispatchService, logger))
			orders.POST("/:orderNo/stages/:stageIndex/plan", planStageHandler(dispatchService, logger))
			orders.POST("/:orderNo/stages/:stageIndex/complete", completeStageHandler(dispatchService, m, logger))
			orders.POST("/:orderNo/dispatch", submitDispatchHandler(dispatchService, m, logger))
			orders.POST("/:orderNo/cancel", cancelOrderHandler(dispatchService, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "dispatch_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// respondDomainError maps domain sentinel errors onto API error responses
func respondDomainError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondWithAppError(errors.MapDomainError(err))
}

// HTTP Handlers

func getDashboardHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		snapshot, err := service.GetDashboard(c.Request.Context())
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, snapshot)
	}
}

func getStatsHandler(service *application.DashboardService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		stats, err := service.GetStats(c.Request.Context())
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func getReportHandler(service *application.ReportService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		filter := domain.OrderFilter{
			OrderNoPrefix: c.Query("orderNo"),
			CustomerName:  c.Query("customerName"),
			OilType:       c.Query("oilType"),
			SkuName:       c.Query("skuName"),
		}

		if raw := c.Query("fromDate"); raw != "" {
			from, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responder.RespondBadRequest("fromDate must be formatted YYYY-MM-DD")
				return
			}
			filter.FromDate = &from
		}
		if raw := c.Query("toDate"); raw != "" {
			to, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responder.RespondBadRequest("toDate must be formatted YYYY-MM-DD")
				return
			}
			filter.ToDate = &to
		}

		report, err := service.GetReport(c.Request.Context(), filter)
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

func punchOrderHandler(service *application.DispatchService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			CustomerName string  `json:"customerName" binding:"required"`
			SkuName      string  `json:"skuName"`
			OilType      string  `json:"oilType"`
			Quantity     float64 `json:"quantity" binding:"required,gt=0"`
			UOM          string  `json:"uom"`
			Lines        int     `json:"lines" binding:"omitempty,min=1,max=26"`
		}

		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.PunchOrderCommand{
			CustomerName: req.CustomerName,
			SkuName:      req.SkuName,
			OilType:      req.OilType,
			Quantity:     req.Quantity,
			UOM:          req.UOM,
			Lines:        req.Lines,
		}

		orders, err := service.PunchOrder(c.Request.Context(), cmd)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		for range orders {
			m.RecordOrderPunched()
		}
		c.JSON(http.StatusCreated, orders)
	}
}

func getOrderHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderNo, ok := parseOrderNo(c, responder)
		if !ok {
			return
		}

		order, err := service.GetOrder(c.Request.Context(), orderNo)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func getProgressHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderNo, ok := parseOrderNo(c, responder)
		if !ok {
			return
		}

		progress, err := service.GetStageProgress(c.Request.Context(), orderNo)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		c.JSON(http.StatusOK, progress)
	}
}

func planStageHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderNo, ok := parseOrderNo(c, responder)
		if !ok {
			return
		}
		stageIndex, ok := parseStageIndex(c, responder)
		if !ok {
			return
		}

		// The body is optional: an empty POST plans the stage for now
		var req struct {
			PlannedAt *time.Time `json:"plannedAt"`
		}
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
		}

		cmd := application.PlanStageCommand{
			OrderNo:    orderNo,
			StageIndex: stageIndex,
		}
		if req.PlannedAt != nil {
			cmd.PlannedAt = *req.PlannedAt
		}

		order, err := service.PlanStage(c.Request.Context(), cmd)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func completeStageHandler(service *application.DispatchService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderNo, ok := parseOrderNo(c, responder)
		if !ok {
			return
		}
		stageIndex, ok := parseStageIndex(c, responder)
		if !ok {
			return
		}

		var req struct {
			ActualAt *time.Time `json:"actualAt"`
		}
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
		}

		cmd := application.CompleteStageCommand{
			OrderNo:    orderNo,
			StageIndex: stageIndex,
		}
		if req.ActualAt != nil {
			cmd.ActualAt = *req.ActualAt
		}

		order, err := service.CompleteStage(c.Request.Context(), cmd)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		m.RecordStageCompleted(string(domain.StageAt(stageIndex).ID))
		c.JSON(http.StatusOK, order)
	}
}

func submitDispatchHandler(service *application.DispatchService, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderNo, ok := parseOrderNo(c, responder)
		if !ok {
			return
		}

		var req struct {
			DispatchQty float64 `json:"dispatchQty" binding:"required,gt=0"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.SubmitDispatchCommand{
			OrderNo:     orderNo,
			DispatchQty: req.DispatchQty,
		}

		order, err := service.SubmitDispatch(c.Request.Context(), cmd)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		completed := order.RemainingDispatchQty != nil && *order.RemainingDispatchQty <= 0
		m.RecordDispatch(completed)
		c.JSON(http.StatusOK, order)
	}
}

func cancelOrderHandler(service *application.DispatchService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orderNo, ok := parseOrderNo(c, responder)
		if !ok {
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
		}

		cmd := application.CancelOrderCommand{
			OrderNo: orderNo,
			Reason:  req.Reason,
		}

		order, err := service.CancelOrder(c.Request.Context(), cmd)
		if err != nil {
			respondDomainError(responder, err)
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// parseOrderNo validates the :orderNo path param against the DO-NNN
// business key format before any lookup happens
func parseOrderNo(c *gin.Context, responder *middleware.ErrorResponder) (string, bool) {
	var uri struct {
		OrderNo string `uri:"orderNo" binding:"required,orderno"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		responder.RespondBadRequest("orderNo must be a DO-NNN order number")
		return "", false
	}
	return uri.OrderNo, true
}

// parseStageIndex reads the :stageIndex path param. Stage 0 is Order
// Punch and is implicit, so valid submissions are 1..NumStages-1.
func parseStageIndex(c *gin.Context, responder *middleware.ErrorResponder) (int, bool) {
	raw := c.Param("stageIndex")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 1 || index >= domain.NumStages {
		responder.RespondBadRequest("stageIndex must be an integer between 1 and " + strconv.Itoa(domain.NumStages-1))
		return 0, false
	}
	return index, true
}
