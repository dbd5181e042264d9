package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acadsync/timetable-api/api/swagger"
	"github.com/acadsync/timetable-api/internal/handler"
	"github.com/acadsync/timetable-api/internal/middleware"
	"github.com/acadsync/timetable-api/internal/models"
	"github.com/acadsync/timetable-api/internal/repository"
	"github.com/acadsync/timetable-api/internal/service"
	"github.com/acadsync/timetable-api/pkg/cache"
	"github.com/acadsync/timetable-api/pkg/config"
	"github.com/acadsync/timetable-api/pkg/database"
	"github.com/acadsync/timetable-api/pkg/jobs"
	"github.com/acadsync/timetable-api/pkg/logger"
	corsmiddleware "github.com/acadsync/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadsync/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description University timetable construction and conflict management
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, conflict cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	groupRepo := repository.NewScheduleGroupRepository(db)
	entryRepo := repository.NewScheduleEntryRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	resolverSvc := service.NewResolverService(instructorRepo, subjectRepo, sectionRepo, logr)
	allocatorSvc := service.NewAllocatorService(groupRepo, entryRepo, meetingRepo, roomRepo,
		resolverSvc, db, validate, logr, metricsSvc, cfg.Scheduler)
	conflictSvc := service.NewConflictService(meetingRepo, groupRepo, logr)
	repairSvc := service.NewRepairService(meetingRepo, conflictSvc, db, logr)
	scheduleSvc := service.NewScheduleService(groupRepo, meetingRepo, conflictSvc, repairSvc, cacheSvc, metricsSvc, logr)
	editSvc := service.NewEditService(meetingRepo, subjectRepo, instructorRepo, roomRepo, cacheSvc, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)

	// Precompute conflict reports off the request path so the first read
	// after a generation or repair hits the cache.
	warmQueue := jobs.NewQueue("conflict-warm", func(ctx context.Context, task jobs.Task) error {
		_, err := scheduleSvc.ConflictReport(ctx, task.GroupID)
		return err
	}, jobs.Config{Workers: 2, Logger: logr})
	warmQueue.Start(context.Background())
	defer warmQueue.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	scheduleHandler := handler.NewScheduleHandler(allocatorSvc, scheduleSvc, warmQueue)
	editHandler := handler.NewEditHandler(editSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	schedules := authed.Group("/schedules")
	schedules.POST("/generate", middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler), scheduleHandler.Generate)
	schedules.GET("/groups", scheduleHandler.ListGroups)
	schedules.GET("/groups/:id", scheduleHandler.GetGroup)
	schedules.DELETE("/groups/:id", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.DeleteGroup)
	schedules.GET("/groups/:id/meetings", scheduleHandler.ListMeetings)
	schedules.GET("/groups/:id/conflicts", scheduleHandler.Conflicts)
	schedules.POST("/groups/:id/repair", middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler), scheduleHandler.Repair)
	schedules.POST("/validate-edit", editHandler.ValidateEdit)
	schedules.POST("/suggest", editHandler.Suggest)
	schedules.PUT("/meetings/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler), editHandler.UpdateMeeting)

	rooms := authed.Group("/rooms")
	rooms.GET("", roomHandler.List)
	rooms.GET("/:id", roomHandler.Get)
	rooms.POST("", middleware.RequireRoles(models.RoleAdmin), roomHandler.Create)
	rooms.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), roomHandler.Update)
	rooms.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), roomHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
