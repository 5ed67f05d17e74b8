package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/delivery/http/controllers"
	"careflow-service/internal/app/delivery/http/middlewares"
	"careflow-service/internal/app/delivery/http/routers"
	"careflow-service/internal/app/drivers/database"
	"careflow-service/internal/app/drivers/logger"
	"careflow-service/internal/app/drivers/messaging"
	"careflow-service/internal/app/drivers/storage"
	"careflow-service/internal/app/services/core/audit"
	"careflow-service/internal/app/services/core/eligibility"
	"careflow-service/internal/app/services/core/enrollments"
	"careflow-service/internal/app/services/core/forms"
	"careflow-service/internal/app/services/core/locations"
	"careflow-service/internal/app/services/core/programs"
	"careflow-service/internal/app/services/core/session"
	"careflow-service/internal/app/services/core/visits"
	emrconfigdocs "careflow-service/internal/app/services/emr/configdocs"
	emrenrollments "careflow-service/internal/app/services/emr/enrollments"
	emrforms "careflow-service/internal/app/services/emr/forms"
	emrlocations "careflow-service/internal/app/services/emr/locations"
	emrprograms "careflow-service/internal/app/services/emr/programs"
	emrvisits "careflow-service/internal/app/services/emr/visits"
	"careflow-service/internal/app/services/shared/careflowqueue"
	"careflow-service/internal/app/services/shared/locker"
	"careflow-service/internal/app/services/shared/redis"
	"careflow-service/internal/app/services/shared/throttle"
	"careflow-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func main() {
	bootstrapLog := logrus.New()

	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		bootstrapLog.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		Redis:          redisClient,
		MongoClient:    mongoClient,
		RabbitMQ:       rabbitMQ,
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	bootstrapingTheApp(bootstrap)

	server := &http.Server{
		Addr:    ":" + internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			bootstrapLog.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	bootstrapLog.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		bootstrapLog.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		bootstrapLog.Fatalf("Error closing drivers: %v", err)
	}

	bootstrapLog.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) {
	internalConfig := bootstrap.InternalConfig
	zapLogger := bootstrap.Logger

	// Shared services
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, zapLogger)
	sessionService := session.NewSessionService(redisRepository)

	eventQueue, err := careflowqueue.NewService(bootstrap.RabbitMQ, zapLogger, internalConfig.Queue.EventQueue, internalConfig.Queue.WorkerBatchSize)
	if err != nil {
		logrus.Fatalf("Failed to declare event queue: %v", err)
	}

	// One HTTP client for every EMR call; writes additionally pass the
	// token-bucket throttle.
	emrHTTPClient := &http.Client{
		Timeout: time.Duration(internalConfig.EMR.RequestTimeoutInSeconds) * time.Second,
	}
	writeThrottle := throttle.NewWriteThrottle(internalConfig.EMR.WriteRatePerSecond, internalConfig.EMR.WriteBurst, zapLogger)

	// EMR clients
	programEMRClient := emrprograms.NewProgramEMRClient(internalConfig.EMR.BaseUrl, emrHTTPClient, zapLogger)
	enrollmentEMRClient := emrenrollments.NewEnrollmentEMRClient(internalConfig.EMR.BaseUrl, emrHTTPClient, writeThrottle, zapLogger)
	visitEMRClient := emrvisits.NewVisitEMRClient(internalConfig.EMR.BaseUrl, emrHTTPClient, writeThrottle, zapLogger)
	locationEMRClient := emrlocations.NewLocationEMRClient(internalConfig.EMR.BaseUrl, internalConfig.EMR.LocationPageLimit, emrHTTPClient, zapLogger)
	formEMRClient := emrforms.NewFormEMRClient(internalConfig.EMR.BaseUrl, emrHTTPClient, zapLogger)

	var configDocumentClient contracts.ConfigDocumentClient
	if internalConfig.ETL.Source == constvars.ConfigSourceBucket {
		minioClient := storage.NewMinio(bootstrap.DriverConfig)
		configDocumentClient = emrconfigdocs.NewBucketDocumentClient(minioClient, internalConfig.ETL.BucketName, zapLogger)
	} else {
		configDocumentClient = emrconfigdocs.NewRESTDocumentClient(internalConfig.ETL.BaseUrl, emrHTTPClient, zapLogger)
	}

	// Audit trail
	eventPublisher := audit.NewQueueEventPublisher(eventQueue)
	programEventRepository := audit.NewProgramEventMongoRepository(bootstrap.MongoClient, bootstrap.DriverConfig.MongoDB.CareflowDbName)
	auditUsecase := audit.NewAuditUsecase(programEventRepository, zapLogger)

	auditWorker := audit.NewWorker(zapLogger, internalConfig, lockerService, eventQueue, programEventRepository)
	bootstrap.WorkerStop = auditWorker.Start(context.Background())

	// Usecases
	ruleEvaluator := eligibility.NewRuleEvaluator(zapLogger)

	programUsecase := programs.NewProgramUsecase(programEMRClient, enrollmentEMRClient, configDocumentClient, redisRepository, internalConfig, zapLogger)
	enrollmentUsecase := enrollments.NewEnrollmentUsecase(enrollmentEMRClient, programUsecase, configDocumentClient, redisRepository, sessionService, eventPublisher, internalConfig, zapLogger)
	wizardUsecase := enrollments.NewWizardUsecase(programUsecase, enrollmentEMRClient, configDocumentClient, redisRepository, lockerService, sessionService, eventPublisher, internalConfig, zapLogger)
	visitUsecase := visits.NewVisitUsecase(visitEMRClient, enrollmentEMRClient, configDocumentClient, redisRepository, ruleEvaluator, sessionService, eventPublisher, internalConfig, zapLogger)
	formUsecase := forms.NewFormUsecase(formEMRClient, visitEMRClient, configDocumentClient, redisRepository, internalConfig, zapLogger)
	locationUsecase := locations.NewLocationUsecase(locationEMRClient, redisRepository, internalConfig, zapLogger)

	// Controllers
	programController := controllers.NewProgramController(zapLogger, programUsecase)
	enrollmentController := controllers.NewEnrollmentController(zapLogger, enrollmentUsecase)
	wizardController := controllers.NewWizardController(zapLogger, wizardUsecase)
	visitController := controllers.NewVisitController(zapLogger, visitUsecase)
	formController := controllers.NewFormController(zapLogger, formUsecase)
	locationController := controllers.NewLocationController(zapLogger, locationUsecase)
	auditController := controllers.NewAuditController(zapLogger, auditUsecase)

	// Middlewares
	middlewares := middlewares.NewMiddlewares(zapLogger, sessionService, internalConfig)

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		zapLogger,
		middlewares,
		programController,
		enrollmentController,
		wizardController,
		visitController,
		formController,
		locationController,
		auditController,
	)
}
