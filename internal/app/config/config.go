package config

import (
	"careflow-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Host:           utils.GetEnvString("MONGODB_HOST", "localhost"),
			Port:           utils.GetEnvString("MONGODB_PORT", "27017"),
			Username:       utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password:       utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
			CareflowDbName: utils.GetEnvString("MONGODB_CAREFLOW_DB_NAME", "careflow"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Host:      utils.GetEnvString("MINIO_HOST", "localhost"),
			Port:      utils.GetEnvString("MINIO_PORT", "9000"),
			AccessKey: utils.GetEnvString("MINIO_ACCESS_KEY", "defaultAccessKey"),
			SecretKey: utils.GetEnvString("MINIO_SECRET_KEY", "defaultSecretKey"),
			UseSSL:    utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", "8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "UTC"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "careflow"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUESTS", 100),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 2),
		},
		EMR: EMR{
			BaseUrl:                 utils.GetEnvString("EMR_BASE_URL", "http://localhost:8090/ws/rest/v1"),
			RequestTimeoutInSeconds: utils.GetEnvInt("EMR_REQUEST_TIMEOUT_IN_SECONDS", 15),
			WriteRatePerSecond:      utils.GetEnvFloat("EMR_WRITE_RATE_PER_SECOND", 5),
			WriteBurst:              utils.GetEnvInt("EMR_WRITE_BURST", 5),
			LocationPageLimit:       utils.GetEnvInt("EMR_LOCATION_PAGE_LIMIT", 50),
		},
		ETL: ETL{
			Source:     utils.GetEnvString("ETL_CONFIG_SOURCE", "rest"),
			BaseUrl:    utils.GetEnvString("ETL_BASE_URL", "http://localhost:8090/ws/rest/v1"),
			BucketName: utils.GetEnvString("ETL_BUCKET_NAME", "careflow-etl"),
		},
		JWT: JWT{
			Secret:        utils.GetEnvString("JWT_SECRET", "anyjwt"),
			ExpTimeInHour: utils.GetEnvInt("JWT_EXP_TIME_IN_HOUR", 8),
		},
		Cache: Cache{
			CatalogTTLInMinutes: utils.GetEnvInt("CACHE_CATALOG_TTL_IN_MINUTES", 15),
			PatientTTLInSeconds: utils.GetEnvInt("CACHE_PATIENT_TTL_IN_SECONDS", 60),
		},
		Wizard: Wizard{
			SessionTTLInMinutes:    utils.GetEnvInt("WIZARD_SESSION_TTL_IN_MINUTES", 30),
			CommitLockTTLInSeconds: utils.GetEnvInt("WIZARD_COMMIT_LOCK_TTL_IN_SECONDS", 30),
		},
		Queue: Queue{
			EventQueue:              utils.GetEnvString("QUEUE_EVENT_QUEUE", "careflow-events"),
			WorkerIntervalInSeconds: utils.GetEnvInt("QUEUE_WORKER_INTERVAL_IN_SECONDS", 5),
			WorkerBatchSize:         utils.GetEnvInt("QUEUE_WORKER_BATCH_SIZE", 20),
			MaxDeliveryAttempts:     utils.GetEnvInt("QUEUE_MAX_DELIVERY_ATTEMPTS", 5),
		},
	}
}
