package locations

import (
	"context"
	"sync"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	locationUsecaseInstance contracts.LocationUsecase
	onceLocationUsecase     sync.Once
)

type locationUsecase struct {
	LocationEMRClient contracts.LocationEMRClient
	RedisRepository   contracts.RedisRepository
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
}

func NewLocationUsecase(
	locationEMRClient contracts.LocationEMRClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.LocationUsecase {
	onceLocationUsecase.Do(func() {
		locationUsecaseInstance = &locationUsecase{
			LocationEMRClient: locationEMRClient,
			RedisRepository:   redisRepository,
			InternalConfig:    internalConfig,
			Log:               logger,
		}
	})
	return locationUsecaseInstance
}

func (uc *locationUsecase) ListLocations(ctx context.Context) ([]responses.Location, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("locationUsecase.ListLocations called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	catalog, err := uc.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]responses.Location, 0, len(catalog))
	for _, location := range catalog {
		result = append(result, responses.Location{UUID: location.UUID, Name: location.Name})
	}
	return result, nil
}

// fetchCatalog reads through Redis. Walking the paginated EMR catalog
// is the most request-heavy read in the module, so the cached copy is
// what nearly every call sees.
func (uc *locationUsecase) fetchCatalog(ctx context.Context) ([]emr_dto.Location, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var catalog []emr_dto.Location

	cached, err := uc.RedisRepository.Get(ctx, constvars.CacheKeyLocations)
	if err != nil {
		uc.Log.Error("locationUsecase.fetchCatalog error reading cache",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if cached == "" {
		catalog, err = uc.LocationEMRClient.ListLocations(ctx)
		if err != nil {
			return nil, err
		}
		catalogTTL := time.Duration(uc.InternalConfig.Cache.CatalogTTLInMinutes) * time.Minute
		if err := uc.RedisRepository.Set(ctx, constvars.CacheKeyLocations, catalog, catalogTTL); err != nil {
			uc.Log.Error("locationUsecase.fetchCatalog error caching catalog",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, err
		}
		return catalog, nil
	}

	if err := json.Unmarshal([]byte(cached), &catalog); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return catalog, nil
}
