package forms

import (
	"context"
	"sync"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/services/core/visits"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	formUsecaseInstance contracts.FormUsecase
	onceFormUsecase     sync.Once
)

type formUsecase struct {
	FormEMRClient        contracts.FormEMRClient
	VisitEMRClient       contracts.VisitEMRClient
	ConfigDocumentClient contracts.ConfigDocumentClient
	RedisRepository      contracts.RedisRepository
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
}

func NewFormUsecase(
	formEMRClient contracts.FormEMRClient,
	visitEMRClient contracts.VisitEMRClient,
	configDocumentClient contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.FormUsecase {
	onceFormUsecase.Do(func() {
		formUsecaseInstance = &formUsecase{
			FormEMRClient:        formEMRClient,
			VisitEMRClient:       visitEMRClient,
			ConfigDocumentClient: configDocumentClient,
			RedisRepository:      redisRepository,
			InternalConfig:       internalConfig,
			Log:                  logger,
		}
	})
	return formUsecaseInstance
}

func (uc *formUsecase) ListAvailableForms(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) ([]responses.AvailableForm, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("formUsecase.ListAvailableForms called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.String(constvars.LoggingProgramUUIDKey, programUUID),
		zap.String(constvars.LoggingLocationUUIDKey, locationUUID),
	)

	if locationUUID == "" {
		return nil, exceptions.ErrLocationRequired(nil)
	}

	document, err := visits.FetchVisitTypeEligibilityCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig,
		patientUUID, programUUID, enrollmentUUID, locationUUID)
	if err != nil {
		return nil, err
	}
	patientVisits, err := visits.FetchVisitsCached(ctx, uc.VisitEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	available := ResolveAvailableForms(document.Allowed, catalog, activeVisitTypeUUIDs(patientVisits))

	result := make([]responses.AvailableForm, 0, len(available))
	for i := range available {
		result = append(result, *buildFormResponse(&available[i]))
	}
	return result, nil
}

// fetchCatalog is the read-through for the form catalog. The catalog is
// patient-independent, so it lives under the long catalog TTL and is
// never touched by patient-scoped invalidation.
func (uc *formUsecase) fetchCatalog(ctx context.Context) ([]emr_dto.Form, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var catalog []emr_dto.Form

	cached, err := uc.RedisRepository.Get(ctx, constvars.CacheKeyFormCatalog)
	if err != nil {
		uc.Log.Error("formUsecase.fetchCatalog error reading cache",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if cached == "" {
		catalog, err = uc.FormEMRClient.ListForms(ctx)
		if err != nil {
			return nil, err
		}
		catalogTTL := time.Duration(uc.InternalConfig.Cache.CatalogTTLInMinutes) * time.Minute
		if err := uc.RedisRepository.Set(ctx, constvars.CacheKeyFormCatalog, catalog, catalogTTL); err != nil {
			uc.Log.Error("formUsecase.fetchCatalog error caching catalog",
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

func activeVisitTypeUUIDs(patientVisits []emr_dto.Visit) []string {
	uuids := make([]string, 0, len(patientVisits))
	for i := range patientVisits {
		if patientVisits[i].Active() {
			uuids = append(uuids, patientVisits[i].VisitType.UUID)
		}
	}
	return uuids
}

func buildFormResponse(form *emr_dto.Form) *responses.AvailableForm {
	response := &responses.AvailableForm{
		UUID:    form.UUID,
		Name:    form.Name,
		Version: form.Version,
	}
	if form.EncounterType != nil {
		response.EncounterTypeUUID = form.EncounterType.UUID
		response.EncounterTypeName = form.EncounterType.Name
	}
	return response
}
