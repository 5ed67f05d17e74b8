package visits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/models"
	"careflow-service/internal/app/services/core/eligibility"
	"careflow-service/internal/app/services/core/programs"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/requests"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"
	"careflow-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	visitUsecaseInstance contracts.VisitUsecase
	onceVisitUsecase     sync.Once
)

type visitUsecase struct {
	VisitEMRClient       contracts.VisitEMRClient
	EnrollmentEMRClient  contracts.EnrollmentEMRClient
	ConfigDocumentClient contracts.ConfigDocumentClient
	RedisRepository      contracts.RedisRepository
	RuleEvaluator        *eligibility.RuleEvaluator
	SessionService       contracts.SessionService
	EventPublisher       contracts.EventPublisher
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
}

func NewVisitUsecase(
	visitEMRClient contracts.VisitEMRClient,
	enrollmentEMRClient contracts.EnrollmentEMRClient,
	configDocumentClient contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	ruleEvaluator *eligibility.RuleEvaluator,
	sessionService contracts.SessionService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.VisitUsecase {
	onceVisitUsecase.Do(func() {
		visitUsecaseInstance = &visitUsecase{
			VisitEMRClient:       visitEMRClient,
			EnrollmentEMRClient:  enrollmentEMRClient,
			ConfigDocumentClient: configDocumentClient,
			RedisRepository:      redisRepository,
			RuleEvaluator:        ruleEvaluator,
			SessionService:       sessionService,
			EventPublisher:       eventPublisher,
			InternalConfig:       internalConfig,
			Log:                  logger,
		}
	})
	return visitUsecaseInstance
}

func (uc *visitUsecase) ListVisitTypes(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) (*responses.VisitTypesResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("visitUsecase.ListVisitTypes called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.String(constvars.LoggingProgramUUIDKey, programUUID),
		zap.String(constvars.LoggingLocationUUIDKey, locationUUID),
	)

	if locationUUID == "" {
		return nil, exceptions.ErrLocationRequired(nil)
	}

	document, err := FetchVisitTypeEligibilityCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig,
		patientUUID, programUUID, enrollmentUUID, locationUUID)
	if err != nil {
		return nil, err
	}
	visits, err := FetchVisitsCached(ctx, uc.VisitEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}
	enrollments, err := programs.FetchEnrollmentsCached(ctx, uc.EnrollmentEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}

	env := eligibility.AllowedIfEnv{
		PatientUUID:           patientUUID,
		ProgramUUID:           programUUID,
		EnrollmentUUID:        enrollmentUUID,
		LocationUUID:          locationUUID,
		ActiveEnrollmentCount: countActiveEnrollments(enrollments),
		HasActiveVisit:        hasActiveVisit(visits),
	}

	result := &responses.VisitTypesResult{
		VisitTypes: make([]responses.VisitTypeOption, 0, len(document.Allowed)+len(document.Disallowed)),
	}
	for _, visitType := range document.Allowed {
		option := responses.VisitTypeOption{
			UUID: visitType.UUID,
			Name: visitType.Name,
		}
		if uc.RuleEvaluator.AllowedIf(visitType.AllowedIf, env) {
			option.Startable = true
		} else {
			option.Message = visitType.Message
		}
		result.VisitTypes = append(result.VisitTypes, option)
	}
	for _, visitType := range document.Disallowed {
		result.VisitTypes = append(result.VisitTypes, responses.VisitTypeOption{
			UUID:    visitType.UUID,
			Name:    visitType.Name,
			Message: visitType.Message,
		})
	}

	// The active-visit banner considers the full allowed set, not just
	// the types startable right now: a visit stays visible for the
	// whole time it is open, even after its allowedIf rule flips.
	if active := ResolveActiveVisit(document.AllowedUUIDs(), visits); active != nil {
		result.ActiveVisit = &responses.ActiveVisit{
			UUID:          active.UUID,
			VisitTypeUUID: active.VisitType.UUID,
			VisitTypeName: active.VisitType.Name,
			StartDatetime: active.StartDatetime,
		}
		if active.Location != nil {
			result.ActiveVisit.LocationUUID = active.Location.UUID
		}
	}

	return result, nil
}

func (uc *visitUsecase) StartVisit(ctx context.Context, sessionData, patientUUID string, request *requests.StartVisit) (*responses.Visit, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("visitUsecase.StartVisit called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.String(constvars.LoggingProgramUUIDKey, request.ProgramUUID),
		zap.String(constvars.LoggingVisitTypeUUIDKey, request.VisitTypeUUID),
	)

	session, err := uc.SessionService.ParseSessionData(ctx, sessionData)
	if err != nil {
		return nil, err
	}

	if request.VisitTypeUUID == "" {
		return nil, exceptions.ErrVisitTypeRequired(nil)
	}
	if request.LocationUUID == "" {
		return nil, exceptions.ErrLocationRequired(nil)
	}

	document, err := FetchVisitTypeEligibilityCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig,
		patientUUID, request.ProgramUUID, request.EnrollmentUUID, request.LocationUUID)
	if err != nil {
		return nil, err
	}
	visits, err := FetchVisitsCached(ctx, uc.VisitEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}
	enrollments, err := programs.FetchEnrollmentsCached(ctx, uc.EnrollmentEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}

	// The client may hold a list fetched before the location changed or
	// a rule flipped, so the selection is checked against the document
	// for the tuple it is actually submitting.
	env := eligibility.AllowedIfEnv{
		PatientUUID:           patientUUID,
		ProgramUUID:           request.ProgramUUID,
		EnrollmentUUID:        request.EnrollmentUUID,
		LocationUUID:          request.LocationUUID,
		ActiveEnrollmentCount: countActiveEnrollments(enrollments),
		HasActiveVisit:        hasActiveVisit(visits),
	}
	if !startableVisitType(document, uc.RuleEvaluator, env, request.VisitTypeUUID) {
		uc.Log.Warn("visitUsecase.StartVisit visit type not allowed for tuple",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingVisitTypeUUIDKey, request.VisitTypeUUID),
			zap.String(constvars.LoggingLocationUUIDKey, request.LocationUUID),
		)
		return nil, exceptions.ErrVisitTypeNotAllowed(nil, request.VisitTypeUUID)
	}

	visit, err := uc.VisitEMRClient.CreateVisit(ctx, &emr_dto.CreateVisitRequest{
		Patient:       patientUUID,
		VisitType:     request.VisitTypeUUID,
		Location:      request.LocationUUID,
		StartDatetime: utils.ToEMRTimestamp(time.Now()),
	})
	if err != nil {
		uc.Log.Error("visitUsecase.StartVisit error creating visit",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.invalidatePatientCache(ctx, patientUUID)
	uc.publishEvent(ctx, &models.CareflowEvent{
		EventID:        uuid.NewString(),
		Type:           constvars.EventVisitStarted,
		PatientUUID:    patientUUID,
		ActorUUID:      session.ClinicianUUID,
		ProgramUUID:    request.ProgramUUID,
		EnrollmentUUID: request.EnrollmentUUID,
		VisitUUID:      visit.UUID,
		OccurredAt:     time.Now().UTC(),
	})

	uc.Log.Info("visitUsecase.StartVisit succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVisitUUIDKey, visit.UUID),
	)
	return buildVisitResponse(visit), nil
}

func (uc *visitUsecase) invalidatePatientCache(ctx context.Context, patientUUID string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	pattern := fmt.Sprintf(constvars.CacheKeyPatientScanFormat, patientUUID)
	if err := uc.RedisRepository.DeleteByPattern(ctx, pattern); err != nil {
		uc.Log.Error("visitUsecase.invalidatePatientCache error deleting keys",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
			zap.Error(err),
		)
	}
}

func (uc *visitUsecase) publishEvent(ctx context.Context, event *models.CareflowEvent) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if err := uc.EventPublisher.Publish(ctx, event); err != nil {
		uc.Log.Warn("visitUsecase.publishEvent error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, event.Type),
			zap.Error(err),
		)
	}
}

// startableVisitType reports whether the type is in the allowed set and
// passes its allowedIf rule for this tuple right now.
func startableVisitType(document *emr_dto.VisitTypeEligibility, evaluator *eligibility.RuleEvaluator, env eligibility.AllowedIfEnv, visitTypeUUID string) bool {
	for _, visitType := range document.Allowed {
		if visitType.UUID == visitTypeUUID {
			return evaluator.AllowedIf(visitType.AllowedIf, env)
		}
	}
	return false
}

func countActiveEnrollments(enrollments []emr_dto.Enrollment) int {
	count := 0
	for i := range enrollments {
		if enrollments[i].Active() {
			count++
		}
	}
	return count
}

func hasActiveVisit(visits []emr_dto.Visit) bool {
	for i := range visits {
		if visits[i].Active() {
			return true
		}
	}
	return false
}

func buildVisitResponse(visit *emr_dto.Visit) *responses.Visit {
	response := &responses.Visit{
		UUID:          visit.UUID,
		VisitTypeUUID: visit.VisitType.UUID,
		VisitTypeName: visit.VisitType.Name,
		StartDatetime: visit.StartDatetime,
		StopDatetime:  visit.StopDatetime,
		Active:        visit.Active(),
	}
	if visit.Location != nil {
		response.LocationUUID = visit.Location.UUID
	}
	return response
}

// FetchVisitsCached is the shared read-through for a patient's visits.
// Visit and form usecases reuse it so every caller sees the same key
// and the write-path invalidation covers them all.
func FetchVisitsCached(
	ctx context.Context,
	client contracts.VisitEMRClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	patientUUID string,
) ([]emr_dto.Visit, error) {
	cacheKey := fmt.Sprintf(constvars.CacheKeyPatientVisitsFormat, patientUUID)

	cached, err := redisRepository.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}

	var visits []emr_dto.Visit
	if cached == "" {
		visits, err = client.ListVisitsByPatient(ctx, patientUUID)
		if err != nil {
			return nil, err
		}
		patientTTL := time.Duration(internalConfig.Cache.PatientTTLInSeconds) * time.Second
		if err := redisRepository.Set(ctx, cacheKey, visits, patientTTL); err != nil {
			return nil, err
		}
		return visits, nil
	}

	if err := json.Unmarshal([]byte(cached), &visits); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return visits, nil
}

// FetchVisitTypeEligibilityCached is the shared read-through for the
// eligibility document. The key embeds the whole tuple, so a changed
// location (or any other part) is a different key and a fresh fetch.
func FetchVisitTypeEligibilityCached(
	ctx context.Context,
	client contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	patientUUID, programUUID, enrollmentUUID, locationUUID string,
) (*emr_dto.VisitTypeEligibility, error) {
	cacheKey := fmt.Sprintf(constvars.CacheKeyVisitTypeEligibilityFormat, patientUUID, programUUID, enrollmentUUID, locationUUID)

	cached, err := redisRepository.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}

	document := &emr_dto.VisitTypeEligibility{}
	if cached == "" {
		document, err = client.GetVisitTypeEligibility(ctx, patientUUID, programUUID, enrollmentUUID, locationUUID)
		if err != nil {
			return nil, err
		}
		patientTTL := time.Duration(internalConfig.Cache.PatientTTLInSeconds) * time.Second
		if err := redisRepository.Set(ctx, cacheKey, document, patientTTL); err != nil {
			return nil, err
		}
		return document, nil
	}

	if err := json.Unmarshal([]byte(cached), document); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return document, nil
}
