package programs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/services/core/eligibility"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type programUsecase struct {
	ProgramEMRClient     contracts.ProgramEMRClient
	EnrollmentEMRClient  contracts.EnrollmentEMRClient
	ConfigDocumentClient contracts.ConfigDocumentClient
	RedisRepository      contracts.RedisRepository
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
}

var (
	programUsecaseInstance contracts.ProgramUsecase
	onceProgramUsecase     sync.Once
)

func NewProgramUsecase(
	programEMRClient contracts.ProgramEMRClient,
	enrollmentEMRClient contracts.EnrollmentEMRClient,
	configDocumentClient contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ProgramUsecase {
	onceProgramUsecase.Do(func() {
		programUsecaseInstance = &programUsecase{
			ProgramEMRClient:     programEMRClient,
			EnrollmentEMRClient:  enrollmentEMRClient,
			ConfigDocumentClient: configDocumentClient,
			RedisRepository:      redisRepository,
			InternalConfig:       internalConfig,
			Log:                  logger,
		}
	})
	return programUsecaseInstance
}

func (uc *programUsecase) ListProgramsForPatient(ctx context.Context, patientUUID string) ([]responses.ProgramOption, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("programUsecase.ListProgramsForPatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
	)

	programs, err := uc.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	enrollments, err := FetchEnrollmentsCached(ctx, uc.EnrollmentEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}

	programConfig, err := FetchProgramConfigCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}

	activeEnrollments := eligibility.ActiveEnrollments(enrollments)
	blocking := eligibility.ComputeIncompatibilities(programs, activeEnrollments, programConfig)

	enrolledDisplayByProgram := make(map[string]string, len(activeEnrollments))
	for _, enrollment := range activeEnrollments {
		enrolledDisplayByProgram[enrollment.Program.UUID] = enrollment.Program.Display
	}

	options := make([]responses.ProgramOption, len(programs))
	for i, program := range programs {
		option := responses.ProgramOption{
			UUID:       program.UUID,
			Display:    program.Display,
			Selectable: true,
		}
		if _, enrolled := enrolledDisplayByProgram[program.UUID]; enrolled {
			option.Selectable = false
			option.Reason = responses.ProgramBlockedEnrolled
		} else if blockedBy := blocking[program.UUID]; len(blockedBy) > 0 {
			option.Selectable = false
			option.Reason = responses.ProgramBlockedIncompatible
			option.BlockedBy = blockedBy
		}
		options[i] = option
	}

	uc.Log.Info("programUsecase.ListProgramsForPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("program_count", len(options)),
	)
	return options, nil
}

func (uc *programUsecase) fetchCatalog(ctx context.Context) ([]emr_dto.Program, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var programs []emr_dto.Program

	cached, err := uc.RedisRepository.Get(ctx, constvars.CacheKeyProgramCatalog)
	if err != nil {
		uc.Log.Error("programUsecase.fetchCatalog error reading cache",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	if cached == "" {
		programs, err = uc.ProgramEMRClient.ListPrograms(ctx)
		if err != nil {
			return nil, err
		}
		catalogTTL := time.Duration(uc.InternalConfig.Cache.CatalogTTLInMinutes) * time.Minute
		if err := uc.RedisRepository.Set(ctx, constvars.CacheKeyProgramCatalog, programs, catalogTTL); err != nil {
			uc.Log.Error("programUsecase.fetchCatalog error caching catalog",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, err
		}
		return programs, nil
	}

	if err := json.Unmarshal([]byte(cached), &programs); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return programs, nil
}

// FetchEnrollmentsCached is the shared read-through for a patient's
// enrollments. Enrollment and visit usecases reuse it so every caller
// sees the same key and the write-path invalidation covers them all.
func FetchEnrollmentsCached(
	ctx context.Context,
	client contracts.EnrollmentEMRClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	patientUUID string,
) ([]emr_dto.Enrollment, error) {
	cacheKey := fmt.Sprintf(constvars.CacheKeyPatientEnrollmentsFormat, patientUUID)

	cached, err := redisRepository.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}

	var enrollments []emr_dto.Enrollment
	if cached == "" {
		enrollments, err = client.ListEnrollmentsByPatient(ctx, patientUUID)
		if err != nil {
			return nil, err
		}
		patientTTL := time.Duration(internalConfig.Cache.PatientTTLInSeconds) * time.Second
		if err := redisRepository.Set(ctx, cacheKey, enrollments, patientTTL); err != nil {
			return nil, err
		}
		return enrollments, nil
	}

	if err := json.Unmarshal([]byte(cached), &enrollments); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return enrollments, nil
}

// FetchProgramConfigCached is the shared read-through for the patient's
// rules document.
func FetchProgramConfigCached(
	ctx context.Context,
	client contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	patientUUID string,
) (emr_dto.PatientProgramConfig, error) {
	cacheKey := fmt.Sprintf(constvars.CacheKeyPatientProgramConfigFormat, patientUUID)

	cached, err := redisRepository.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}

	var programConfig emr_dto.PatientProgramConfig
	if cached == "" {
		programConfig, err = client.GetPatientProgramConfig(ctx, patientUUID)
		if err != nil {
			return nil, err
		}
		patientTTL := time.Duration(internalConfig.Cache.PatientTTLInSeconds) * time.Second
		if err := redisRepository.Set(ctx, cacheKey, programConfig, patientTTL); err != nil {
			return nil, err
		}
		return programConfig, nil
	}

	if err := json.Unmarshal([]byte(cached), &programConfig); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return programConfig, nil
}
