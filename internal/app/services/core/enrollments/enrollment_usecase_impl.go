package enrollments

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type enrollmentUsecase struct {
	EnrollmentEMRClient  contracts.EnrollmentEMRClient
	ProgramUsecase       contracts.ProgramUsecase
	ConfigDocumentClient contracts.ConfigDocumentClient
	RedisRepository      contracts.RedisRepository
	SessionService       contracts.SessionService
	EventPublisher       contracts.EventPublisher
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
}

var (
	enrollmentUsecaseInstance contracts.EnrollmentUsecase
	onceEnrollmentUsecase     sync.Once
)

func NewEnrollmentUsecase(
	enrollmentEMRClient contracts.EnrollmentEMRClient,
	programUsecase contracts.ProgramUsecase,
	configDocumentClient contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	sessionService contracts.SessionService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.EnrollmentUsecase {
	onceEnrollmentUsecase.Do(func() {
		enrollmentUsecaseInstance = &enrollmentUsecase{
			EnrollmentEMRClient:  enrollmentEMRClient,
			ProgramUsecase:       programUsecase,
			ConfigDocumentClient: configDocumentClient,
			RedisRepository:      redisRepository,
			SessionService:       sessionService,
			EventPublisher:       eventPublisher,
			InternalConfig:       internalConfig,
			Log:                  logger,
		}
	})
	return enrollmentUsecaseInstance
}

func (uc *enrollmentUsecase) ListEnrollments(ctx context.Context, patientUUID string, activeOnly bool) ([]responses.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("enrollmentUsecase.ListEnrollments called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.Bool("active_only", activeOnly),
	)

	enrollments, err := programs.FetchEnrollmentsCached(ctx, uc.EnrollmentEMRClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		uc.Log.Error("enrollmentUsecase.ListEnrollments error fetching enrollments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	results := make([]responses.Enrollment, 0, len(enrollments))
	for i := range enrollments {
		if activeOnly && !enrollments[i].Active() {
			continue
		}
		results = append(results, *buildEnrollmentResponse(&enrollments[i]))
	}

	uc.Log.Info("enrollmentUsecase.ListEnrollments succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("enrollment_count", len(results)),
	)
	return results, nil
}

func (uc *enrollmentUsecase) Enroll(ctx context.Context, sessionData, patientUUID string, request *requests.CreateEnrollment) (*responses.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("enrollmentUsecase.Enroll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.String(constvars.LoggingProgramUUIDKey, request.ProgramUUID),
	)

	session, err := uc.SessionService.ParseSessionData(ctx, sessionData)
	if err != nil {
		return nil, err
	}

	_, err = findProgramOption(ctx, uc.ProgramUsecase, patientUUID, request.ProgramUUID)
	if err != nil {
		uc.Log.Error("enrollmentUsecase.Enroll program not selectable",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingProgramUUIDKey, request.ProgramUUID),
			zap.Error(err),
		)
		return nil, err
	}

	programConfig, err := programs.FetchProgramConfigCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig, patientUUID)
	if err != nil {
		return nil, err
	}
	if err := eligibility.ValidateEnrollmentQuestions(request.ProgramUUID, programConfig, request.Answers); err != nil {
		uc.Log.Warn("enrollmentUsecase.Enroll question validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingProgramUUIDKey, request.ProgramUUID),
			zap.Error(err),
		)
		return nil, err
	}

	enrollment, err := uc.EnrollmentEMRClient.CreateEnrollment(ctx, &emr_dto.CreateEnrollmentRequest{
		Patient:      patientUUID,
		Program:      request.ProgramUUID,
		DateEnrolled: request.DateEnrolled,
		Location:     request.LocationUUID,
	})
	if err != nil {
		uc.Log.Error("enrollmentUsecase.Enroll error creating enrollment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.invalidatePatientCache(ctx, patientUUID)
	uc.publishEvent(ctx, &models.CareflowEvent{
		EventID:        uuid.NewString(),
		Type:           constvars.EventProgramEnrolled,
		PatientUUID:    patientUUID,
		ActorUUID:      session.ClinicianUUID,
		ProgramUUID:    request.ProgramUUID,
		EnrollmentUUID: enrollment.UUID,
		OccurredAt:     time.Now().UTC(),
	})

	uc.Log.Info("enrollmentUsecase.Enroll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollment.UUID),
	)
	return buildEnrollmentResponse(enrollment), nil
}

func (uc *enrollmentUsecase) Disenroll(ctx context.Context, sessionData, enrollmentUUID string, request *requests.Disenroll) (*responses.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("enrollmentUsecase.Disenroll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
	)

	session, err := uc.SessionService.ParseSessionData(ctx, sessionData)
	if err != nil {
		return nil, err
	}

	enrollment, err := uc.EnrollmentEMRClient.GetEnrollment(ctx, enrollmentUUID)
	if err != nil {
		return nil, err
	}
	if !enrollment.Active() {
		uc.Log.Warn("enrollmentUsecase.Disenroll enrollment already closed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
		)
		return nil, exceptions.ErrEnrollmentAlreadyClosed(enrollmentUUID)
	}

	closed, err := uc.EnrollmentEMRClient.CloseEnrollment(ctx, enrollmentUUID, &emr_dto.CloseEnrollmentRequest{
		DateCompleted: utils.ToEMRDate(time.Now()),
		VoidReason:    request.VoidReason,
	})
	if err != nil {
		uc.Log.Error("enrollmentUsecase.Disenroll error closing enrollment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	var patientUUID string
	if enrollment.Patient != nil {
		patientUUID = enrollment.Patient.UUID
	}
	if patientUUID != "" {
		uc.invalidatePatientCache(ctx, patientUUID)
	}

	event := &models.CareflowEvent{
		EventID:        uuid.NewString(),
		Type:           constvars.EventProgramDisenrolled,
		PatientUUID:    patientUUID,
		ActorUUID:      session.ClinicianUUID,
		ProgramUUID:    enrollment.Program.UUID,
		EnrollmentUUID: enrollmentUUID,
		OccurredAt:     time.Now().UTC(),
	}
	if request.VoidReason != "" {
		event.Detail = map[string]string{"void_reason": request.VoidReason}
	}
	uc.publishEvent(ctx, event)

	uc.Log.Info("enrollmentUsecase.Disenroll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
	)
	return buildEnrollmentResponse(closed), nil
}

// invalidatePatientCache drops every cached read for the patient after a
// successful write. Failures are logged and swallowed: the write already
// happened and the TTL bounds how long a stale read can survive.
func (uc *enrollmentUsecase) invalidatePatientCache(ctx context.Context, patientUUID string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	pattern := fmt.Sprintf(constvars.CacheKeyPatientScanFormat, patientUUID)
	if err := uc.RedisRepository.DeleteByPattern(ctx, pattern); err != nil {
		uc.Log.Error("enrollmentUsecase.invalidatePatientCache error deleting keys",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
			zap.Error(err),
		)
	}
}

// publishEvent is best-effort: the clinical write is never rolled back
// over an audit publish failure.
func (uc *enrollmentUsecase) publishEvent(ctx context.Context, event *models.CareflowEvent) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if err := uc.EventPublisher.Publish(ctx, event); err != nil {
		uc.Log.Warn("enrollmentUsecase.publishEvent error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, event.Type),
			zap.Error(err),
		)
	}
}

// findProgramOption resolves one program from the patient-annotated
// catalog and refuses programs the wizard would refuse.
func findProgramOption(ctx context.Context, programUsecase contracts.ProgramUsecase, patientUUID, programUUID string) (*responses.ProgramOption, error) {
	options, err := programUsecase.ListProgramsForPatient(ctx, patientUUID)
	if err != nil {
		return nil, err
	}

	for i := range options {
		if options[i].UUID != programUUID {
			continue
		}
		option := &options[i]
		if option.Selectable {
			return option, nil
		}
		switch option.Reason {
		case responses.ProgramBlockedEnrolled:
			return nil, exceptions.ErrProgramAlreadyEnrolled(option.Display)
		case responses.ProgramBlockedIncompatible:
			return nil, exceptions.ErrIncompatibleProgram(option.Display, option.BlockedBy)
		default:
			return nil, exceptions.ErrProgramNotFound(programUUID)
		}
	}
	return nil, exceptions.ErrProgramNotFound(programUUID)
}

func buildEnrollmentResponse(enrollment *emr_dto.Enrollment) *responses.Enrollment {
	response := &responses.Enrollment{
		UUID:           enrollment.UUID,
		ProgramUUID:    enrollment.Program.UUID,
		ProgramDisplay: enrollment.Program.Display,
		DateEnrolled:   enrollment.DateEnrolled,
		DateCompleted:  enrollment.DateCompleted,
		Active:         enrollment.Active(),
	}
	if enrollment.Location != nil {
		response.LocationUUID = enrollment.Location.UUID
		response.LocationDisplay = enrollment.Location.Display
	}
	return response
}
