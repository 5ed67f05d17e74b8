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

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wizardUsecase drives the enrollment wizard. Sessions live in Redis
// under a TTL refreshed on every save; the state machine mutates only
// after the EMR write succeeds, so a failed commit leaves the session
// exactly as the clinician reviewed it.
type wizardUsecase struct {
	ProgramUsecase       contracts.ProgramUsecase
	EnrollmentEMRClient  contracts.EnrollmentEMRClient
	ConfigDocumentClient contracts.ConfigDocumentClient
	RedisRepository      contracts.RedisRepository
	LockerService        contracts.LockerService
	SessionService       contracts.SessionService
	EventPublisher       contracts.EventPublisher
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
}

var (
	wizardUsecaseInstance contracts.WizardUsecase
	onceWizardUsecase     sync.Once
)

func NewWizardUsecase(
	programUsecase contracts.ProgramUsecase,
	enrollmentEMRClient contracts.EnrollmentEMRClient,
	configDocumentClient contracts.ConfigDocumentClient,
	redisRepository contracts.RedisRepository,
	lockerService contracts.LockerService,
	sessionService contracts.SessionService,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.WizardUsecase {
	onceWizardUsecase.Do(func() {
		wizardUsecaseInstance = &wizardUsecase{
			ProgramUsecase:       programUsecase,
			EnrollmentEMRClient:  enrollmentEMRClient,
			ConfigDocumentClient: configDocumentClient,
			RedisRepository:      redisRepository,
			LockerService:        lockerService,
			SessionService:       sessionService,
			EventPublisher:       eventPublisher,
			InternalConfig:       internalConfig,
			Log:                  logger,
		}
	})
	return wizardUsecaseInstance
}

func (uc *wizardUsecase) Open(ctx context.Context, sessionData, patientUUID string) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.Open called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
	)

	session, err := uc.SessionService.ParseSessionData(ctx, sessionData)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wizard := &models.WizardSession{
		ID:            uuid.NewString(),
		PatientUUID:   patientUUID,
		ClinicianUUID: session.ClinicianUUID,
		Stage:         constvars.WizardStageSelect,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.saveWizard(ctx, wizard); err != nil {
		return nil, err
	}

	uc.Log.Info("wizardUsecase.Open succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizard.ID),
	)
	return uc.buildState(ctx, wizard, nil)
}

func (uc *wizardUsecase) Get(ctx context.Context, wizardID string) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
	)

	wizard, err := uc.loadWizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	return uc.buildState(ctx, wizard, nil)
}

func (uc *wizardUsecase) Select(ctx context.Context, wizardID string, request *requests.WizardSelect) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.Select called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
		zap.String(constvars.LoggingProgramUUIDKey, request.ProgramUUID),
	)

	wizard, err := uc.loadWizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	if wizard.Stage != constvars.WizardStageSelect {
		return nil, exceptions.ErrWizardWrongStage(wizard.Stage)
	}

	option, err := findProgramOption(ctx, uc.ProgramUsecase, wizard.PatientUUID, request.ProgramUUID)
	if err != nil {
		uc.Log.Warn("wizardUsecase.Select program refused",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingProgramUUIDKey, request.ProgramUUID),
			zap.Error(err),
		)
		return nil, err
	}

	// A new selection invalidates answers collected for the previous
	// program; date and location are program-independent and survive.
	wizard.ProgramUUID = option.UUID
	wizard.ProgramDisplay = option.Display
	wizard.Answers = nil
	wizard.Stage = constvars.WizardStageDetails
	if err := uc.saveWizard(ctx, wizard); err != nil {
		return nil, err
	}

	uc.Log.Info("wizardUsecase.Select succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizard.ID),
		zap.String(constvars.LoggingProgramUUIDKey, wizard.ProgramUUID),
	)
	return uc.buildState(ctx, wizard, nil)
}

func (uc *wizardUsecase) SubmitDetails(ctx context.Context, wizardID string, request *requests.WizardDetails) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.SubmitDetails called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
	)

	wizard, err := uc.loadWizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	if wizard.Stage != constvars.WizardStageDetails {
		return nil, exceptions.ErrWizardWrongStage(wizard.Stage)
	}
	if request.DateEnrolled == "" {
		return nil, exceptions.ErrEnrollmentDateRequired(nil)
	}

	programConfig, err := programs.FetchProgramConfigCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig, wizard.PatientUUID)
	if err != nil {
		return nil, err
	}
	if err := eligibility.ValidateEnrollmentQuestions(wizard.ProgramUUID, programConfig, request.Answers); err != nil {
		uc.Log.Warn("wizardUsecase.SubmitDetails question validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWizardIDKey, wizard.ID),
			zap.Error(err),
		)
		return nil, err
	}

	wizard.DateEnrolled = request.DateEnrolled
	wizard.LocationUUID = request.LocationUUID
	wizard.Answers = request.Answers
	wizard.Stage = constvars.WizardStageReview
	if err := uc.saveWizard(ctx, wizard); err != nil {
		return nil, err
	}

	uc.Log.Info("wizardUsecase.SubmitDetails succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizard.ID),
	)
	return uc.buildState(ctx, wizard, nil)
}

func (uc *wizardUsecase) Commit(ctx context.Context, wizardID string) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.Commit called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
	)

	wizard, err := uc.loadWizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	if wizard.Stage != constvars.WizardStageReview {
		return nil, exceptions.ErrWizardWrongStage(wizard.Stage)
	}
	if wizard.ProgramUUID == "" {
		return nil, exceptions.ErrProgramRequired(nil)
	}
	if wizard.DateEnrolled == "" {
		return nil, exceptions.ErrEnrollmentDateRequired(nil)
	}

	lockKey := fmt.Sprintf(constvars.WizardLockKeyFormat, wizard.ID)
	lockTTL := time.Duration(uc.InternalConfig.Wizard.CommitLockTTLInSeconds) * time.Second
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		uc.Log.Warn("wizardUsecase.Commit lock already held",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWizardIDKey, wizard.ID),
		)
		return nil, exceptions.ErrSubmissionInProgress(wizard.ID)
	}
	defer func() {
		if unlockErr := uc.LockerService.Unlock(ctx, lockKey, lockValue); unlockErr != nil {
			uc.Log.Warn("wizardUsecase.Commit error releasing commit lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingWizardIDKey, wizard.ID),
				zap.Error(unlockErr),
			)
		}
	}()

	enrollment, err := uc.EnrollmentEMRClient.CreateEnrollment(ctx, &emr_dto.CreateEnrollmentRequest{
		Patient:      wizard.PatientUUID,
		Program:      wizard.ProgramUUID,
		DateEnrolled: wizard.DateEnrolled,
		Location:     wizard.LocationUUID,
	})
	if err != nil {
		// The session is untouched: the wizard stays in review with
		// everything the clinician entered.
		uc.Log.Error("wizardUsecase.Commit enrollment write failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWizardIDKey, wizard.ID),
			zap.Error(err),
		)
		return nil, err
	}

	wizard.Stage = constvars.WizardStageSuccess
	wizard.EnrollmentUUID = enrollment.UUID
	if err := uc.saveWizard(ctx, wizard); err != nil {
		return nil, err
	}

	uc.invalidatePatientCache(ctx, wizard.PatientUUID)
	uc.publishEvent(ctx, &models.CareflowEvent{
		EventID:        uuid.NewString(),
		Type:           constvars.EventProgramEnrolled,
		PatientUUID:    wizard.PatientUUID,
		ActorUUID:      wizard.ClinicianUUID,
		ProgramUUID:    wizard.ProgramUUID,
		EnrollmentUUID: enrollment.UUID,
		OccurredAt:     time.Now().UTC(),
	})

	uc.Log.Info("wizardUsecase.Commit succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizard.ID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollment.UUID),
	)
	return uc.buildState(ctx, wizard, enrollment)
}

func (uc *wizardUsecase) Back(ctx context.Context, wizardID string) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.Back called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
	)

	wizard, err := uc.loadWizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}

	// Stepping back keeps collected data so re-advancing is cheap; only
	// a new program selection clears answers.
	switch wizard.Stage {
	case constvars.WizardStageDetails:
		wizard.Stage = constvars.WizardStageSelect
	case constvars.WizardStageReview:
		wizard.Stage = constvars.WizardStageDetails
	default:
		return nil, exceptions.ErrWizardWrongStage(wizard.Stage)
	}
	if err := uc.saveWizard(ctx, wizard); err != nil {
		return nil, err
	}
	return uc.buildState(ctx, wizard, nil)
}

func (uc *wizardUsecase) StartOver(ctx context.Context, wizardID string) (*responses.WizardState, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.StartOver called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
	)

	wizard, err := uc.loadWizard(ctx, wizardID)
	if err != nil {
		return nil, err
	}
	if wizard.Stage != constvars.WizardStageSuccess {
		return nil, exceptions.ErrWizardWrongStage(wizard.Stage)
	}

	wizard.Stage = constvars.WizardStageSelect
	wizard.ProgramUUID = ""
	wizard.ProgramDisplay = ""
	wizard.DateEnrolled = ""
	wizard.LocationUUID = ""
	wizard.Answers = nil
	wizard.EnrollmentUUID = ""
	if err := uc.saveWizard(ctx, wizard); err != nil {
		return nil, err
	}
	return uc.buildState(ctx, wizard, nil)
}

func (uc *wizardUsecase) Close(ctx context.Context, wizardID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("wizardUsecase.Close called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWizardIDKey, wizardID),
	)

	// Deleting an already-expired session is a no-op, so Close stays
	// idempotent at every stage.
	return uc.RedisRepository.Delete(ctx, fmt.Sprintf(constvars.WizardSessionKeyFormat, wizardID))
}

func (uc *wizardUsecase) loadWizard(ctx context.Context, wizardID string) (*models.WizardSession, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	stored, err := uc.RedisRepository.Get(ctx, fmt.Sprintf(constvars.WizardSessionKeyFormat, wizardID))
	if err != nil {
		return nil, err
	}
	if stored == "" {
		uc.Log.Warn("wizardUsecase.loadWizard session not found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWizardIDKey, wizardID),
		)
		return nil, exceptions.ErrWizardNotFound(nil)
	}

	wizard := new(models.WizardSession)
	if err := json.Unmarshal([]byte(stored), wizard); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return wizard, nil
}

// saveWizard persists the session and refreshes its TTL, so an active
// wizard stays alive as long as the clinician keeps working in it.
func (uc *wizardUsecase) saveWizard(ctx context.Context, wizard *models.WizardSession) error {
	wizard.UpdatedAt = time.Now().UTC()
	sessionTTL := time.Duration(uc.InternalConfig.Wizard.SessionTTLInMinutes) * time.Minute
	return uc.RedisRepository.Set(ctx, fmt.Sprintf(constvars.WizardSessionKeyFormat, wizard.ID), wizard, sessionTTL)
}

// buildState renders the stage snapshot. The preloaded enrollment saves
// a refetch right after commit; every other caller passes nil.
func (uc *wizardUsecase) buildState(ctx context.Context, wizard *models.WizardSession, enrollment *emr_dto.Enrollment) (*responses.WizardState, error) {
	state := &responses.WizardState{
		WizardID:       wizard.ID,
		PatientUUID:    wizard.PatientUUID,
		Stage:          wizard.Stage,
		ProgramUUID:    wizard.ProgramUUID,
		ProgramDisplay: wizard.ProgramDisplay,
		DateEnrolled:   wizard.DateEnrolled,
		LocationUUID:   wizard.LocationUUID,
		Answers:        wizard.Answers,
	}

	switch wizard.Stage {
	case constvars.WizardStageSelect:
		options, err := uc.ProgramUsecase.ListProgramsForPatient(ctx, wizard.PatientUUID)
		if err != nil {
			return nil, err
		}
		state.Programs = options
	case constvars.WizardStageDetails:
		programConfig, err := programs.FetchProgramConfigCached(ctx, uc.ConfigDocumentClient, uc.RedisRepository, uc.InternalConfig, wizard.PatientUUID)
		if err != nil {
			return nil, err
		}
		if entry, ok := programConfig[wizard.ProgramUUID]; ok && entry.EnrollmentOptions != nil {
			state.Questions = buildWizardQuestions(entry.EnrollmentOptions.RequiredProgramQuestions)
		}
	case constvars.WizardStageSuccess:
		if enrollment == nil && wizard.EnrollmentUUID != "" {
			fetched, err := uc.EnrollmentEMRClient.GetEnrollment(ctx, wizard.EnrollmentUUID)
			if err != nil {
				return nil, err
			}
			enrollment = fetched
		}
		if enrollment != nil {
			state.Enrollment = buildEnrollmentResponse(enrollment)
		}
	}
	return state, nil
}

func (uc *wizardUsecase) invalidatePatientCache(ctx context.Context, patientUUID string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	pattern := fmt.Sprintf(constvars.CacheKeyPatientScanFormat, patientUUID)
	if err := uc.RedisRepository.DeleteByPattern(ctx, pattern); err != nil {
		uc.Log.Error("wizardUsecase.invalidatePatientCache error deleting keys",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
			zap.Error(err),
		)
	}
}

func (uc *wizardUsecase) publishEvent(ctx context.Context, event *models.CareflowEvent) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if err := uc.EventPublisher.Publish(ctx, event); err != nil {
		uc.Log.Warn("wizardUsecase.publishEvent error publishing event",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, event.Type),
			zap.Error(err),
		)
	}
}

// buildWizardQuestions maps config questions to their details-stage
// view. Related questions nest exactly one level, matching what the
// validator enforces.
func buildWizardQuestions(questions []emr_dto.Question) []responses.WizardQuestion {
	if len(questions) == 0 {
		return nil
	}
	out := make([]responses.WizardQuestion, len(questions))
	for i, question := range questions {
		out[i] = responses.WizardQuestion{
			QType:        question.QType,
			Name:         question.Name,
			Answers:      buildWizardAnswers(question.Answers),
			ShowIfParent: question.ShowIfParent,
		}
		for _, related := range question.RelatedQuestions {
			out[i].RelatedQuestions = append(out[i].RelatedQuestions, responses.WizardQuestion{
				QType:        related.QType,
				Name:         related.Name,
				Answers:      buildWizardAnswers(related.Answers),
				ShowIfParent: related.ShowIfParent,
			})
		}
	}
	return out
}

func buildWizardAnswers(options []emr_dto.AnswerOption) []responses.WizardAnswer {
	if len(options) == 0 {
		return nil
	}
	answers := make([]responses.WizardAnswer, len(options))
	for i, option := range options {
		answers[i] = responses.WizardAnswer{Value: option.Value, Label: option.Label}
	}
	return answers
}
