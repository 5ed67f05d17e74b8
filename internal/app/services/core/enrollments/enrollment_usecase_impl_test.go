package enrollments

import (
	"context"
	"fmt"
	"path"
	"testing"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/requests"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"
	"careflow-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	patientOne    = "aaaaaaaa-0000-0000-0000-000000000001"
	clinicianOne  = "cccccccc-0000-0000-0000-000000000001"
	programHIV    = "11111111-1111-1111-1111-111111111111"
	programTB     = "22222222-2222-2222-2222-222222222222"
	locationMain  = "99999999-0000-0000-0000-000000000001"
	enrollmentOne = "ee111111-0000-0000-0000-000000000001"
)

type fakeRedis struct {
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = string(raw)
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	return f.data[key], nil
}

func (f *fakeRedis) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeRedis) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range f.data {
		if matched, _ := path.Match(pattern, key); matched {
			delete(f.data, key)
		}
	}
	return nil
}

func (f *fakeRedis) TrySetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.data[key] = string(raw)
	return true, nil
}

type fakeEnrollmentClient struct {
	enrollments []emr_dto.Enrollment
	created     []*emr_dto.CreateEnrollmentRequest
	closed      []*emr_dto.CloseEnrollmentRequest
	createErr   error
	closeErr    error
	nextUUID    string
}

func (f *fakeEnrollmentClient) ListEnrollmentsByPatient(_ context.Context, _ string) ([]emr_dto.Enrollment, error) {
	return f.enrollments, nil
}

func (f *fakeEnrollmentClient) GetEnrollment(_ context.Context, enrollmentUUID string) (*emr_dto.Enrollment, error) {
	for i := range f.enrollments {
		if f.enrollments[i].UUID == enrollmentUUID {
			return &f.enrollments[i], nil
		}
	}
	return nil, exceptions.ErrEnrollmentNotFound(nil)
}

func (f *fakeEnrollmentClient) CreateEnrollment(_ context.Context, request *emr_dto.CreateEnrollmentRequest) (*emr_dto.Enrollment, error) {
	f.created = append(f.created, request)
	if f.createErr != nil {
		return nil, f.createErr
	}
	enrollment := emr_dto.Enrollment{
		UUID:         f.nextUUID,
		Patient:      &emr_dto.DisplayRef{UUID: request.Patient},
		Program:      emr_dto.DisplayRef{UUID: request.Program, Display: "HIV Care"},
		DateEnrolled: request.DateEnrolled,
	}
	if request.Location != "" {
		enrollment.Location = &emr_dto.DisplayRef{UUID: request.Location, Display: "Main Clinic"}
	}
	f.enrollments = append(f.enrollments, enrollment)
	return &enrollment, nil
}

func (f *fakeEnrollmentClient) CloseEnrollment(_ context.Context, enrollmentUUID string, request *emr_dto.CloseEnrollmentRequest) (*emr_dto.Enrollment, error) {
	f.closed = append(f.closed, request)
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	for i := range f.enrollments {
		if f.enrollments[i].UUID == enrollmentUUID {
			f.enrollments[i].DateCompleted = request.DateCompleted
			return &f.enrollments[i], nil
		}
	}
	return nil, exceptions.ErrEnrollmentNotFound(nil)
}

type fakeProgramUsecase struct {
	options []responses.ProgramOption
	err     error
}

func (f *fakeProgramUsecase) ListProgramsForPatient(_ context.Context, _ string) ([]responses.ProgramOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.options, nil
}

type fakeConfigDocClient struct {
	programConfig emr_dto.PatientProgramConfig
}

func (f *fakeConfigDocClient) GetPatientProgramConfig(_ context.Context, _ string) (emr_dto.PatientProgramConfig, error) {
	if f.programConfig == nil {
		return emr_dto.PatientProgramConfig{}, nil
	}
	return f.programConfig, nil
}

func (f *fakeConfigDocClient) GetVisitTypeEligibility(_ context.Context, _, _, _, _ string) (*emr_dto.VisitTypeEligibility, error) {
	return &emr_dto.VisitTypeEligibility{}, nil
}

type fakeSessionService struct{}

func (f *fakeSessionService) GetSessionData(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (f *fakeSessionService) ParseSessionData(_ context.Context, _ string) (*models.ClinicianSession, error) {
	return &models.ClinicianSession{SessionID: "session-1", ClinicianUUID: clinicianOne}, nil
}

type fakePublisher struct {
	events []*models.CareflowEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event *models.CareflowEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeLocker struct {
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (f *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, string, error) {
	if _, taken := f.held[key]; taken {
		return false, "", nil
	}
	f.held[key] = "token"
	return true, "token", nil
}

func (f *fakeLocker) Unlock(_ context.Context, key, _ string) error {
	delete(f.held, key)
	return nil
}

func (f *fakeLocker) Refresh(_ context.Context, _, _ string, _ time.Duration) error {
	return nil
}

func testConfig() *config.InternalConfig {
	return &config.InternalConfig{
		Cache:  config.Cache{CatalogTTLInMinutes: 10, PatientTTLInSeconds: 60},
		Wizard: config.Wizard{SessionTTLInMinutes: 30, CommitLockTTLInSeconds: 15},
	}
}

func selectableCatalog() []responses.ProgramOption {
	return []responses.ProgramOption{
		{UUID: programHIV, Display: "HIV Care", Selectable: true},
		{UUID: programTB, Display: "TB Treatment", Selectable: true},
	}
}

func questionConfig() emr_dto.PatientProgramConfig {
	return emr_dto.PatientProgramConfig{
		programHIV: {
			EnrollmentOptions: &emr_dto.EnrollmentOptions{
				RequiredProgramQuestions: []emr_dto.Question{
					{
						QType:              "consent",
						Name:               "Consent given",
						EnrollIf:           "yes",
						NotEligibleMessage: "Consent is required to join HIV care",
						Answers: []emr_dto.AnswerOption{
							{Value: "yes", Label: "Yes"},
							{Value: "no", Label: "No"},
						},
					},
				},
			},
		},
	}
}

type enrollmentFixture struct {
	usecase   *enrollmentUsecase
	redis     *fakeRedis
	client    *fakeEnrollmentClient
	catalog   *fakeProgramUsecase
	documents *fakeConfigDocClient
	publisher *fakePublisher
}

func newEnrollmentFixture() *enrollmentFixture {
	fixture := &enrollmentFixture{
		redis:     newFakeRedis(),
		client:    &fakeEnrollmentClient{nextUUID: enrollmentOne},
		catalog:   &fakeProgramUsecase{options: selectableCatalog()},
		documents: &fakeConfigDocClient{},
		publisher: &fakePublisher{},
	}
	fixture.usecase = &enrollmentUsecase{
		EnrollmentEMRClient:  fixture.client,
		ProgramUsecase:       fixture.catalog,
		ConfigDocumentClient: fixture.documents,
		RedisRepository:      fixture.redis,
		SessionService:       &fakeSessionService{},
		EventPublisher:       fixture.publisher,
		InternalConfig:       testConfig(),
		Log:                  zap.NewNop(),
	}
	return fixture
}

func TestListEnrollments(t *testing.T) {
	ctx := context.Background()

	fixture := newEnrollmentFixture()
	fixture.client.enrollments = []emr_dto.Enrollment{
		{
			UUID:         enrollmentOne,
			Program:      emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"},
			DateEnrolled: "2026-08-01",
			Location:     &emr_dto.DisplayRef{UUID: locationMain, Display: "Main Clinic"},
		},
		{
			UUID:          "ee222222-0000-0000-0000-000000000002",
			Program:       emr_dto.DisplayRef{UUID: programTB, Display: "TB Treatment"},
			DateEnrolled:  "2026-01-10",
			DateCompleted: "2026-06-30",
		},
	}

	t.Run("maps every enrollment with its active flag", func(t *testing.T) {
		enrollments, err := fixture.usecase.ListEnrollments(ctx, patientOne, false)
		require.NoError(t, err)
		require.Len(t, enrollments, 2)
		assert.Equal(t, "HIV Care", enrollments[0].ProgramDisplay)
		assert.Equal(t, "Main Clinic", enrollments[0].LocationDisplay)
		assert.True(t, enrollments[0].Active)
		assert.False(t, enrollments[1].Active)
	})

	t.Run("active only drops completed enrollments", func(t *testing.T) {
		enrollments, err := fixture.usecase.ListEnrollments(ctx, patientOne, true)
		require.NoError(t, err)
		require.Len(t, enrollments, 1)
		assert.Equal(t, enrollmentOne, enrollments[0].UUID)
	})
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the enrollment and publishes the event", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.documents.programConfig = questionConfig()

		enrollment, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  programHIV,
			DateEnrolled: "2026-08-20",
			LocationUUID: locationMain,
			Answers:      map[string]string{"consent": "yes"},
		})
		require.NoError(t, err)
		assert.Equal(t, enrollmentOne, enrollment.UUID)
		assert.True(t, enrollment.Active)

		require.Len(t, fixture.client.created, 1)
		assert.Equal(t, patientOne, fixture.client.created[0].Patient)
		assert.Equal(t, "2026-08-20", fixture.client.created[0].DateEnrolled)

		require.Len(t, fixture.publisher.events, 1)
		assert.Equal(t, "program.enrolled", fixture.publisher.events[0].Type)
		assert.Equal(t, clinicianOne, fixture.publisher.events[0].ActorUUID)
	})

	t.Run("a publish failure does not fail the enrollment", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.publisher.err = assert.AnError

		enrollment, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  programHIV,
			DateEnrolled: "2026-08-20",
		})
		require.NoError(t, err)
		assert.Equal(t, enrollmentOne, enrollment.UUID)
		require.Len(t, fixture.client.created, 1)
	})

	t.Run("enrolling invalidates the patient's cached reads", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		enrollmentsKey := fmt.Sprintf(constvars.CacheKeyPatientEnrollmentsFormat, patientOne)
		configKey := fmt.Sprintf(constvars.CacheKeyPatientProgramConfigFormat, patientOne)
		require.NoError(t, fixture.redis.Set(ctx, enrollmentsKey, []emr_dto.Enrollment{}, time.Minute))
		require.NoError(t, fixture.redis.Set(ctx, configKey, emr_dto.PatientProgramConfig{}, time.Minute))
		require.NoError(t, fixture.redis.Set(ctx, constvars.CacheKeyProgramCatalog, []emr_dto.Program{}, time.Minute))

		_, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  programHIV,
			DateEnrolled: "2026-08-20",
		})
		require.NoError(t, err)

		_, staleEnrollments := fixture.redis.data[enrollmentsKey]
		_, staleConfig := fixture.redis.data[configKey]
		_, catalogKept := fixture.redis.data[constvars.CacheKeyProgramCatalog]
		assert.False(t, staleEnrollments)
		assert.False(t, staleConfig)
		assert.True(t, catalogKept)
	})

	t.Run("unanswered required question blocks the write", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.documents.programConfig = questionConfig()

		_, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  programHIV,
			DateEnrolled: "2026-08-20",
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindMissingAnswer))
		assert.Empty(t, fixture.client.created)
		assert.Empty(t, fixture.publisher.events)
	})

	t.Run("incompatible program never reaches the EMR", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.catalog.options = []responses.ProgramOption{
			{UUID: programTB, Display: "TB Treatment", Selectable: false, Reason: responses.ProgramBlockedIncompatible, BlockedBy: []string{"HIV Care"}},
		}

		_, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  programTB,
			DateEnrolled: "2026-08-20",
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindIncompatibleProgram))
		assert.Empty(t, fixture.client.created)
	})

	t.Run("already enrolled program is refused", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.catalog.options = []responses.ProgramOption{
			{UUID: programHIV, Display: "HIV Care", Selectable: false, Reason: responses.ProgramBlockedEnrolled},
		}

		_, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  programHIV,
			DateEnrolled: "2026-08-20",
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))
		assert.Empty(t, fixture.client.created)
	})

	t.Run("unknown program reports not found", func(t *testing.T) {
		fixture := newEnrollmentFixture()

		_, err := fixture.usecase.Enroll(ctx, "session-data", patientOne, &requests.CreateEnrollment{
			ProgramUUID:  "00000000-0000-0000-0000-000000000000",
			DateEnrolled: "2026-08-20",
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
	})
}

func TestDisenroll(t *testing.T) {
	ctx := context.Background()

	t.Run("closes with today's date and publishes the event", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.client.enrollments = []emr_dto.Enrollment{
			{
				UUID:         enrollmentOne,
				Patient:      &emr_dto.DisplayRef{UUID: patientOne},
				Program:      emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"},
				DateEnrolled: "2026-08-01",
			},
		}

		closed, err := fixture.usecase.Disenroll(ctx, "session-data", enrollmentOne, &requests.Disenroll{VoidReason: "transferred out"})
		require.NoError(t, err)
		assert.False(t, closed.Active)

		require.Len(t, fixture.client.closed, 1)
		assert.Equal(t, utils.ToEMRDate(time.Now()), fixture.client.closed[0].DateCompleted)
		assert.Equal(t, "transferred out", fixture.client.closed[0].VoidReason)

		require.Len(t, fixture.publisher.events, 1)
		assert.Equal(t, "program.disenrolled", fixture.publisher.events[0].Type)
		assert.Equal(t, patientOne, fixture.publisher.events[0].PatientUUID)
		assert.Equal(t, "transferred out", fixture.publisher.events[0].Detail["void_reason"])
	})

	t.Run("already completed enrollment is refused", func(t *testing.T) {
		fixture := newEnrollmentFixture()
		fixture.client.enrollments = []emr_dto.Enrollment{
			{
				UUID:          enrollmentOne,
				Program:       emr_dto.DisplayRef{UUID: programHIV, Display: "HIV Care"},
				DateEnrolled:  "2026-01-01",
				DateCompleted: "2026-06-30",
			},
		}

		_, err := fixture.usecase.Disenroll(ctx, "session-data", enrollmentOne, &requests.Disenroll{})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))
		assert.Empty(t, fixture.client.closed)
	})

	t.Run("unknown enrollment reports not found", func(t *testing.T) {
		fixture := newEnrollmentFixture()

		_, err := fixture.usecase.Disenroll(ctx, "session-data", enrollmentOne, &requests.Disenroll{})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
	})
}
