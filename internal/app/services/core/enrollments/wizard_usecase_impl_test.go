package enrollments

import (
	"context"
	"testing"

	"careflow-service/internal/pkg/dto/requests"
	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type wizardFixture struct {
	usecase   *wizardUsecase
	redis     *fakeRedis
	client    *fakeEnrollmentClient
	catalog   *fakeProgramUsecase
	documents *fakeConfigDocClient
	locker    *fakeLocker
	publisher *fakePublisher
}

func newWizardFixture() *wizardFixture {
	fixture := &wizardFixture{
		redis:     newFakeRedis(),
		client:    &fakeEnrollmentClient{nextUUID: enrollmentOne},
		catalog:   &fakeProgramUsecase{options: selectableCatalog()},
		documents: &fakeConfigDocClient{programConfig: questionConfig()},
		locker:    newFakeLocker(),
		publisher: &fakePublisher{},
	}
	fixture.usecase = &wizardUsecase{
		ProgramUsecase:       fixture.catalog,
		EnrollmentEMRClient:  fixture.client,
		ConfigDocumentClient: fixture.documents,
		RedisRepository:      fixture.redis,
		LockerService:        fixture.locker,
		SessionService:       &fakeSessionService{},
		EventPublisher:       fixture.publisher,
		InternalConfig:       testConfig(),
		Log:                  zap.NewNop(),
	}
	return fixture
}

// openAtReview walks a fresh wizard to the review stage and returns it.
func openAtReview(t *testing.T, fixture *wizardFixture) *responses.WizardState {
	t.Helper()
	ctx := context.Background()

	state, err := fixture.usecase.Open(ctx, "session-data", patientOne)
	require.NoError(t, err)

	state, err = fixture.usecase.Select(ctx, state.WizardID, &requests.WizardSelect{ProgramUUID: programHIV})
	require.NoError(t, err)

	state, err = fixture.usecase.SubmitDetails(ctx, state.WizardID, &requests.WizardDetails{
		DateEnrolled: "2026-08-20",
		LocationUUID: locationMain,
		Answers:      map[string]string{"consent": "yes"},
	})
	require.NoError(t, err)
	require.Equal(t, "review", state.Stage)
	return state
}

func TestWizardOpenAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("open starts at select with the annotated catalog", func(t *testing.T) {
		fixture := newWizardFixture()

		state, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)
		assert.NotEmpty(t, state.WizardID)
		assert.Equal(t, "select", state.Stage)
		assert.Equal(t, patientOne, state.PatientUUID)
		assert.Len(t, state.Programs, 2)
	})

	t.Run("get returns the stored snapshot", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)

		state, err := fixture.usecase.Get(ctx, opened.WizardID)
		require.NoError(t, err)
		assert.Equal(t, opened.WizardID, state.WizardID)
		assert.Equal(t, "select", state.Stage)
	})

	t.Run("get of an expired session reports not found", func(t *testing.T) {
		fixture := newWizardFixture()

		_, err := fixture.usecase.Get(ctx, "missing-wizard")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
	})
}

func TestWizardSelect(t *testing.T) {
	ctx := context.Background()

	t.Run("selecting an available program advances to details with its questions", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)

		state, err := fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programHIV})
		require.NoError(t, err)
		assert.Equal(t, "details", state.Stage)
		assert.Equal(t, programHIV, state.ProgramUUID)
		assert.Equal(t, "HIV Care", state.ProgramDisplay)
		require.Len(t, state.Questions, 1)
		assert.Equal(t, "consent", state.Questions[0].QType)
	})

	t.Run("enrolled program is refused and the session stays in select", func(t *testing.T) {
		fixture := newWizardFixture()
		fixture.catalog.options = []responses.ProgramOption{
			{UUID: programHIV, Display: "HIV Care", Selectable: false, Reason: responses.ProgramBlockedEnrolled},
		}
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)

		_, err = fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programHIV})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))

		state, err := fixture.usecase.Get(ctx, opened.WizardID)
		require.NoError(t, err)
		assert.Equal(t, "select", state.Stage)
		assert.Empty(t, state.ProgramUUID)
	})

	t.Run("incompatible program reports the blocking enrollments", func(t *testing.T) {
		fixture := newWizardFixture()
		fixture.catalog.options = []responses.ProgramOption{
			{UUID: programTB, Display: "TB Treatment", Selectable: false, Reason: responses.ProgramBlockedIncompatible, BlockedBy: []string{"HIV Care"}},
		}
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)

		_, err = fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programTB})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindIncompatibleProgram))
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Contains(t, customErr.DevMessage, "HIV Care")
	})

	t.Run("select outside the select stage is refused", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)
		_, err = fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programHIV})
		require.NoError(t, err)

		_, err = fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programTB})
		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, 409, customErr.StatusCode)
	})

	t.Run("a new selection clears previously collected answers", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)

		state, err := fixture.usecase.Back(ctx, state.WizardID)
		require.NoError(t, err)
		require.Equal(t, "details", state.Stage)
		assert.Equal(t, "yes", state.Answers["consent"])

		state, err = fixture.usecase.Back(ctx, state.WizardID)
		require.NoError(t, err)
		require.Equal(t, "select", state.Stage)

		state, err = fixture.usecase.Select(ctx, state.WizardID, &requests.WizardSelect{ProgramUUID: programTB})
		require.NoError(t, err)
		assert.Empty(t, state.Answers)
		assert.Equal(t, programTB, state.ProgramUUID)
	})
}

func TestWizardSubmitDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("empty date reports the date requirement", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)
		_, err = fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programHIV})
		require.NoError(t, err)

		_, err = fixture.usecase.SubmitDetails(ctx, opened.WizardID, &requests.WizardDetails{
			Answers: map[string]string{"consent": "yes"},
		})
		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindValidation, customErr.Kind)
		assert.Equal(t, "enrollment date is required", customErr.ClientMessage)
	})

	t.Run("failing eligibility keeps the wizard in details", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)
		_, err = fixture.usecase.Select(ctx, opened.WizardID, &requests.WizardSelect{ProgramUUID: programHIV})
		require.NoError(t, err)

		_, err = fixture.usecase.SubmitDetails(ctx, opened.WizardID, &requests.WizardDetails{
			DateEnrolled: "2026-08-20",
			Answers:      map[string]string{"consent": "no"},
		})
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotEligible))
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, "Consent is required to join HIV care", customErr.ClientMessage)

		state, err := fixture.usecase.Get(ctx, opened.WizardID)
		require.NoError(t, err)
		assert.Equal(t, "details", state.Stage)
		assert.Empty(t, state.DateEnrolled)
	})

	t.Run("valid details advance to review carrying the answers", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)
		assert.Equal(t, "2026-08-20", state.DateEnrolled)
		assert.Equal(t, locationMain, state.LocationUUID)
		assert.Equal(t, "yes", state.Answers["consent"])
	})
}

func TestWizardCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("commit creates the enrollment and reaches success", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)

		committed, err := fixture.usecase.Commit(ctx, state.WizardID)
		require.NoError(t, err)
		assert.Equal(t, "success", committed.Stage)
		require.NotNil(t, committed.Enrollment)
		assert.Equal(t, enrollmentOne, committed.Enrollment.UUID)

		require.Len(t, fixture.client.created, 1)
		assert.Equal(t, patientOne, fixture.client.created[0].Patient)
		assert.Equal(t, programHIV, fixture.client.created[0].Program)
		assert.Equal(t, "2026-08-20", fixture.client.created[0].DateEnrolled)
		assert.Equal(t, locationMain, fixture.client.created[0].Location)

		require.Len(t, fixture.publisher.events, 1)
		assert.Equal(t, "program.enrolled", fixture.publisher.events[0].Type)
		assert.Equal(t, clinicianOne, fixture.publisher.events[0].ActorUUID)

		assert.Empty(t, fixture.locker.held, "commit lock released")
	})

	t.Run("a failed write leaves the wizard in review with its data", func(t *testing.T) {
		fixture := newWizardFixture()
		fixture.client.createErr = exceptions.ErrEMRRejected("programenrollment", "duplicate enrollment")
		state := openAtReview(t, fixture)

		_, err := fixture.usecase.Commit(ctx, state.WizardID)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindRemoteFailure))
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, "duplicate enrollment", customErr.ClientMessage)

		reloaded, err := fixture.usecase.Get(ctx, state.WizardID)
		require.NoError(t, err)
		assert.Equal(t, "review", reloaded.Stage)
		assert.Equal(t, programHIV, reloaded.ProgramUUID)
		assert.Equal(t, "2026-08-20", reloaded.DateEnrolled)
		assert.Equal(t, "yes", reloaded.Answers["consent"])
		assert.Empty(t, fixture.publisher.events)
		assert.Empty(t, fixture.locker.held, "lock released after failure")
	})

	t.Run("a held lock refuses duplicate submission", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)
		fixture.locker.held["careflow:lock:wizard:"+state.WizardID] = "other"

		_, err := fixture.usecase.Commit(ctx, state.WizardID)
		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, 409, customErr.StatusCode)
		assert.Empty(t, fixture.client.created)
	})

	t.Run("commit outside review is refused", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)

		_, err = fixture.usecase.Commit(ctx, opened.WizardID)
		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, 409, customErr.StatusCode)
	})
}

func TestWizardBackStartOverClose(t *testing.T) {
	ctx := context.Background()

	t.Run("back from select is refused", func(t *testing.T) {
		fixture := newWizardFixture()
		opened, err := fixture.usecase.Open(ctx, "session-data", patientOne)
		require.NoError(t, err)

		_, err = fixture.usecase.Back(ctx, opened.WizardID)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))
	})

	t.Run("start over after success clears all collected state", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)
		committed, err := fixture.usecase.Commit(ctx, state.WizardID)
		require.NoError(t, err)
		require.Equal(t, "success", committed.Stage)

		restarted, err := fixture.usecase.StartOver(ctx, state.WizardID)
		require.NoError(t, err)
		assert.Equal(t, "select", restarted.Stage)
		assert.Empty(t, restarted.ProgramUUID)
		assert.Empty(t, restarted.DateEnrolled)
		assert.Empty(t, restarted.LocationUUID)
		assert.Empty(t, restarted.Answers)
		assert.Nil(t, restarted.Enrollment)
	})

	t.Run("start over outside success is refused", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)

		_, err := fixture.usecase.StartOver(ctx, state.WizardID)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))
	})

	t.Run("close deletes the session at any stage", func(t *testing.T) {
		fixture := newWizardFixture()
		state := openAtReview(t, fixture)

		require.NoError(t, fixture.usecase.Close(ctx, state.WizardID))

		_, err := fixture.usecase.Get(ctx, state.WizardID)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))

		// Closing again is a no-op.
		require.NoError(t, fixture.usecase.Close(ctx, state.WizardID))
	})
}
