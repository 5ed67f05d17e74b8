package forms

import (
	"context"
	"testing"
	"time"

	"careflow-service/internal/app/config"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	patientOne    = "aaaaaaaa-0000-0000-0000-000000000001"
	programHIV    = "11111111-1111-1111-1111-111111111111"
	enrollmentOne = "ee111111-0000-0000-0000-000000000001"
	locationMain  = "99999999-0000-0000-0000-000000000001"

	visitTypeIntake   = "44444444-0000-0000-0000-000000000001"
	visitTypeFollowUp = "44444444-0000-0000-0000-000000000002"

	encounterHistory = "55555555-0000-0000-0000-000000000001"
	encounterVitals  = "55555555-0000-0000-0000-000000000002"
	encounterLabs    = "55555555-0000-0000-0000-000000000003"
)

func allowedVisitType(visitTypeUUID, name string, encounterTypeUUIDs ...string) emr_dto.EligibleVisitType {
	visitType := emr_dto.EligibleVisitType{UUID: visitTypeUUID, Name: name}
	if len(encounterTypeUUIDs) > 0 {
		visitType.EncounterTypes = &emr_dto.EncounterTypes{}
		for _, encounterTypeUUID := range encounterTypeUUIDs {
			visitType.EncounterTypes.AllowedEncounters = append(visitType.EncounterTypes.AllowedEncounters,
				emr_dto.NamedRef{UUID: encounterTypeUUID})
		}
	}
	return visitType
}

func publishedForm(formUUID, name, encounterTypeUUID, version string) emr_dto.Form {
	return emr_dto.Form{
		UUID:          formUUID,
		Name:          name,
		EncounterType: &emr_dto.NamedRef{UUID: encounterTypeUUID, Name: "Encounter"},
		Version:       version,
		Published:     true,
	}
}

func TestResolveAvailableForms(t *testing.T) {
	allowed := []emr_dto.EligibleVisitType{
		allowedVisitType(visitTypeIntake, "Intake", encounterHistory, encounterVitals),
		allowedVisitType(visitTypeFollowUp, "Follow-up", encounterLabs),
	}
	catalog := []emr_dto.Form{
		publishedForm("f-history", "History", encounterHistory, "1.0"),
		publishedForm("f-vitals", "Vitals", encounterVitals, "1.0"),
		publishedForm("f-labs", "Lab Orders", encounterLabs, "1.0"),
	}

	t.Run("returns nothing without a matching active visit", func(t *testing.T) {
		assert.Empty(t, ResolveAvailableForms(allowed, catalog, nil))
		assert.Empty(t, ResolveAvailableForms(allowed, catalog, []string{"44444444-0000-0000-0000-000000000099"}))
	})

	t.Run("orders by visit type then encounter order", func(t *testing.T) {
		available := ResolveAvailableForms(allowed, catalog, []string{visitTypeIntake})
		require.Len(t, available, 3)
		assert.Equal(t, "f-history", available[0].UUID)
		assert.Equal(t, "f-vitals", available[1].UUID)
		assert.Equal(t, "f-labs", available[2].UUID)
	})

	t.Run("selects the highest published version per encounter type", func(t *testing.T) {
		retired := publishedForm("f-history-3", "History", encounterHistory, "3.0")
		retired.Retired = true
		draft := publishedForm("f-history-4", "History", encounterHistory, "4.0")
		draft.Published = false
		versioned := []emr_dto.Form{
			publishedForm("f-history-1", "History", encounterHistory, "1.0"),
			publishedForm("f-history-2", "History", encounterHistory, "2.0"),
			retired,
			draft,
		}

		available := ResolveAvailableForms(allowed[:1], versioned, []string{visitTypeIntake})
		require.Len(t, available, 1)
		assert.Equal(t, "f-history-2", available[0].UUID)
	})

	t.Run("compares versions numerically when they parse", func(t *testing.T) {
		versioned := []emr_dto.Form{
			publishedForm("f-history-9", "History", encounterHistory, "1.9"),
			publishedForm("f-history-10", "History", encounterHistory, "1.10"),
		}

		available := ResolveAvailableForms(allowed[:1], versioned, []string{visitTypeIntake})
		require.Len(t, available, 1)
		assert.Equal(t, "f-history-10", available[0].UUID, "1.10 outranks 1.9 numerically")
	})

	t.Run("falls back to string comparison for unparsable versions", func(t *testing.T) {
		versioned := []emr_dto.Form{
			publishedForm("f-history-a", "History", encounterHistory, "rev-a"),
			publishedForm("f-history-b", "History", encounterHistory, "rev-b"),
		}

		available := ResolveAvailableForms(allowed[:1], versioned, []string{visitTypeIntake})
		require.Len(t, available, 1)
		assert.Equal(t, "f-history-b", available[0].UUID)
	})

	t.Run("deduplicates a form reachable through two visit types", func(t *testing.T) {
		shared := []emr_dto.EligibleVisitType{
			allowedVisitType(visitTypeIntake, "Intake", encounterHistory),
			allowedVisitType(visitTypeFollowUp, "Follow-up", encounterHistory, encounterLabs),
		}

		available := ResolveAvailableForms(shared, catalog, []string{visitTypeFollowUp})
		require.Len(t, available, 2)
		assert.Equal(t, "f-history", available[0].UUID)
		assert.Equal(t, "f-labs", available[1].UUID)
	})

	t.Run("skips encounter types with no launchable form", func(t *testing.T) {
		onlyRetired := publishedForm("f-vitals-r", "Vitals", encounterVitals, "1.0")
		onlyRetired.Retired = true

		available := ResolveAvailableForms(allowed[:1], []emr_dto.Form{
			publishedForm("f-history", "History", encounterHistory, "1.0"),
			onlyRetired,
		}, []string{visitTypeIntake})
		require.Len(t, available, 1)
		assert.Equal(t, "f-history", available[0].UUID)
	})
}

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

func (f *fakeRedis) DeleteByPattern(_ context.Context, _ string) error {
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

type fakeFormClient struct {
	forms     []emr_dto.Form
	listCalls int
}

func (f *fakeFormClient) ListForms(_ context.Context) ([]emr_dto.Form, error) {
	f.listCalls++
	return f.forms, nil
}

type fakeVisitClient struct {
	visits []emr_dto.Visit
}

func (f *fakeVisitClient) ListVisitsByPatient(_ context.Context, _ string) ([]emr_dto.Visit, error) {
	return f.visits, nil
}

func (f *fakeVisitClient) CreateVisit(_ context.Context, _ *emr_dto.CreateVisitRequest) (*emr_dto.Visit, error) {
	return nil, nil
}

type fakeConfigDocClient struct {
	document *emr_dto.VisitTypeEligibility
}

func (f *fakeConfigDocClient) GetPatientProgramConfig(_ context.Context, _ string) (emr_dto.PatientProgramConfig, error) {
	return emr_dto.PatientProgramConfig{}, nil
}

func (f *fakeConfigDocClient) GetVisitTypeEligibility(_ context.Context, _, _, _, _ string) (*emr_dto.VisitTypeEligibility, error) {
	if f.document == nil {
		return &emr_dto.VisitTypeEligibility{}, nil
	}
	return f.document, nil
}

type formFixture struct {
	usecase   *formUsecase
	redis     *fakeRedis
	client    *fakeFormClient
	visits    *fakeVisitClient
	documents *fakeConfigDocClient
}

func newFormFixture() *formFixture {
	fixture := &formFixture{
		redis: newFakeRedis(),
		client: &fakeFormClient{forms: []emr_dto.Form{
			publishedForm("f-history", "History", encounterHistory, "1.0"),
			publishedForm("f-vitals", "Vitals", encounterVitals, "1.0"),
		}},
		visits: &fakeVisitClient{},
		documents: &fakeConfigDocClient{document: &emr_dto.VisitTypeEligibility{
			Allowed: []emr_dto.EligibleVisitType{
				allowedVisitType(visitTypeIntake, "Intake", encounterHistory, encounterVitals),
			},
		}},
	}
	fixture.usecase = &formUsecase{
		FormEMRClient:        fixture.client,
		VisitEMRClient:       fixture.visits,
		ConfigDocumentClient: fixture.documents,
		RedisRepository:      fixture.redis,
		InternalConfig: &config.InternalConfig{
			Cache: config.Cache{CatalogTTLInMinutes: 10, PatientTTLInSeconds: 60},
		},
		Log: zap.NewNop(),
	}
	return fixture
}

func TestListAvailableForms(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves forms for the open visit", func(t *testing.T) {
		fixture := newFormFixture()
		fixture.visits.visits = []emr_dto.Visit{
			{UUID: "v-open", VisitType: emr_dto.NamedRef{UUID: visitTypeIntake, Name: "Intake"}, StartDatetime: "2026-08-21T09:30:00Z"},
		}

		available, err := fixture.usecase.ListAvailableForms(ctx, patientOne, programHIV, enrollmentOne, locationMain)
		require.NoError(t, err)
		require.Len(t, available, 2)
		assert.Equal(t, "f-history", available[0].UUID)
		assert.Equal(t, "History", available[0].Name)
		assert.Equal(t, encounterHistory, available[0].EncounterTypeUUID)
		assert.Equal(t, "f-vitals", available[1].UUID)
	})

	t.Run("returns empty without an open visit", func(t *testing.T) {
		fixture := newFormFixture()

		available, err := fixture.usecase.ListAvailableForms(ctx, patientOne, programHIV, enrollmentOne, locationMain)
		require.NoError(t, err)
		assert.Empty(t, available)
	})

	t.Run("returns empty when the open visit belongs to another program", func(t *testing.T) {
		fixture := newFormFixture()
		fixture.visits.visits = []emr_dto.Visit{
			{UUID: "v-open", VisitType: emr_dto.NamedRef{UUID: visitTypeFollowUp, Name: "Follow-up"}, StartDatetime: "2026-08-21T09:30:00Z"},
		}

		available, err := fixture.usecase.ListAvailableForms(ctx, patientOne, programHIV, enrollmentOne, locationMain)
		require.NoError(t, err)
		assert.Empty(t, available)
	})

	t.Run("caches the form catalog", func(t *testing.T) {
		fixture := newFormFixture()

		_, err := fixture.usecase.ListAvailableForms(ctx, patientOne, programHIV, enrollmentOne, locationMain)
		require.NoError(t, err)
		_, err = fixture.usecase.ListAvailableForms(ctx, patientOne, programHIV, enrollmentOne, locationMain)
		require.NoError(t, err)
		assert.Equal(t, 1, fixture.client.listCalls)
	})

	t.Run("requires a location", func(t *testing.T) {
		fixture := newFormFixture()

		_, err := fixture.usecase.ListAvailableForms(ctx, patientOne, programHIV, enrollmentOne, "")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))
	})
}
