package audit

import (
	"context"
	"testing"
	"time"

	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventRepository struct {
	events       []models.CareflowEvent
	total        int
	err          error
	lastPage     int
	lastPageSize int
}

func (f *fakeEventRepository) InsertEvent(_ context.Context, event *models.CareflowEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepository) FindEventsByPatient(_ context.Context, _ string, page, pageSize int) ([]models.CareflowEvent, int, error) {
	f.lastPage = page
	f.lastPageSize = pageSize
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func TestListPatientEvents(t *testing.T) {
	ctx := context.Background()
	patientOne := "aaaaaaaa-0000-0000-0000-000000000001"
	occurredAt := time.Date(2026, 8, 21, 9, 30, 0, 0, time.UTC)

	t.Run("maps the persisted trail", func(t *testing.T) {
		repository := &fakeEventRepository{
			events: []models.CareflowEvent{
				{
					EventID:     "evt-2",
					Type:        "visit.started",
					PatientUUID: patientOne,
					VisitUUID:   "ff111111-0000-0000-0000-000000000001",
					OccurredAt:  occurredAt,
				},
				{
					EventID:     "evt-1",
					Type:        "program.enrolled",
					PatientUUID: patientOne,
					ProgramUUID: "11111111-1111-1111-1111-111111111111",
					OccurredAt:  occurredAt.Add(-time.Hour),
					Detail:      map[string]string{"void_reason": ""},
				},
			},
			total: 7,
		}
		usecase := &auditUsecase{ProgramEventRepository: repository, Log: zap.NewNop()}

		events, total, err := usecase.ListPatientEvents(ctx, patientOne, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 7, total)
		require.Len(t, events, 2)
		assert.Equal(t, "evt-2", events[0].EventID)
		assert.Equal(t, "visit.started", events[0].Type)
		assert.Equal(t, occurredAt, events[0].OccurredAt)
		assert.Equal(t, "evt-1", events[1].EventID)
	})

	t.Run("normalizes page and page size", func(t *testing.T) {
		repository := &fakeEventRepository{}
		usecase := &auditUsecase{ProgramEventRepository: repository, Log: zap.NewNop()}

		_, _, err := usecase.ListPatientEvents(ctx, patientOne, 0, -5)
		require.NoError(t, err)
		assert.Equal(t, 1, repository.lastPage)
		assert.Equal(t, 10, repository.lastPageSize)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		repository := &fakeEventRepository{err: exceptions.ErrMongoDBFindDocument(assert.AnError)}
		usecase := &auditUsecase{ProgramEventRepository: repository, Log: zap.NewNop()}

		_, _, err := usecase.ListPatientEvents(ctx, patientOne, 1, 10)
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindInternal))
	})
}
