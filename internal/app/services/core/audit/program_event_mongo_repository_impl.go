package audit

import (
	"context"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/models"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type programEventMongoRepository struct {
	Collection *mongo.Collection
}

func NewProgramEventMongoRepository(db *mongo.Client, dbName string) contracts.ProgramEventRepository {
	return &programEventMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionProgramEvents),
	}
}

func (repo *programEventMongoRepository) InsertEvent(ctx context.Context, event *models.CareflowEvent) error {
	// Queue delivery is at-least-once, so the write is keyed by eventId
	// and a redelivered event overwrites itself instead of duplicating.
	filter := bson.M{"eventId": event.EventID}
	_, err := repo.Collection.ReplaceOne(ctx, filter, event, options.Replace().SetUpsert(true))
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *programEventMongoRepository) FindEventsByPatient(ctx context.Context, patientUUID string, page, pageSize int) ([]models.CareflowEvent, int, error) {
	filter := bson.M{"patientUuid": patientUUID}

	total, err := repo.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "occurredAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := repo.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, exceptions.ErrMongoDBFindDocument(err)
	}

	var events []models.CareflowEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return events, int(total), nil
}
