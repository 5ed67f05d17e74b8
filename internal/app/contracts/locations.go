package contracts

import (
	"context"

	"careflow-service/internal/pkg/dto/responses"
	"careflow-service/internal/pkg/emr_dto"
)

type LocationUsecase interface {
	ListLocations(ctx context.Context) ([]responses.Location, error)
}

// LocationEMRClient returns the full catalog; the EMR serves it in
// pages and the client walks the next links until exhausted.
type LocationEMRClient interface {
	ListLocations(ctx context.Context) ([]emr_dto.Location, error)
}
