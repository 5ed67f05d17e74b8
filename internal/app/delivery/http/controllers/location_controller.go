package controllers

import (
	"context"
	"net/http"
	"time"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/exceptions"
	"careflow-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type LocationController struct {
	Log             *zap.Logger
	LocationUsecase contracts.LocationUsecase
}

func NewLocationController(logger *zap.Logger, locationUsecase contracts.LocationUsecase) *LocationController {
	return &LocationController{
		Log:             logger,
		LocationUsecase: locationUsecase,
	}
}

func (ctrl *LocationController) ListLocations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.LocationUsecase.ListLocations(ctx)
	if err != nil {
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetLocationsSuccessMessage, result)
}
