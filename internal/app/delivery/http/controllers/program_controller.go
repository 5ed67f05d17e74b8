package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/exceptions"
	"careflow-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProgramController struct {
	Log            *zap.Logger
	ProgramUsecase contracts.ProgramUsecase
}

var (
	programControllerInstance *ProgramController
	onceProgramController     sync.Once
)

func NewProgramController(logger *zap.Logger, programUsecase contracts.ProgramUsecase) *ProgramController {
	onceProgramController.Do(func() {
		instance := &ProgramController{
			Log:            logger,
			ProgramUsecase: programUsecase,
		}
		programControllerInstance = instance
	})
	return programControllerInstance
}

func (ctrl *ProgramController) ListProgramsForPatient(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("ProgramController.ListProgramsForPatient requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("ProgramController.ListProgramsForPatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientUUID := chi.URLParam(r, constvars.URLParamPatientID)
	if err := utils.ValidateUrlParamID(patientUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamPatientID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.ProgramUsecase.ListProgramsForPatient(ctx, patientUUID)
	if err != nil {
		ctrl.Log.Error("ProgramController.ListProgramsForPatient error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("ProgramController.ListProgramsForPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetProgramsSuccessMessage, result)
}
