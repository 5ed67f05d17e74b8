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

type FormController struct {
	Log         *zap.Logger
	FormUsecase contracts.FormUsecase
}

var (
	formControllerInstance *FormController
	onceFormController     sync.Once
)

func NewFormController(logger *zap.Logger, formUsecase contracts.FormUsecase) *FormController {
	onceFormController.Do(func() {
		instance := &FormController{
			Log:         logger,
			FormUsecase: formUsecase,
		}
		formControllerInstance = instance
	})
	return formControllerInstance
}

func (ctrl *FormController) ListAvailableForms(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("FormController.ListAvailableForms requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("FormController.ListAvailableForms called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientUUID := chi.URLParam(r, constvars.URLParamPatientID)
	if err := utils.ValidateUrlParamID(patientUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamPatientID))
		return
	}
	enrollmentUUID := chi.URLParam(r, constvars.URLParamEnrollmentID)
	if err := utils.ValidateUrlParamID(enrollmentUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamEnrollmentID))
		return
	}

	programUUID := r.URL.Query().Get(constvars.URLQueryParamProgram)
	if programUUID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrProgramRequired(nil))
		return
	}
	locationUUID := r.URL.Query().Get(constvars.URLQueryParamLocation)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.FormUsecase.ListAvailableForms(ctx, patientUUID, programUUID, enrollmentUUID, locationUUID)
	if err != nil {
		ctrl.Log.Error("FormController.ListAvailableForms error from usecase",
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

	ctrl.Log.Info("FormController.ListAvailableForms succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetFormsSuccessMessage, result)
}
