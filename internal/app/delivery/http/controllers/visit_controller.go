package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/dto/requests"
	"careflow-service/internal/pkg/exceptions"
	"careflow-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type VisitController struct {
	Log          *zap.Logger
	VisitUsecase contracts.VisitUsecase
}

var (
	visitControllerInstance *VisitController
	onceVisitController     sync.Once
)

func NewVisitController(logger *zap.Logger, visitUsecase contracts.VisitUsecase) *VisitController {
	onceVisitController.Do(func() {
		instance := &VisitController{
			Log:          logger,
			VisitUsecase: visitUsecase,
		}
		visitControllerInstance = instance
	})
	return visitControllerInstance
}

func (ctrl *VisitController) ListVisitTypes(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("VisitController.ListVisitTypes requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("VisitController.ListVisitTypes called",
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
	// Location is part of the eligibility tuple; the usecase reports it
	// by name when absent.
	locationUUID := r.URL.Query().Get(constvars.URLQueryParamLocation)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.VisitUsecase.ListVisitTypes(ctx, patientUUID, programUUID, enrollmentUUID, locationUUID)
	if err != nil {
		ctrl.Log.Error("VisitController.ListVisitTypes error from usecase",
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

	ctrl.Log.Info("VisitController.ListVisitTypes succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetVisitTypesSuccessMessage, result)
}

func (ctrl *VisitController) StartVisit(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("VisitController.StartVisit requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("VisitController.StartVisit called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientUUID := chi.URLParam(r, constvars.URLParamPatientID)
	if err := utils.ValidateUrlParamID(patientUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamPatientID))
		return
	}

	reqPayload := new(requests.StartVisit)
	if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
		ctrl.Log.Error("VisitController.StartVisit error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	if err := utils.ValidateStruct(reqPayload); err != nil {
		ctrl.Log.Error("VisitController.StartVisit validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	sessionData, ok := r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(string)
	if !ok || sessionData == "" {
		ctrl.Log.Error("VisitController.StartVisit sessionData not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingSessionData(nil))
		return
	}

	// Starting a visit hits the EMR write path behind the throttle.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := ctrl.VisitUsecase.StartVisit(ctx, sessionData, patientUUID, reqPayload)
	if err != nil {
		ctrl.Log.Error("VisitController.StartVisit error from usecase",
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

	ctrl.Log.Info("VisitController.StartVisit succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.StartVisitSuccessMessage, result)
}
