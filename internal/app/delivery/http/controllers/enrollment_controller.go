package controllers

import (
	"context"
	"io"
	"net/http"
	"strconv"
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

type EnrollmentController struct {
	Log               *zap.Logger
	EnrollmentUsecase contracts.EnrollmentUsecase
}

var (
	enrollmentControllerInstance *EnrollmentController
	onceEnrollmentController     sync.Once
)

func NewEnrollmentController(logger *zap.Logger, enrollmentUsecase contracts.EnrollmentUsecase) *EnrollmentController {
	onceEnrollmentController.Do(func() {
		instance := &EnrollmentController{
			Log:               logger,
			EnrollmentUsecase: enrollmentUsecase,
		}
		enrollmentControllerInstance = instance
	})
	return enrollmentControllerInstance
}

func (ctrl *EnrollmentController) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("EnrollmentController.ListEnrollments requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("EnrollmentController.ListEnrollments called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientUUID := chi.URLParam(r, constvars.URLParamPatientID)
	if err := utils.ValidateUrlParamID(patientUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamPatientID))
		return
	}

	// An absent or unparsable active flag returns the full history.
	activeOnly, err := strconv.ParseBool(r.URL.Query().Get(constvars.URLQueryParamActive))
	if err != nil {
		activeOnly = false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.EnrollmentUsecase.ListEnrollments(ctx, patientUUID, activeOnly)
	if err != nil {
		ctrl.Log.Error("EnrollmentController.ListEnrollments error from usecase",
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

	ctrl.Log.Info("EnrollmentController.ListEnrollments succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetEnrollmentsSuccessMessage, result)
}

func (ctrl *EnrollmentController) Enroll(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("EnrollmentController.Enroll requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("EnrollmentController.Enroll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientUUID := chi.URLParam(r, constvars.URLParamPatientID)
	if err := utils.ValidateUrlParamID(patientUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamPatientID))
		return
	}

	reqPayload := new(requests.CreateEnrollment)
	if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
		ctrl.Log.Error("EnrollmentController.Enroll error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	if err := utils.ValidateStruct(reqPayload); err != nil {
		ctrl.Log.Error("EnrollmentController.Enroll validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	sessionData, ok := r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(string)
	if !ok || sessionData == "" {
		ctrl.Log.Error("EnrollmentController.Enroll sessionData not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingSessionData(nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.EnrollmentUsecase.Enroll(ctx, sessionData, patientUUID, reqPayload)
	if err != nil {
		ctrl.Log.Error("EnrollmentController.Enroll error from usecase",
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

	ctrl.Log.Info("EnrollmentController.Enroll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.EnrollSuccessMessage, result)
}

func (ctrl *EnrollmentController) Disenroll(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("EnrollmentController.Disenroll requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("EnrollmentController.Disenroll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	enrollmentUUID := chi.URLParam(r, constvars.URLParamEnrollmentID)
	if err := utils.ValidateUrlParamID(enrollmentUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamEnrollmentID))
		return
	}

	// The body is optional: disenrolling without a reason is a valid call.
	reqPayload := new(requests.Disenroll)
	if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil && err != io.EOF {
		ctrl.Log.Error("EnrollmentController.Disenroll error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	if err := utils.ValidateStruct(reqPayload); err != nil {
		ctrl.Log.Error("EnrollmentController.Disenroll validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	sessionData, ok := r.Context().Value(constvars.CONTEXT_SESSION_DATA_KEY).(string)
	if !ok || sessionData == "" {
		ctrl.Log.Error("EnrollmentController.Disenroll sessionData not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingSessionData(nil))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.EnrollmentUsecase.Disenroll(ctx, sessionData, enrollmentUUID, reqPayload)
	if err != nil {
		ctrl.Log.Error("EnrollmentController.Disenroll error from usecase",
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

	ctrl.Log.Info("EnrollmentController.Disenroll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.DisenrollSuccessMessage, result)
}
