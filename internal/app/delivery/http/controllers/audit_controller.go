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

type AuditController struct {
	Log          *zap.Logger
	AuditUsecase contracts.AuditUsecase
}

var (
	auditControllerInstance *AuditController
	onceAuditController     sync.Once
)

func NewAuditController(logger *zap.Logger, auditUsecase contracts.AuditUsecase) *AuditController {
	onceAuditController.Do(func() {
		instance := &AuditController{
			Log:          logger,
			AuditUsecase: auditUsecase,
		}
		auditControllerInstance = instance
	})
	return auditControllerInstance
}

func (ctrl *AuditController) ListPatientEvents(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("AuditController.ListPatientEvents requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("AuditController.ListPatientEvents called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	patientUUID := chi.URLParam(r, constvars.URLParamPatientID)
	if err := utils.ValidateUrlParamID(patientUUID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamPatientID))
		return
	}

	pagination := utils.BuildPaginationRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, total, err := ctrl.AuditUsecase.ListPatientEvents(ctx, patientUUID, pagination.Page, pagination.PageSize)
	if err != nil {
		ctrl.Log.Error("AuditController.ListPatientEvents error from usecase",
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

	paginationData := utils.BuildPaginationResponse(total, pagination.Page, pagination.PageSize, r.URL.Path)

	ctrl.Log.Info("AuditController.ListPatientEvents succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.GetProgramEventsSuccessMessage, paginationData, result)
}
