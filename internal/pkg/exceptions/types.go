package exceptions

import (
	"fmt"
	"strings"

	"careflow-service/internal/pkg/constvars"
)

var (
	// Wizard and enrollment validation. These never reach the EMR: the
	// offending transition is blocked client-side of the write.
	ErrEnrollmentDateRequired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientEnrollmentDateRequired, constvars.ErrDevEnrollmentDate)
	}
	ErrProgramRequired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientProgramRequired, constvars.ErrDevInvalidInput)
	}
	ErrLocationRequired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientLocationRequired, fmt.Sprintf(constvars.ErrDevStartVisitMissing, "location"))
	}
	ErrVisitTypeRequired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientVisitTypeRequired, fmt.Sprintf(constvars.ErrDevStartVisitMissing, "visitType"))
	}
	ErrVisitTypeNotAllowed = func(err error, visitTypeUUID string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientVisitTypeNotAllowed, fmt.Sprintf(constvars.ErrDevVisitTypeNotInScope, visitTypeUUID))
	}
	ErrMissingAnswer = func(questionName string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusBadRequest, KindMissingAnswer, fmt.Sprintf("%s is required", questionName), fmt.Sprintf(constvars.ErrDevMissingAnswer, questionName))
	}
	ErrNotEligible = func(questionName, programMessage string) *CustomError {
		clientMessage := programMessage
		if clientMessage == "" {
			clientMessage = constvars.ErrClientNotEligibleDefault
		}
		return BuildNewCustomError(nil, constvars.StatusUnprocessableEntity, KindNotEligible, clientMessage, fmt.Sprintf(constvars.ErrDevNotEligible, questionName))
	}
	ErrIncompatibleProgram = func(programDisplay string, blockingDisplays []string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusUnprocessableEntity, KindIncompatibleProgram, constvars.ErrClientProgramIncompatible, fmt.Sprintf(constvars.ErrDevIncompatibleProgram, programDisplay, strings.Join(blockingDisplays, ", ")))
	}
	ErrProgramAlreadyEnrolled = func(programDisplay string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusUnprocessableEntity, KindValidation, constvars.ErrClientProgramAlreadyEnrolled, fmt.Sprintf(constvars.ErrDevProgramEnrolled, programDisplay))
	}
	ErrProgramNotFound = func(programUUID string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusNotFound, KindNotFound, constvars.ErrClientProgramNotFound, fmt.Sprintf(constvars.ErrDevProgramNotFound, programUUID))
	}
	ErrWizardNotFound = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, KindNotFound, constvars.ErrClientWizardNotFound, constvars.ErrDevWizardNotFound)
	}
	ErrWizardWrongStage = func(stage string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusConflict, KindValidation, constvars.ErrClientWizardWrongStage, fmt.Sprintf(constvars.ErrDevWizardWrongStage, stage))
	}
	ErrSubmissionInProgress = func(wizardID string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusConflict, KindValidation, constvars.ErrClientSubmissionInProgress, fmt.Sprintf(constvars.ErrDevWizardLockHeld, wizardID))
	}
	ErrEnrollmentNotFound = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, KindNotFound, constvars.ErrClientEnrollmentNotFound, constvars.ErrDevServerNotFound)
	}
	ErrEnrollmentAlreadyClosed = func(enrollmentUUID string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusUnprocessableEntity, KindValidation, constvars.ErrClientEnrollmentAlreadyClosed, fmt.Sprintf(constvars.ErrDevEnrollmentNotActive, enrollmentUUID))
	}
	ErrProgramConfigMissing = func(programUUID string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusNotFound, KindNotFound, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevProgramConfigMissing, programUUID))
	}

	// Request parsing and validation
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrURLParamIDValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientCannotProcessRequest, fmt.Sprintf("parameter %s validation failed", paramName))
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotParseTime = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseTime)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrBuildRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, KindValidation, constvars.ErrClientCannotProcessRequest, constvars.ErrDevBuildRequest)
	}

	// Auth
	ErrTokenMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, KindUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevAuthTokenMissing)
	}
	ErrTokenInvalidOrExpired = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, KindUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenInvalidOrExpired)
	}
	ErrAuthInvalidSession = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, KindUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthInvalidSession)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID)
	}
	ErrMissingSessionData = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, KindUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevMissingSessionData)
	}
	ErrNotAuthorized = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusForbidden, KindUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevAuthPermissionDenied)
	}

	// Legacy EMR boundary. Reads and writes rejected by the EMR surface the
	// server's own message when it sent one.
	ErrEMRGetResource = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, KindRemoteFailure, constvars.ErrClientEMRUnavailable, fmt.Sprintf(constvars.ErrDevEMRGetResource, resource))
	}
	ErrEMRCreateResource = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, KindRemoteFailure, constvars.ErrClientEMRUnavailable, fmt.Sprintf(constvars.ErrDevEMRCreateResource, resource))
	}
	ErrEMRUpdateResource = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, KindRemoteFailure, constvars.ErrClientEMRUnavailable, fmt.Sprintf(constvars.ErrDevEMRUpdateResource, resource))
	}
	ErrEMRRejected = func(resource, serverMessage string) *CustomError {
		clientMessage := serverMessage
		if clientMessage == "" {
			clientMessage = constvars.ErrClientEMRUnavailable
		}
		return BuildNewCustomError(nil, constvars.StatusBadGateway, KindRemoteFailure, clientMessage, fmt.Sprintf(constvars.ErrDevEMRCreateResource, resource))
	}
	ErrEMRDecodeResponse = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, KindRemoteFailure, constvars.ErrClientEMRUnavailable, fmt.Sprintf(constvars.ErrDevEMRDecodeResponse, resource))
	}
	ErrEMRFollowNextLink = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, KindRemoteFailure, constvars.ErrClientEMRUnavailable, fmt.Sprintf(constvars.ErrDevEMRFollowNextLink, resource))
	}
	ErrEMRDocumentNotFound = func(err error, documentName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusNotFound, KindNotFound, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevEMRDocumentNotFound, documentName))
	}
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCreateHTTPRequest)
	}
	ErrSendHTTPRequest = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadGateway, KindRemoteFailure, constvars.ErrClientEMRUnavailable, constvars.ErrDevSendHTTPRequest)
	}

	// Redis
	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData)
	}
	ErrRedisGet = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisGetData)
	}
	ErrRedisGetNoData = func(err error, redisKey string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGetNoData, redisKey))
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteData)
	}
	ErrRedisScan = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisScanKeys)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock)
	}

	// Mongo
	ErrMongoDBInsertDocument = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertDocument)
	}
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindDocument)
	}
	ErrMongoDBIterateDocuments = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToIterateDocuments)
	}

	// RabbitMQ
	ErrRabbitMQDeclareQueue = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevQueueDeclare, queueName))
	}
	ErrRabbitMQPublishMessage = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevQueuePublish, queueName))
	}
	ErrRabbitMQConfirm = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevQueueConfirm, queueName))
	}
	ErrRabbitMQConsume = func(err error, queueName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevQueueConsume, queueName))
	}

	// Minio
	ErrBucketGetObject = func(err error, objectName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevBucketGetObject, objectName))
	}

	// Server
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, KindInternal, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrServerProcess = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, KindInternal, constvars.ErrClientCannotProcessRequest, constvars.ErrDevServerInternalError)
	}
)
