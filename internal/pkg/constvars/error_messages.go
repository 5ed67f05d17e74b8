package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":         "is required",
	"min":              "must be at least %s characters long",
	"max":              "maximum at %s characters long",
	"numeric":          "must be a number",
	"len":              "must be %s characters long",
	"oneof":            "must be one of [%s]",
	"url":              "must be a valid URL",
	"uuid":             "must be a valid UUID",
	"uuid4":            "must be a valid UUID",
	"datetime":         "must be a valid date in %s format",
	"required_with":    "is required when %s is present",
	"required_without": "is required when %s is not present",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":              true,
	"max":              true,
	"len":              true,
	"oneof":            true,
	"datetime":         true,
	"required_with":    true,
	"required_without": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"

	ErrClientEnrollmentDateRequired  = "enrollment date is required"
	ErrClientProgramRequired         = "a program must be selected first"
	ErrClientLocationRequired        = "a location must be selected first"
	ErrClientVisitTypeRequired       = "a visit type must be selected first"
	ErrClientVisitTypeNotAllowed     = "the selected visit type is not allowed at this location"
	ErrClientProgramAlreadyEnrolled  = "the patient is already enrolled in this program"
	ErrClientProgramIncompatible     = "this program cannot be combined with an active enrollment"
	ErrClientNotEligibleDefault      = "the patient is not eligible for this program"
	ErrClientProgramNotFound         = "the selected program does not exist"
	ErrClientWizardNotFound          = "the enrollment session has expired, please start again"
	ErrClientWizardWrongStage        = "this step is not available right now"
	ErrClientSubmissionInProgress    = "submission already in progress"
	ErrClientEnrollmentNotFound      = "enrollment not found"
	ErrClientEnrollmentAlreadyClosed = "this enrollment is already completed"
	ErrClientEMRUnavailable          = "the medical record system did not accept the request"
)

// Error messages for developers
const (
	ErrDevInvalidInput          = "invalid input"
	ErrDevCannotParseJSON       = "cannot parse JSON into struct or other data types"
	ErrDevCannotMarshalJSON     = "cannot convert struct or other data types to JSON"
	ErrDevCannotParseTime       = "cannot parse time into the given format"
	ErrDevBuildRequest          = "encountering error while building request DTO"
	ErrDevUnauthorized          = "unauthorized access"
	ErrDevCreateHTTPRequest     = "failed to create HTTP request"
	ErrDevSendHTTPRequest       = "failed to send HTTP request"
	ErrDevValidationFailed      = "validation failed"
	ErrDevInvalidRequestPayload = "invalid request payload"

	// EMR client messages
	ErrDevEMRGetResource         = "failed to get %s from the EMR"
	ErrDevEMRCreateResource      = "failed to create %s on the EMR"
	ErrDevEMRUpdateResource      = "failed to update %s on the EMR"
	ErrDevEMRDecodeResponse      = "failed to decode %s response from the EMR"
	ErrDevEMRFollowNextLink      = "failed to follow pagination link for %s"
	ErrDevEMRDocumentNotFound    = "ETL document %s not found"
	ErrDevEMRWriteThrottleWait   = "outbound EMR write throttle interrupted"
	ErrDevBucketGetObject        = "failed to get object %s from the ETL bucket"
	ErrDevUnknownConfigSource    = "unknown config source %q"
	ErrDevEMRResponseNotOK       = "EMR responded with status %d"
	ErrDevEMRErrorEnvelopeNoBody = "EMR error response carried no message"

	// Eligibility / wizard messages
	ErrDevMissingAnswer        = "required enrollment question %q is unanswered"
	ErrDevNotEligible          = "answer to %q makes the patient ineligible"
	ErrDevIncompatibleProgram  = "program %s is blocked by active enrollments: %s"
	ErrDevProgramEnrolled      = "program %s already has an active enrollment"
	ErrDevProgramNotFound      = "program %s is not in the catalog"
	ErrDevWizardNotFound       = "wizard session not found or expired"
	ErrDevWizardWrongStage     = "operation not valid in stage %q"
	ErrDevWizardLockHeld       = "commit lock already held for wizard %s"
	ErrDevEnrollmentDate       = "dateEnrolled is empty"
	ErrDevEnrollmentNotActive  = "enrollment %s already carries dateCompleted"
	ErrDevVisitTypeNotInScope  = "visit type %s not in the allowed set for the location"
	ErrDevStartVisitMissing    = "start-visit field %s is empty"
	ErrDevProgramConfigMissing = "no program config entry for %s"

	// Authentication messages
	ErrDevAuthSigningMethod         = "unexpected signing method"
	ErrDevAuthTokenInvalidOrExpired = "invalid or expired token"
	ErrDevAuthTokenMissing          = "token missing"
	ErrDevAuthInvalidSession        = "invalid session"
	ErrDevAuthPermissionDenied      = "permission denied"
	ErrDevMissingRequestID          = "request id missing from context"
	ErrDevMissingSessionData        = "session data missing from context"

	// Database messages
	ErrDevDBFailedToInsertDocument   = "failed to insert document into database"
	ErrDevDBFailedToFindDocument     = "failed when do find document on database"
	ErrDevDBFailedToIterateDocuments = "failed when iterating documents from database"
	ErrDevDBConnectionFailed         = "failed to connect to database"

	// Redis messages
	ErrDevRedisSetData    = "failed to SET data into redis"
	ErrDevRedisGetData    = "failed to GET data from redis"
	ErrDevRedisGetNoData  = "failed to GET data from redis, there is no data associated with key %s"
	ErrDevRedisDeleteData = "failed to DELETE data from redis"
	ErrDevRedisScanKeys   = "failed to SCAN keys from redis"
	ErrDevRedisUnlock     = "failed to release redis lock"

	// Queue messages
	ErrDevQueuePublish      = "failed to publish message to queue %s"
	ErrDevQueueConfirm      = "broker did not confirm publish to queue %s"
	ErrDevQueueConsume      = "failed to consume from queue %s"
	ErrDevQueueDeclare      = "failed to declare queue %s"
	ErrDevEventHandleFailed = "failed to handle careflow event"

	// Server messages
	ErrDevServerInternalError    = "internal server error"
	ErrDevServerBadRequest       = "bad request"
	ErrDevServerNotFound         = "resource not found"
	ErrDevServerDeadlineExceeded = "deadline exceeded"
	ErrDevServerParseSessionData = "failed to parse session data"

	// Miscellaneous messages
	ErrDevActionNotAllowed     = "action not allowed"
	ErrDevServiceUnavailable   = "service temporarily unavailable"
	ErrDevRequestLimitExceeded = "request limit exceeded"
)

const (
	ErrFileLocationUnknown = "file location unknown"
	ErrLineLocationUnknown = "line location unknown"
	ErrFunctionNameUnknown = "function name unknown"
)

const (
	ErrEnvParsing     = "Error parsing %s: %v, will use default value"
	ErrEnvKeyNotExist = "Error getting env key: %s, will use default value"
)
