package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingDataKey           = "data"
	LoggingSessionDataKey    = "session_data"
	LoggingQueryParamsKey    = "query_params"
	LoggingResponseKey       = "response"
	LoggingRequestKey        = "request"
	LoggingResponseLengthKey = "response_length"

	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"

	LoggingPatientUUIDKey    = "patient_uuid"
	LoggingProgramUUIDKey    = "program_uuid"
	LoggingEnrollmentUUIDKey = "enrollment_uuid"
	LoggingVisitUUIDKey      = "visit_uuid"
	LoggingVisitTypeUUIDKey  = "visit_type_uuid"
	LoggingLocationUUIDKey   = "location_uuid"
	LoggingWizardIDKey       = "wizard_id"
	LoggingEventTypeKey      = "event_type"
	LoggingEventIDKey        = "event_id"
	LoggingCacheKeyKey       = "cache_key"
	LoggingEMRURLKey         = "emr_url"
	LoggingQueueKey          = "queue"
	LoggingAttemptKey        = "attempt"
	LoggingExpressionKey     = "expression"

	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
)
