package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_SESSION_DATA_KEY         ContextKey = "session_data"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX = "CRFL_SVC_"
)

const (
	CareflowRoleClinician   = "Clinician"
	CareflowRoleNurse       = "Nurse"
	CareflowRoleCoordinator = "Program Coordinator"
	CareflowRoleSuperadmin  = "Superadmin"
)

const (
	AppPaginationUrlFormat = "%s?page=%d&page_size=%d"
)

// Wizard stages, in flow order.
const (
	WizardStageSelect  = "select"
	WizardStageDetails = "details"
	WizardStageReview  = "review"
	WizardStageSuccess = "success"
)

// Audit event types published to the careflow queue.
const (
	EventProgramEnrolled    = "program.enrolled"
	EventProgramDisenrolled = "program.disenrolled"
	EventVisitStarted       = "visit.started"
)

// DeadLetterQueueSuffix is appended to the configured queue name to
// derive its dead-letter companion.
const DeadLetterQueueSuffix = "-dlq"

const (
	MongoCollectionProgramEvents = "program_events"

	AuditWorkerLockKey = "careflow:lock:audit-worker"
)

// ETL document source selectors.
const (
	ConfigSourceREST   = "rest"
	ConfigSourceBucket = "bucket"
)
