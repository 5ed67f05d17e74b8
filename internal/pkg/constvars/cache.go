package constvars

// Redis key formats. Read keys embed every request parameter so a changed
// parameter is a different key, and write paths can invalidate per patient.
const (
	CacheKeyProgramCatalog = "careflow:programs"
	CacheKeyFormCatalog    = "careflow:forms"
	CacheKeyLocations      = "careflow:locations"

	CacheKeyPatientProgramConfigFormat = "careflow:programcfg:%s"
	CacheKeyPatientEnrollmentsFormat   = "careflow:enrollments:%s"
	CacheKeyPatientVisitsFormat        = "careflow:visits:%s"

	// patient, program, enrollment, location
	CacheKeyVisitTypeEligibilityFormat = "careflow:visittypes:%s:%s:%s:%s"

	CacheKeyPatientScanFormat = "careflow:*%s*"
)

const (
	WizardSessionKeyFormat = "careflow:wizard:%s"
	WizardLockKeyFormat    = "careflow:lock:wizard:%s"

	ClinicianSessionKeyFormat = "careflow:session:%s"
)
