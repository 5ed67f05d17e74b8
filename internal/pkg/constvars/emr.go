package constvars

// Legacy EMR REST resource path segments.
const (
	ResourceProgram           = "program"
	ResourceProgramEnrollment = "programenrollment"
	ResourceVisit             = "visit"
	ResourceLocation          = "location"
	ResourceForm              = "form"
	ResourceETLDocument       = "etl/document"
)

// Representation query parameter understood by the legacy EMR.
const (
	EMRQueryParamRepresentation = "v"
	EMRRepresentationFull       = "full"
)

const (
	EMRQueryParamPatient = "patient"
	EMRQueryParamLimit   = "limit"
)

// ETL document names served alongside the EMR.
const (
	ETLDocPatientProgramConfig = "patient-program-config"
	ETLDocVisitTypeEligibility = "visit-type-eligibility"
)

// Pagination link relations in EMR list responses.
const (
	EMRLinkRelNext = "next"
	EMRLinkRelPrev = "prev"
)

const (
	EMRDefaultPageLimit = 50
)
