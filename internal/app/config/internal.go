package config

type InternalConfig struct {
	App    App
	EMR    EMR
	ETL    ETL
	JWT    JWT
	Cache  Cache
	Wizard Wizard
	Queue  Queue
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	Timezone                   string
	EndpointPrefix             string
	MaxRequests                int
	MaxTimeRequestsPerSeconds  int
	ShutdownTimeoutInSeconds   int
	RequestBodyLimitInMegabyte int
}

type EMR struct {
	BaseUrl                 string
	RequestTimeoutInSeconds int
	WriteRatePerSecond      float64
	WriteBurst              int
	LocationPageLimit       int
}

// ETL configures where the rules documents come from. "rest" reads them
// from the document endpoint next to the EMR, "bucket" from the ETL
// object store.
type ETL struct {
	Source     string
	BaseUrl    string
	BucketName string
}

type JWT struct {
	Secret        string
	ExpTimeInHour int
}

type Cache struct {
	CatalogTTLInMinutes int
	PatientTTLInSeconds int
}

type Wizard struct {
	SessionTTLInMinutes    int
	CommitLockTTLInSeconds int
}

type Queue struct {
	EventQueue              string
	WorkerIntervalInSeconds int
	WorkerBatchSize         int
	MaxDeliveryAttempts     int
}
