package configdocs

import (
	"context"
	"fmt"
	"io"
	"sync"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const bucketObjectNoSuchKey = "NoSuchKey"

var (
	bucketDocumentClientInstance contracts.ConfigDocumentClient
	onceBucketDocumentClient     sync.Once
)

type bucketDocumentClient struct {
	MinioClient *minio.Client
	BucketName  string
	Log         *zap.Logger
}

// NewBucketDocumentClient reads the ETL documents straight from the
// object store the ETL pipeline publishes into. Deployments choose this
// or the REST source with ETL_CONFIG_SOURCE.
func NewBucketDocumentClient(minioClient *minio.Client, bucketName string, logger *zap.Logger) contracts.ConfigDocumentClient {
	onceBucketDocumentClient.Do(func() {
		client := &bucketDocumentClient{
			MinioClient: minioClient,
			BucketName:  bucketName,
			Log:         logger,
		}
		bucketDocumentClientInstance = client
	})
	return bucketDocumentClientInstance
}

func (c *bucketDocumentClient) GetPatientProgramConfig(ctx context.Context, patientUUID string) (emr_dto.PatientProgramConfig, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("bucketDocumentClient.GetPatientProgramConfig called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
	)

	objectName := fmt.Sprintf("%s/%s.json", constvars.ETLDocPatientProgramConfig, patientUUID)
	body, found, err := c.fetchObject(ctx, objectName)
	if err != nil {
		return nil, err
	}
	if !found {
		c.Log.Warn("bucketDocumentClient.GetPatientProgramConfig object missing, treating as permissive",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		)
		return emr_dto.PatientProgramConfig{}, nil
	}

	config := emr_dto.PatientProgramConfig{}
	if err := json.Unmarshal(body, &config); err != nil {
		c.Log.Error("bucketDocumentClient.GetPatientProgramConfig error decoding object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ETLDocPatientProgramConfig)
	}
	return config, nil
}

func (c *bucketDocumentClient) GetVisitTypeEligibility(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) (*emr_dto.VisitTypeEligibility, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("bucketDocumentClient.GetVisitTypeEligibility called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.String(constvars.LoggingProgramUUIDKey, programUUID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
		zap.String(constvars.LoggingLocationUUIDKey, locationUUID),
	)

	objectName := fmt.Sprintf("%s/%s/%s/%s/%s.json",
		constvars.ETLDocVisitTypeEligibility,
		patientUUID, programUUID, enrollmentUUID, locationUUID,
	)
	body, found, err := c.fetchObject(ctx, objectName)
	if err != nil {
		return nil, err
	}
	if !found {
		c.Log.Warn("bucketDocumentClient.GetVisitTypeEligibility object missing, no visit types allowed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		)
		return &emr_dto.VisitTypeEligibility{}, nil
	}

	doc := new(emr_dto.VisitTypeEligibility)
	if err := json.Unmarshal(body, doc); err != nil {
		c.Log.Error("bucketDocumentClient.GetVisitTypeEligibility error decoding object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ETLDocVisitTypeEligibility)
	}
	return doc, nil
}

// fetchObject reads one object fully. found is false when the key does
// not exist; object-store read errors only surface on Read, not on
// GetObject, so both calls are checked.
func (c *bucketDocumentClient) fetchObject(ctx context.Context, objectName string) (body []byte, found bool, err error) {
	object, err := c.MinioClient.GetObject(ctx, c.BucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, exceptions.ErrBucketGetObject(err, objectName)
	}
	defer object.Close()

	body, err = io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == bucketObjectNoSuchKey {
			return nil, false, nil
		}
		return nil, false, exceptions.ErrBucketGetObject(err, objectName)
	}
	return body, true, nil
}
