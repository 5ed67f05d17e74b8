package configdocs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	restDocumentClientInstance contracts.ConfigDocumentClient
	onceRESTDocumentClient     sync.Once
)

type restDocumentClient struct {
	BaseUrl    string
	HTTPClient *http.Client
	Log        *zap.Logger
}

// NewRESTDocumentClient reads the ETL documents from the document
// endpoint served alongside the EMR.
func NewRESTDocumentClient(baseUrl string, httpClient *http.Client, logger *zap.Logger) contracts.ConfigDocumentClient {
	onceRESTDocumentClient.Do(func() {
		client := &restDocumentClient{
			BaseUrl:    fmt.Sprintf("%s/%s", baseUrl, constvars.ResourceETLDocument),
			HTTPClient: httpClient,
			Log:        logger,
		}
		restDocumentClientInstance = client
	})
	return restDocumentClientInstance
}

// GetPatientProgramConfig returns the per-patient rules document. A
// missing document is not an error: rules are advisory and absence
// means no restrictions.
func (c *restDocumentClient) GetPatientProgramConfig(ctx context.Context, patientUUID string) (emr_dto.PatientProgramConfig, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("restDocumentClient.GetPatientProgramConfig called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
	)

	url := fmt.Sprintf("%s/%s/%s", c.BaseUrl, constvars.ETLDocPatientProgramConfig, patientUUID)
	body, found, err := c.fetchDocument(ctx, url, constvars.ETLDocPatientProgramConfig)
	if err != nil {
		return nil, err
	}
	if !found {
		c.Log.Warn("restDocumentClient.GetPatientProgramConfig document missing, treating as permissive",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		)
		return emr_dto.PatientProgramConfig{}, nil
	}

	config := emr_dto.PatientProgramConfig{}
	if err := json.Unmarshal(body, &config); err != nil {
		c.Log.Error("restDocumentClient.GetPatientProgramConfig error decoding document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ETLDocPatientProgramConfig)
	}
	return config, nil
}

// GetVisitTypeEligibility returns the document scoped to the exact
// (patient, program, enrollment, location) tuple. A missing document
// yields an empty allowed set: nothing is startable until the ETL
// publishes one.
func (c *restDocumentClient) GetVisitTypeEligibility(ctx context.Context, patientUUID, programUUID, enrollmentUUID, locationUUID string) (*emr_dto.VisitTypeEligibility, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("restDocumentClient.GetVisitTypeEligibility called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		zap.String(constvars.LoggingProgramUUIDKey, programUUID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
		zap.String(constvars.LoggingLocationUUIDKey, locationUUID),
	)

	url := fmt.Sprintf("%s/%s/%s/%s/%s/%s",
		c.BaseUrl, constvars.ETLDocVisitTypeEligibility,
		patientUUID, programUUID, enrollmentUUID, locationUUID,
	)
	body, found, err := c.fetchDocument(ctx, url, constvars.ETLDocVisitTypeEligibility)
	if err != nil {
		return nil, err
	}
	if !found {
		c.Log.Warn("restDocumentClient.GetVisitTypeEligibility document missing, no visit types allowed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
		)
		return &emr_dto.VisitTypeEligibility{}, nil
	}

	doc := new(emr_dto.VisitTypeEligibility)
	if err := json.Unmarshal(body, doc); err != nil {
		c.Log.Error("restDocumentClient.GetVisitTypeEligibility error decoding document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ETLDocVisitTypeEligibility)
	}
	return doc, nil
}

// fetchDocument GETs one document. found is false on 404.
func (c *restDocumentClient) fetchDocument(ctx context.Context, url, documentName string) (body []byte, found bool, err error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("restDocumentClient.fetchDocument error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEMRURLKey, url),
			zap.Error(err),
		)
		return nil, false, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("restDocumentClient.fetchDocument error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEMRURLKey, url),
			zap.Error(err),
		)
		return nil, false, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == constvars.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, false, exceptions.ErrEMRGetResource(readErr, documentName)
		}
		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("restDocumentClient.fetchDocument EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEMRURLKey, url),
			zap.Error(emrErr),
		)
		return nil, false, exceptions.ErrEMRGetResource(emrErr, documentName)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, exceptions.ErrEMRGetResource(err, documentName)
	}
	return body, true, nil
}
