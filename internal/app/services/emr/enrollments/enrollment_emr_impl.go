package enrollments

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"careflow-service/internal/app/contracts"
	"careflow-service/internal/app/services/shared/throttle"
	"careflow-service/internal/pkg/constvars"
	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	enrollmentEMRClientInstance contracts.EnrollmentEMRClient
	onceEnrollmentEMRClient     sync.Once
)

type enrollmentEMRClient struct {
	BaseUrl       string
	HTTPClient    *http.Client
	WriteThrottle *throttle.WriteThrottle
	Log           *zap.Logger
}

func NewEnrollmentEMRClient(baseUrl string, httpClient *http.Client, writeThrottle *throttle.WriteThrottle, logger *zap.Logger) contracts.EnrollmentEMRClient {
	onceEnrollmentEMRClient.Do(func() {
		client := &enrollmentEMRClient{
			BaseUrl:       fmt.Sprintf("%s/%s", baseUrl, constvars.ResourceProgramEnrollment),
			HTTPClient:    httpClient,
			WriteThrottle: writeThrottle,
			Log:           logger,
		}
		enrollmentEMRClientInstance = client
	})
	return enrollmentEMRClientInstance
}

func (c *enrollmentEMRClient) ListEnrollmentsByPatient(ctx context.Context, patientUUID string) ([]emr_dto.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("enrollmentEMRClient.ListEnrollmentsByPatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, patientUUID),
	)

	url := fmt.Sprintf("%s?%s=%s&%s=%s",
		c.BaseUrl,
		constvars.EMRQueryParamPatient, patientUUID,
		constvars.EMRQueryParamRepresentation, constvars.EMRRepresentationFull,
	)
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.ListEnrollmentsByPatient error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.ListEnrollmentsByPatient error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("enrollmentEMRClient.ListEnrollmentsByPatient error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRGetResource(readErr, constvars.ResourceProgramEnrollment)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("enrollmentEMRClient.ListEnrollmentsByPatient EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(emrErr),
		)
		return nil, exceptions.ErrEMRGetResource(emrErr, constvars.ResourceProgramEnrollment)
	}

	listResponse := new(emr_dto.EnrollmentListResponse)
	err = json.NewDecoder(resp.Body).Decode(listResponse)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.ListEnrollmentsByPatient error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceProgramEnrollment)
	}

	c.Log.Info("enrollmentEMRClient.ListEnrollmentsByPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("enrollment_count", len(listResponse.Results)),
	)
	return listResponse.Results, nil
}

func (c *enrollmentEMRClient) GetEnrollment(ctx context.Context, enrollmentUUID string) (*emr_dto.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("enrollmentEMRClient.GetEnrollment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
	)

	url := fmt.Sprintf("%s/%s?%s=%s",
		c.BaseUrl, enrollmentUUID,
		constvars.EMRQueryParamRepresentation, constvars.EMRRepresentationFull,
	)
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.GetEnrollment error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.GetEnrollment error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == constvars.StatusNotFound {
		c.Log.Warn("enrollmentEMRClient.GetEnrollment enrollment not found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
		)
		return nil, exceptions.ErrEnrollmentNotFound(fmt.Errorf("enrollment %s not found", enrollmentUUID))
	}

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("enrollmentEMRClient.GetEnrollment error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRGetResource(readErr, constvars.ResourceProgramEnrollment)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("enrollmentEMRClient.GetEnrollment EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(emrErr),
		)
		return nil, exceptions.ErrEMRGetResource(emrErr, constvars.ResourceProgramEnrollment)
	}

	enrollment := new(emr_dto.Enrollment)
	err = json.NewDecoder(resp.Body).Decode(enrollment)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.GetEnrollment error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceProgramEnrollment)
	}

	c.Log.Info("enrollmentEMRClient.GetEnrollment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollment.UUID),
	)
	return enrollment, nil
}

func (c *enrollmentEMRClient) CreateEnrollment(ctx context.Context, request *emr_dto.CreateEnrollmentRequest) (*emr_dto.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("enrollmentEMRClient.CreateEnrollment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, request.Patient),
		zap.String(constvars.LoggingProgramUUIDKey, request.Program),
	)

	if err := c.WriteThrottle.Wait(ctx); err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}

	requestJSON, err := json.Marshal(request)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CreateEnrollment error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, c.BaseUrl, bytes.NewBuffer(requestJSON))
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CreateEnrollment error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CreateEnrollment error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusCreated && resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("enrollmentEMRClient.CreateEnrollment error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRCreateResource(readErr, constvars.ResourceProgramEnrollment)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		c.Log.Error("enrollmentEMRClient.CreateEnrollment rejected by EMR",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("emr_message", envelope.Message()),
		)
		return nil, exceptions.ErrEMRRejected(constvars.ResourceProgramEnrollment, envelope.Message())
	}

	enrollment := new(emr_dto.Enrollment)
	err = json.NewDecoder(resp.Body).Decode(enrollment)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CreateEnrollment error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceProgramEnrollment)
	}

	c.Log.Info("enrollmentEMRClient.CreateEnrollment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollment.UUID),
	)
	return enrollment, nil
}

func (c *enrollmentEMRClient) CloseEnrollment(ctx context.Context, enrollmentUUID string, request *emr_dto.CloseEnrollmentRequest) (*emr_dto.Enrollment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("enrollmentEMRClient.CloseEnrollment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollmentUUID),
	)

	if err := c.WriteThrottle.Wait(ctx); err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}

	requestJSON, err := json.Marshal(request)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CloseEnrollment error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, fmt.Sprintf("%s/%s", c.BaseUrl, enrollmentUUID), bytes.NewBuffer(requestJSON))
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CloseEnrollment error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CloseEnrollment error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("enrollmentEMRClient.CloseEnrollment error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRUpdateResource(readErr, constvars.ResourceProgramEnrollment)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		c.Log.Error("enrollmentEMRClient.CloseEnrollment rejected by EMR",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("emr_message", envelope.Message()),
		)
		return nil, exceptions.ErrEMRRejected(constvars.ResourceProgramEnrollment, envelope.Message())
	}

	enrollment := new(emr_dto.Enrollment)
	err = json.NewDecoder(resp.Body).Decode(enrollment)
	if err != nil {
		c.Log.Error("enrollmentEMRClient.CloseEnrollment error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceProgramEnrollment)
	}

	c.Log.Info("enrollmentEMRClient.CloseEnrollment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEnrollmentUUIDKey, enrollment.UUID),
	)
	return enrollment, nil
}
