package visits

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
	visitEMRClientInstance contracts.VisitEMRClient
	onceVisitEMRClient     sync.Once
)

type visitEMRClient struct {
	BaseUrl       string
	HTTPClient    *http.Client
	WriteThrottle *throttle.WriteThrottle
	Log           *zap.Logger
}

func NewVisitEMRClient(baseUrl string, httpClient *http.Client, writeThrottle *throttle.WriteThrottle, logger *zap.Logger) contracts.VisitEMRClient {
	onceVisitEMRClient.Do(func() {
		client := &visitEMRClient{
			BaseUrl:       fmt.Sprintf("%s/%s", baseUrl, constvars.ResourceVisit),
			HTTPClient:    httpClient,
			WriteThrottle: writeThrottle,
			Log:           logger,
		}
		visitEMRClientInstance = client
	})
	return visitEMRClientInstance
}

func (c *visitEMRClient) ListVisitsByPatient(ctx context.Context, patientUUID string) ([]emr_dto.Visit, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("visitEMRClient.ListVisitsByPatient called",
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
		c.Log.Error("visitEMRClient.ListVisitsByPatient error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("visitEMRClient.ListVisitsByPatient error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("visitEMRClient.ListVisitsByPatient error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRGetResource(readErr, constvars.ResourceVisit)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("visitEMRClient.ListVisitsByPatient EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(emrErr),
		)
		return nil, exceptions.ErrEMRGetResource(emrErr, constvars.ResourceVisit)
	}

	listResponse := new(emr_dto.VisitListResponse)
	err = json.NewDecoder(resp.Body).Decode(listResponse)
	if err != nil {
		c.Log.Error("visitEMRClient.ListVisitsByPatient error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceVisit)
	}

	c.Log.Info("visitEMRClient.ListVisitsByPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("visit_count", len(listResponse.Results)),
	)
	return listResponse.Results, nil
}

func (c *visitEMRClient) CreateVisit(ctx context.Context, request *emr_dto.CreateVisitRequest) (*emr_dto.Visit, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("visitEMRClient.CreateVisit called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPatientUUIDKey, request.Patient),
		zap.String(constvars.LoggingVisitTypeUUIDKey, request.VisitType),
	)

	if err := c.WriteThrottle.Wait(ctx); err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}

	requestJSON, err := json.Marshal(request)
	if err != nil {
		c.Log.Error("visitEMRClient.CreateVisit error marshaling JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, c.BaseUrl, bytes.NewBuffer(requestJSON))
	if err != nil {
		c.Log.Error("visitEMRClient.CreateVisit error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("visitEMRClient.CreateVisit error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusCreated && resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("visitEMRClient.CreateVisit error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRCreateResource(readErr, constvars.ResourceVisit)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		c.Log.Error("visitEMRClient.CreateVisit rejected by EMR",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("emr_message", envelope.Message()),
		)
		return nil, exceptions.ErrEMRRejected(constvars.ResourceVisit, envelope.Message())
	}

	visit := new(emr_dto.Visit)
	err = json.NewDecoder(resp.Body).Decode(visit)
	if err != nil {
		c.Log.Error("visitEMRClient.CreateVisit error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceVisit)
	}

	c.Log.Info("visitEMRClient.CreateVisit succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVisitUUIDKey, visit.UUID),
	)
	return visit, nil
}
