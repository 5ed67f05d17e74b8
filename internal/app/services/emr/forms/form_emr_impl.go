package forms

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
	formEMRClientInstance contracts.FormEMRClient
	onceFormEMRClient     sync.Once
)

type formEMRClient struct {
	BaseUrl    string
	HTTPClient *http.Client
	Log        *zap.Logger
}

func NewFormEMRClient(baseUrl string, httpClient *http.Client, logger *zap.Logger) contracts.FormEMRClient {
	onceFormEMRClient.Do(func() {
		client := &formEMRClient{
			BaseUrl:    fmt.Sprintf("%s/%s", baseUrl, constvars.ResourceForm),
			HTTPClient: httpClient,
			Log:        logger,
		}
		formEMRClientInstance = client
	})
	return formEMRClientInstance
}

func (c *formEMRClient) ListForms(ctx context.Context) ([]emr_dto.Form, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("formEMRClient.ListForms called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	url := fmt.Sprintf("%s?%s=%s", c.BaseUrl, constvars.EMRQueryParamRepresentation, constvars.EMRRepresentationFull)
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("formEMRClient.ListForms error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("formEMRClient.ListForms error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("formEMRClient.ListForms error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRGetResource(readErr, constvars.ResourceForm)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("formEMRClient.ListForms EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(emrErr),
		)
		return nil, exceptions.ErrEMRGetResource(emrErr, constvars.ResourceForm)
	}

	listResponse := new(emr_dto.FormListResponse)
	err = json.NewDecoder(resp.Body).Decode(listResponse)
	if err != nil {
		c.Log.Error("formEMRClient.ListForms error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceForm)
	}

	c.Log.Info("formEMRClient.ListForms succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("form_count", len(listResponse.Results)),
	)
	return listResponse.Results, nil
}
