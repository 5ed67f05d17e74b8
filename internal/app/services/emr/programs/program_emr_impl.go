package programs

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
	programEMRClientInstance contracts.ProgramEMRClient
	onceProgramEMRClient     sync.Once
)

type programEMRClient struct {
	BaseUrl    string
	HTTPClient *http.Client
	Log        *zap.Logger
}

func NewProgramEMRClient(baseUrl string, httpClient *http.Client, logger *zap.Logger) contracts.ProgramEMRClient {
	onceProgramEMRClient.Do(func() {
		client := &programEMRClient{
			BaseUrl:    fmt.Sprintf("%s/%s", baseUrl, constvars.ResourceProgram),
			HTTPClient: httpClient,
			Log:        logger,
		}
		programEMRClientInstance = client
	})
	return programEMRClientInstance
}

func (c *programEMRClient) ListPrograms(ctx context.Context) ([]emr_dto.Program, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("programEMRClient.ListPrograms called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	url := fmt.Sprintf("%s?%s=%s", c.BaseUrl, constvars.EMRQueryParamRepresentation, constvars.EMRRepresentationFull)
	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("programEMRClient.ListPrograms error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("programEMRClient.ListPrograms error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("programEMRClient.ListPrograms error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRGetResource(readErr, constvars.ResourceProgram)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("programEMRClient.ListPrograms EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(emrErr),
		)
		return nil, exceptions.ErrEMRGetResource(emrErr, constvars.ResourceProgram)
	}

	listResponse := new(emr_dto.ProgramListResponse)
	err = json.NewDecoder(resp.Body).Decode(listResponse)
	if err != nil {
		c.Log.Error("programEMRClient.ListPrograms error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceProgram)
	}

	c.Log.Info("programEMRClient.ListPrograms succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("program_count", len(listResponse.Results)),
	)
	return listResponse.Results, nil
}
