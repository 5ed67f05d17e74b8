package locations

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

// maxPages bounds the next-link walk so a server that links a page to
// itself cannot spin the client forever.
const maxPages = 100

var (
	locationEMRClientInstance contracts.LocationEMRClient
	onceLocationEMRClient     sync.Once
)

type locationEMRClient struct {
	BaseUrl    string
	PageLimit  int
	HTTPClient *http.Client
	Log        *zap.Logger
}

func NewLocationEMRClient(baseUrl string, pageLimit int, httpClient *http.Client, logger *zap.Logger) contracts.LocationEMRClient {
	onceLocationEMRClient.Do(func() {
		if pageLimit <= 0 {
			pageLimit = constvars.EMRDefaultPageLimit
		}
		client := &locationEMRClient{
			BaseUrl:    fmt.Sprintf("%s/%s", baseUrl, constvars.ResourceLocation),
			PageLimit:  pageLimit,
			HTTPClient: httpClient,
			Log:        logger,
		}
		locationEMRClientInstance = client
	})
	return locationEMRClientInstance
}

// ListLocations walks the paginated catalog. Each page's rel="next"
// reference is followed verbatim, exactly as the server sent it, until
// a page carries no next link.
func (c *locationEMRClient) ListLocations(ctx context.Context) ([]emr_dto.Location, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("locationEMRClient.ListLocations called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	url := fmt.Sprintf("%s?%s=%d", c.BaseUrl, constvars.EMRQueryParamLimit, c.PageLimit)

	var locations []emr_dto.Location
	for page := 0; url != ""; page++ {
		if page >= maxPages {
			err := fmt.Errorf("next links did not terminate after %d pages", maxPages)
			c.Log.Error("locationEMRClient.ListLocations pagination runaway",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, exceptions.ErrEMRFollowNextLink(err, constvars.ResourceLocation)
		}

		pageResponse, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, err
		}
		locations = append(locations, pageResponse.Results...)
		url = pageResponse.NextLink()
	}

	c.Log.Info("locationEMRClient.ListLocations succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("location_count", len(locations)),
	)
	return locations, nil
}

func (c *locationEMRClient) fetchPage(ctx context.Context, url string) (*emr_dto.LocationListResponse, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	req, err := http.NewRequestWithContext(ctx, constvars.MethodGet, url, nil)
	if err != nil {
		c.Log.Error("locationEMRClient.fetchPage error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEMRURLKey, url),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Log.Error("locationEMRClient.fetchPage error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEMRURLKey, url),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			c.Log.Error("locationEMRClient.fetchPage error reading response body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(readErr),
			)
			return nil, exceptions.ErrEMRGetResource(readErr, constvars.ResourceLocation)
		}

		var envelope emr_dto.ErrorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		emrErr := fmt.Errorf("status %d: %s", resp.StatusCode, envelope.Message())
		c.Log.Error("locationEMRClient.fetchPage EMR error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEMRURLKey, url),
			zap.Error(emrErr),
		)
		return nil, exceptions.ErrEMRGetResource(emrErr, constvars.ResourceLocation)
	}

	pageResponse := new(emr_dto.LocationListResponse)
	err = json.NewDecoder(resp.Body).Decode(pageResponse)
	if err != nil {
		c.Log.Error("locationEMRClient.fetchPage error decoding response",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrEMRDecodeResponse(err, constvars.ResourceLocation)
	}
	return pageResponse, nil
}
