package locations

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"careflow-service/internal/pkg/emr_dto"
	"careflow-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(serverURL string) *locationEMRClient {
	return &locationEMRClient{
		BaseUrl:    fmt.Sprintf("%s/location", serverURL),
		PageLimit:  2,
		HTTPClient: &http.Client{},
		Log:        zap.NewNop(),
	}
}

func writePage(w http.ResponseWriter, page emr_dto.LocationListResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

func TestListLocationsPagination(t *testing.T) {
	ctx := context.Background()

	t.Run("follows next links verbatim until exhausted", func(t *testing.T) {
		var serverURL string
		var seenURIs []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenURIs = append(seenURIs, r.URL.RequestURI())
			switch r.URL.Query().Get("startIndex") {
			case "":
				writePage(w, emr_dto.LocationListResponse{
					Results: []emr_dto.Location{
						{UUID: "loc-1", Name: "Main Clinic"},
						{UUID: "loc-2", Name: "Satellite Clinic"},
					},
					Links: []emr_dto.Link{
						{Rel: "self", URI: serverURL + "/location?limit=2"},
						{Rel: "next", URI: serverURL + "/location?limit=2&startIndex=2"},
					},
				})
			case "2":
				writePage(w, emr_dto.LocationListResponse{
					Results: []emr_dto.Location{
						{UUID: "loc-3", Name: "North Annex"},
						{UUID: "loc-4", Name: "South Annex"},
					},
					Links: []emr_dto.Link{
						{Rel: "next", URI: serverURL + "/location?limit=2&startIndex=4"},
					},
				})
			case "4":
				writePage(w, emr_dto.LocationListResponse{
					Results: []emr_dto.Location{
						{UUID: "loc-5", Name: "Mobile Unit"},
					},
				})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()
		serverURL = server.URL

		client := newTestClient(server.URL)
		locations, err := client.ListLocations(ctx)
		require.NoError(t, err)

		require.Len(t, locations, 5)
		assert.Equal(t, "loc-1", locations[0].UUID)
		assert.Equal(t, "loc-5", locations[4].UUID)
		assert.Equal(t, []string{
			"/location?limit=2",
			"/location?limit=2&startIndex=2",
			"/location?limit=2&startIndex=4",
		}, seenURIs)
	})

	t.Run("single page without links stops after one request", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			writePage(w, emr_dto.LocationListResponse{
				Results: []emr_dto.Location{{UUID: "loc-1", Name: "Main Clinic"}},
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		locations, err := client.ListLocations(ctx)
		require.NoError(t, err)
		assert.Len(t, locations, 1)
		assert.Equal(t, 1, requests)
	})

	t.Run("refuses a next chain that never terminates", func(t *testing.T) {
		var serverURL string
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			writePage(w, emr_dto.LocationListResponse{
				Results: []emr_dto.Location{{UUID: "loc-1", Name: "Main Clinic"}},
				Links:   []emr_dto.Link{{Rel: "next", URI: serverURL + "/location?limit=2"}},
			})
		}))
		defer server.Close()
		serverURL = server.URL

		client := newTestClient(server.URL)
		_, err := client.ListLocations(ctx)
		require.Error(t, err)

		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindRemoteFailure, customErr.Kind)
		assert.Equal(t, maxPages, requests)
	})

	t.Run("surfaces a failed page as a remote failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"catalog unavailable"}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.ListLocations(ctx)
		require.Error(t, err)

		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, exceptions.KindRemoteFailure, customErr.Kind)
	})
}
