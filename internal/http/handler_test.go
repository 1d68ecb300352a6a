package http

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/tidegrid/internal/adapter/interp"
	"go.ngs.io/tidegrid/internal/adapter/store"
	"go.ngs.io/tidegrid/internal/domain"
	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/inference"
	"go.ngs.io/tidegrid/internal/model"
	"go.ngs.io/tidegrid/internal/usecase"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lon, err := interp.NewRegularAxis(130, 140, 1, 1e-9, false)
	require.NoError(t, err)
	lat, err := interp.NewRegularAxis(30, 40, 1, 1e-9, false)
	require.NoError(t, err)
	tm := model.New[float32](lon, lat, false)
	g := model.NewGrid[float32](lat.Size(), lon.Size())
	for j := 0; j < lat.Size(); j++ {
		for i := 0; i < lon.Size(); i++ {
			if i == lon.Size()-1 {
				g.Set(j, i, complex(math.NaN(), math.NaN()))
				continue
			}
			g.Set(j, i, complex(0.5, 0.5))
		}
	}
	require.NoError(t, tm.AddConstituent(domain.M2, g))

	uc, err := usecase.NewPredictionUseCase(store.NewModel("test", "memory", tm),
		engine.Settings{Interpolation: inference.None})
	require.NoError(t, err)
	return SetupRouter(uc, RouterConfig{ServiceName: "tidegrid-test"})
}

func do(t *testing.T, router *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetPredictions(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodGet,
		"/v1/tides/predictions?lat=35.5&lon=135.25&start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z&interval=30m", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp usecase.PredictionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp.Model)
	assert.Len(t, resp.Predictions, 49)
	assert.Equal(t, "interpolated", resp.Quality)
	assert.NotEmpty(t, resp.Extrema.Highs)
}

func TestGetPredictions_Errors(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"missing location", "start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z", http.StatusBadRequest},
		{"bad latitude", "lat=x&lon=135&start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z", http.StatusBadRequest},
		{"missing start", "lat=35&lon=135&end=2024-01-02T00:00:00Z", http.StatusBadRequest},
		{"bad interval", "lat=35&lon=135&start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z&interval=soon", http.StatusBadRequest},
		{"out of grid", "lat=10&lon=135&start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z", http.StatusBadRequest},
		{"no data", "lat=35&lon=140&start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodGet, "/v1/tides/predictions?"+tt.query, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestPostEvaluate(t *testing.T) {
	router := newTestRouter(t)
	body := []byte(`{"lon":[135.5,140],"lat":[35,35],"time":["2024-01-01T00:00:00Z","2024-01-01T00:00:00Z"]}`)
	w := do(t, router, http.MethodPost, "/v1/tides/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OceanM  []*float64 `json:"ocean_m"`
		Quality []int      `json:"quality"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{4, 0}, resp.Quality)
	assert.NotNil(t, resp.OceanM[0])
	assert.Nil(t, resp.OceanM[1])

	w = do(t, router, http.MethodPost, "/v1/tides/evaluate", []byte(`{"lon":[1]`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConstituentsAndModel(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/v1/constituents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count        int                       `json:"count"`
		Constituents []ConstituentListResponse `json:"constituents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, domain.NumConstituents, list.Count)

	w = do(t, router, http.MethodGet, "/v1/model", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info usecase.ModelInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "float32", info.Precision)
	assert.Equal(t, []string{"M2"}, info.Constituents)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tidegrid_http_requests_total")
}
