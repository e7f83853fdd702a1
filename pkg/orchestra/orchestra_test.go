package orchestra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/learningorchestra/orchestra/internal/util"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	marker = " please wait"
	status = "/metadata"
)

func testConfig(address string) *client.Config {
	return &client.Config{
		Address: address,
		Routes: map[string]string{
			DatasetService:             "/api/learningOrchestra/v1/dataset/",
			DatasetService + "iris":    "/api/learningOrchestra/v1/dataset/iris",
			ProjectionService:          "/api/learningOrchestra/v1/transform/projection/",
			ProjectionService + "iris": "/api/learningOrchestra/v1/transform/projection/iris",
			DataTypeService:            "/api/learningOrchestra/v1/transform/datatype/",
			DataTypeService + "iris":   "/api/learningOrchestra/v1/transform/datatype/iris",
			HistogramService:           "/api/learningOrchestra/v1/explore/histogram/",
			PCAService:                 "/api/learningOrchestra/v1/explore/pca/",
			TSNEService:                "/api/learningOrchestra/v1/explore/tsne/",
			BuilderService:             "/api/learningOrchestra/v1/builder/",
			ExploreService:             "/api/learningOrchestra/v1/explore/",
			ExploreService + "iris":    "/api/learningOrchestra/v1/explore/iris",
			TransformService:           "/api/learningOrchestra/v1/transform/",
		},
		PendingMarker: marker,
		StatusSuffix:  status,
		PollInterval:  time.Millisecond,
	}
}

func envelope(t *testing.T, data string) *client.Envelope {
	t.Helper()

	var e client.Envelope
	require.NoError(t, json.Unmarshal([]byte(data), &e))
	return &e
}

func newMockOrchestra(t *testing.T) (*Orchestra, *client.MockGateway) {
	t.Helper()

	ctrl := gomock.NewController(t)
	gateway := client.NewMockGateway(ctrl)

	o, err := New(testConfig("http://localhost:5000"), WithClientOptions(
		client.UseGateway(gateway),
		client.UseSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
	))
	require.NoError(t, err)

	return o, gateway
}

func TestSubmissions(t *testing.T) {
	ok := `{"result": "ok"}`

	tcs := []struct {
		name    string
		run     func(context.Context, *Orchestra) (*client.Outcome, error)
		method  string
		service string
		routed  bool
		body    client.Request
		handle  client.Handle
	}{
		{
			name: "DatasetInsert",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Dataset.InsertAsync(ctx, "https://example.com/iris.csv", "iris")
			},
			method:  http.MethodPost,
			service: DatasetService,
			body:    client.Request{"datasetName": "iris", "datasetURI": "https://example.com/iris.csv"},
			handle:  "iris",
		},
		{
			name: "DatasetUpdate",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Dataset.UpdateAsync(ctx, "https://example.com/iris.csv", "iris")
			},
			method:  http.MethodPut,
			service: DatasetService,
			routed:  true,
			body:    client.Request{"datasetName": "iris", "datasetURI": "https://example.com/iris.csv"},
			handle:  "iris",
		},
		{
			name: "ProjectionRemoveAttributesNewDataset",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Projection.RemoveAttributesAsync(ctx, "iris_projection", "iris", []string{"sepal_length"}, true)
			},
			method:  http.MethodPost,
			service: ProjectionService,
			routed:  true,
			body:    client.Request{"datasetName": "iris_projection", "datasetOldName": "iris", "names": []string{"sepal_length"}},
			handle:  "iris_projection",
		},
		{
			name: "ProjectionRemoveAttributesInPlace",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Projection.RemoveAttributesAsync(ctx, "iris", "iris", []string{"sepal_length"}, false)
			},
			method:  http.MethodPatch,
			service: ProjectionService,
			routed:  true,
			body:    client.Request{"datasetName": "iris", "datasetOldName": "iris", "names": []string{"sepal_length"}},
			handle:  "iris",
		},
		{
			name: "ProjectionReduce",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Projection.ReduceAsync(ctx, "iris", 10, false)
			},
			method:  http.MethodPatch,
			service: ProjectionService,
			routed:  true,
			body:    client.Request{"datasetName": "iris", "sizeReduction": 10},
			handle:  "iris",
		},
		{
			name: "ProjectionJoinPair",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Projection.JoinPairAsync(ctx, "iris", "titanic", map[string]string{"b": "y", "a": "x"}, "joined", true)
			},
			method:  http.MethodPost,
			service: ProjectionService,
			body: client.Request{
				"datasetName":            "joined",
				"datasetNameOne":         "iris",
				"datasetNameTwo":         "titanic",
				"attributesAssociations": []*util.KV[string, string]{{Key: "a", Value: "x"}, {Key: "b", Value: "y"}},
				"removeExistingDatasets": true,
			},
			handle: "joined",
		},
		{
			name: "DataTypeUpdate",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.DataType.UpdateTypesAsync(ctx, "iris", map[string]string{"species": "string", "petal_length": "number"})
			},
			method:  http.MethodPatch,
			service: DataTypeService,
			routed:  true,
			body: client.Request{
				"datasetName": "iris",
				"types":       []*util.KV[string, string]{{Key: "petal_length", Value: "number"}, {Key: "species", Value: "string"}},
			},
			handle: "iris",
		},
		{
			name: "HistogramRun",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Histogram.RunAsync(ctx, "iris", "iris_histogram", "species")
			},
			method:  http.MethodPost,
			service: HistogramService,
			body:    client.Request{"datasetName": "iris", "histogramName": "iris_histogram", "attribute": "species"},
			handle:  "iris_histogram",
		},
		{
			name: "PCARun",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.PCA.RunAsync(ctx, "iris", "iris_pca", "species")
			},
			method:  http.MethodPost,
			service: PCAService,
			body:    client.Request{"datasetName": "iris", "pcaName": "iris_pca", "attribute": "species"},
			handle:  "iris_pca",
		},
		{
			name: "TSNERun",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.TSNE.RunAsync(ctx, "iris", "iris_tsne", "species")
			},
			method:  http.MethodPost,
			service: TSNEService,
			body:    client.Request{"datasetName": "iris", "tsneName": "iris_tsne", "attribute": "species"},
			handle:  "iris_tsne",
		},
		{
			name: "BuilderTensorFlow",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Builder.RunTensorFlowAsync(ctx, &BuildSpec{
					Name:         "iris_model",
					TrainDataset: "iris_train",
					TestDataset:  "iris_test",
					ModelingCode: "features = ...",
					Classifiers:  []string{"lr"},
				})
			},
			method:  http.MethodPost,
			service: BuilderService,
			body: client.Request{
				"tool":             TensorFlow,
				"builderName":      "iris_model",
				"trainDatasetName": "iris_train",
				"testDatasetName":  "iris_test",
				"modelingCode":     "features = ...",
				"classifiersList":  []string{"lr"},
			},
			handle: "iris_model",
		},
		{
			name: "ExploreUpdate",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Explore.UpdateAsync(ctx, "iris", "fit", nil)
			},
			method:  http.MethodPatch,
			service: ExploreService,
			routed:  true,
			body:    client.Request{"datasetName": "iris", "methodName": "fit", "methodParameters": map[string]any{}},
			handle:  "iris",
		},
		{
			name: "TransformRun",
			run: func(ctx context.Context, o *Orchestra) (*client.Outcome, error) {
				return o.Transform.RunAsync(ctx, &ToolSpec{
					Tool:    "scikit-learn",
					Name:    "iris_encoded",
					Package: "sklearn.preprocessing",
					Class:   "LabelEncoder",
					Method:  "fit_transform",
					MethodParameters: map[string]any{
						"y": "$iris.species",
					},
				})
			},
			method:  http.MethodPost,
			service: TransformService,
			body: client.Request{
				"toolName":              "scikit-learn",
				"datasetName":           "iris_encoded",
				"description":           "",
				"toolPackage":           "sklearn.preprocessing",
				"toolClass":             "LabelEncoder",
				"constructorParameters": map[string]any{},
				"methodName":            "fit_transform",
				"methodParameters":      map[string]any{"y": "$iris.species"},
			},
			handle: "iris_encoded",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			o, gateway := newMockOrchestra(t)

			gateway.EXPECT().
				Submit(gomock.Any(), tc.method, tc.service, tc.routed, gomock.Eq(tc.body)).
				Return(envelope(t, ok), nil).
				Times(1)
			gateway.EXPECT().
				Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Times(0)

			outcome, err := tc.run(context.Background(), o)
			require.NoError(t, err)
			assert.Equal(t, client.Complete, outcome.State)
			assert.Equal(t, tc.handle, outcome.Handle)
		})
	}
}

func TestSearches(t *testing.T) {
	tcs := []struct {
		name    string
		run     func(context.Context, *Orchestra) (*client.Envelope, error)
		service string
		suffix  string
	}{
		{
			name:    "DatasetSearchAll",
			run:     func(ctx context.Context, o *Orchestra) (*client.Envelope, error) { return o.Dataset.SearchAll(ctx) },
			service: DatasetService,
			suffix:  "",
		},
		{
			name: "DatasetSearchContent",
			run: func(ctx context.Context, o *Orchestra) (*client.Envelope, error) {
				return o.Dataset.SearchContent(ctx, "iris", Page{Size: 10, Number: 2})
			},
			service: DatasetService,
			suffix:  "iris?query=%7B%7D&limit=10&skip=2",
		},
		{
			name: "DatasetSearchContentDefault",
			run: func(ctx context.Context, o *Orchestra) (*client.Envelope, error) {
				return o.Dataset.SearchContentDefault(ctx, "iris")
			},
			service: DatasetService,
			suffix:  "iris?query=%7B%7D&limit=20&skip=0",
		},
		{
			name: "HistogramSearch",
			run: func(ctx context.Context, o *Orchestra) (*client.Envelope, error) {
				return o.Histogram.Search(ctx, "iris_histogram", DefaultPage)
			},
			service: HistogramService,
			suffix:  "iris_histogram?query=%7B%7D&limit=20&skip=0",
		},
		{
			name:    "PCASearchData",
			run:     func(ctx context.Context, o *Orchestra) (*client.Envelope, error) { return o.PCA.SearchData(ctx, "iris_pca") },
			service: PCAService,
			suffix:  "iris_pca",
		},
		{
			name:    "TSNESearchPlot",
			run:     func(ctx context.Context, o *Orchestra) (*client.Envelope, error) { return o.TSNE.SearchPlot(ctx, "iris_tsne") },
			service: TSNEService,
			suffix:  "iris_tsne/plot",
		},
		{
			name: "BuilderSearchRegisterPredictions",
			run: func(ctx context.Context, o *Orchestra) (*client.Envelope, error) {
				return o.Builder.SearchRegisterPredictions(ctx, "iris_model", Page{Size: 5, Number: 1})
			},
			service: BuilderService,
			suffix:  "iris_model/predictions?query=%7B%7D&limit=5&skip=1",
		},
		{
			name:    "ExploreSearchPlot",
			run:     func(ctx context.Context, o *Orchestra) (*client.Envelope, error) { return o.Explore.SearchPlot(ctx, "iris") },
			service: ExploreService,
			suffix:  "iris/plot",
		},
		{
			name:    "TransformSearch",
			run:     func(ctx context.Context, o *Orchestra) (*client.Envelope, error) { return o.Transform.Search(ctx, "iris") },
			service: TransformService,
			suffix:  "iris",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			o, gateway := newMockOrchestra(t)

			res := envelope(t, `{"result": [{"datasetName": "iris"}]}`)

			gateway.EXPECT().
				Fetch(gomock.Any(), tc.suffix, http.MethodGet, tc.service).
				Return(res, nil).
				Times(1)

			got, err := tc.run(context.Background(), o)
			require.NoError(t, err)
			assert.Equal(t, res, got)
		})
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	o, gateway := newMockOrchestra(t)

	res := envelope(t, `{"result": [{"datasetName": "iris"}]}`)

	gateway.EXPECT().
		Fetch(gomock.Any(), "iris?query=%7B%7D&limit=20&skip=0", http.MethodGet, DatasetService).
		Return(res, nil).
		Times(2)
	gateway.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Times(0)

	first, err := o.Dataset.SearchContentDefault(context.Background(), "iris")
	require.NoError(t, err)
	second, err := o.Dataset.SearchContentDefault(context.Background(), "iris")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeleteSyncAwaitsPending(t *testing.T) {
	o, gateway := newMockOrchestra(t)

	gomock.InOrder(
		gateway.EXPECT().
			Fetch(gomock.Any(), "iris_histogram", http.MethodDelete, HistogramService).
			Return(envelope(t, `{"result": "deleting please wait"}`), nil),
		gateway.EXPECT().
			Fetch(gomock.Any(), "iris_histogram"+status, http.MethodGet, HistogramService).
			Return(envelope(t, `{"result": [{"finished": "true"}]}`), nil),
	)

	res, err := o.Histogram.DeleteSync(context.Background(), "iris_histogram")
	require.NoError(t, err)

	records, err := res.Records()
	require.NoError(t, err)
	assert.True(t, records[0].Finished.True())
}

func TestInvalidArguments(t *testing.T) {
	tcs := []struct {
		name string
		run  func(context.Context, *Orchestra) error
	}{
		{
			name: "DatasetInsertBadURI",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Dataset.InsertSync(ctx, "not a uri", "iris")
				return err
			},
		},
		{
			name: "DatasetInsertNameWithSlash",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Dataset.InsertAsync(ctx, "https://example.com/iris.csv", "../iris")
				return err
			},
		},
		{
			name: "DatasetDeleteEmptyName",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Dataset.DeleteSync(ctx, "")
				return err
			},
		},
		{
			name: "DatasetSearchBadPage",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Dataset.SearchContent(ctx, "iris", Page{Size: 0})
				return err
			},
		},
		{
			name: "ProjectionNoAttributes",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Projection.RemoveAttributesSync(ctx, "iris", "iris", nil, false)
				return err
			},
		},
		{
			name: "DataTypeUnknownType",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.DataType.UpdateTypesSync(ctx, "iris", map[string]string{"species": "boolean"})
				return err
			},
		},
		{
			name: "BuilderNilSpec",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Builder.RunSparkMLSync(ctx, nil)
				return err
			},
		},
		{
			name: "ExploreUnknownTool",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Explore.RunSync(ctx, &ToolSpec{Tool: "pytorch", Name: "iris", Package: "p", Class: "c", Method: "m"})
				return err
			},
		},
		{
			name: "AwaitEmptyHandle",
			run: func(ctx context.Context, o *Orchestra) error {
				_, err := o.Dataset.Await(ctx, "")
				return err
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			o, gateway := newMockOrchestra(t)

			gateway.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			gateway.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			assert.ErrorIs(t, tc.run(context.Background(), o), client.ErrInvalid)
		})
	}
}

func TestPageQuery(t *testing.T) {
	assert.Equal(t, "?query=%7B%7D&limit=20&skip=0", DefaultPage.Query())
	assert.Equal(t, "?query=%7B%7D&limit=1&skip=3", Page{Size: 1, Number: 3}.Query())

	values, err := url.ParseQuery(strings.TrimPrefix(DefaultPage.Query(), "?"))
	require.NoError(t, err)
	assert.Equal(t, "{}", values.Get("query"))
	assert.Equal(t, "20", values.Get("limit"))
	assert.Equal(t, "0", values.Get("skip"))
}

// TestDatasetInsertScenario drives a synchronous insert against a server
// that reports the download pending, then unfinished, then finished.
func TestDatasetInsertScenario(t *testing.T) {
	var mu sync.Mutex
	var requests []string
	polls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		requests = append(requests, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"datasetName": "iris", "datasetURI": "https://example.com/iris.csv"}, body)

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"result": "/api/learningOrchestra/v1/dataset/iris please wait"}`))
		case http.MethodGet:
			polls++
			finished := "false"
			if polls == 2 {
				finished = "true"
			}
			_, _ = w.Write([]byte(`{"result": [{"datasetName": "iris", "finished": "` + finished + `", "fields": ["sepal_length"]}]}`))
		}
	}))
	defer server.Close()

	o, err := New(testConfig(server.URL))
	require.NoError(t, err)

	res, err := o.Dataset.InsertSync(context.Background(), "https://example.com/iris.csv", "iris")
	require.NoError(t, err)

	records, err := res.Records()
	require.NoError(t, err)
	assert.True(t, records[0].Finished.True())
	assert.Equal(t, []string{"sepal_length"}, records[0].Fields)

	assert.Equal(t, []string{
		"POST /api/learningOrchestra/v1/dataset/",
		"GET /api/learningOrchestra/v1/dataset/iris/metadata",
		"GET /api/learningOrchestra/v1/dataset/iris/metadata",
	}, requests)
}
