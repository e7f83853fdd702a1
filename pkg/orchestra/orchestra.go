package orchestra

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/learningorchestra/orchestra/internal/metrics"
	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
)

// Service names, as they appear in the configuration.
const (
	DatasetService    = "microservice_dataset"
	ProjectionService = "microservice_transform_projection"
	DataTypeService   = "microservice_transform_datatype"
	HistogramService  = "microservice_explore_histogram"
	PCAService        = "microservice_explore_pca"
	TSNEService       = "microservice_explore_tsne"
	BuilderService    = "microservice_builder"
	ExploreService    = "microservice_explore"
	TransformService  = "microservice_transform"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// resource names are appended to request paths
	_ = v.RegisterValidation("resource", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "/?#")
	})

	return v
}

// Orchestra groups the resource apis over a single shared client.
type Orchestra struct {
	Dataset    *Dataset
	Projection *Projection
	DataType   *DataType
	Histogram  *Histogram
	PCA        *PCA
	TSNE       *TSNE
	Builder    *Builder
	Explore    *Explore
	Transform  *Transform

	client *client.Client
}

type Option func(*options)

type options struct {
	registry prometheus.Registerer
	client   []client.Option
}

// WithRegistry registers the client metrics on reg. By default they are
// kept in a private registry.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

func WithClientOptions(opts ...client.Option) Option {
	return func(o *options) {
		o.client = append(o.client, opts...)
	}
}

func New(config *client.Config, opts ...Option) (*Orchestra, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	c, err := client.New(config, metrics.New(o.registry), o.client...)
	if err != nil {
		return nil, err
	}

	return &Orchestra{
		Dataset:    &Dataset{resource{c, DatasetService}},
		Projection: &Projection{resource{c, ProjectionService}},
		DataType:   &DataType{resource{c, DataTypeService}},
		Histogram:  &Histogram{resource{c, HistogramService}},
		PCA:        &PCA{explorer{resource{c, PCAService}, "pcaName"}},
		TSNE:       &TSNE{explorer{resource{c, TSNEService}, "tsneName"}},
		Builder:    &Builder{r: resource{c, BuilderService}},
		Explore:    &Explore{tool{resource{c, ExploreService}}},
		Transform:  &Transform{tool{resource{c, TransformService}}},
		client:     c,
	}, nil
}

func (o *Orchestra) Client() *client.Client {
	return o.client
}

// Page selects a window of a content search.
type Page struct {
	Size   int `validate:"gt=0"`
	Number int `validate:"gte=0"`
}

var DefaultPage = Page{Size: 20, Number: 0}

// Query renders the page as the query suffix understood by the content
// endpoints, with an empty filter. The filter is percent encoded so the url
// stays valid; servers decode it back to {}.
func (p Page) Query() string {
	var b strings.Builder
	b.WriteString("?query=")
	b.WriteString(url.QueryEscape("{}"))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(p.Size))
	b.WriteString("&skip=")
	b.WriteString(strconv.Itoa(p.Number))

	return b.String()
}
