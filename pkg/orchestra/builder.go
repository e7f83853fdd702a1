package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/pkg/client"
)

const (
	SparkML    = "sparkml"
	TensorFlow = "tensorflow"
)

// BuildSpec describes a model build: the modeling code preprocesses the
// train and test datasets and each classifier is fitted and evaluated on
// the result. Name identifies the build and is its handle.
type BuildSpec struct {
	Name         string   `validate:"required,resource"`
	TrainDataset string   `validate:"required,resource"`
	TestDataset  string   `validate:"required,resource"`
	ModelingCode string   `validate:"required"`
	Classifiers  []string `validate:"required,min=1,dive,required"`
}

// Builder trains and evaluates models with spark ml or tensorflow.
type Builder struct {
	r resource
}

func (b *Builder) RunSparkMLSync(ctx context.Context, spec *BuildSpec) (*client.Envelope, error) {
	call, err := b.run(SparkML, spec)
	return b.r.sync(ctx, call, err)
}

func (b *Builder) RunSparkMLAsync(ctx context.Context, spec *BuildSpec) (*client.Outcome, error) {
	call, err := b.run(SparkML, spec)
	return b.r.async(ctx, call, err)
}

func (b *Builder) RunTensorFlowSync(ctx context.Context, spec *BuildSpec) (*client.Envelope, error) {
	call, err := b.run(TensorFlow, spec)
	return b.r.sync(ctx, call, err)
}

func (b *Builder) RunTensorFlowAsync(ctx context.Context, spec *BuildSpec) (*client.Outcome, error) {
	call, err := b.run(TensorFlow, spec)
	return b.r.async(ctx, call, err)
}

func (b *Builder) Service() string {
	return b.r.Service()
}

func (b *Builder) DeleteSync(ctx context.Context, name string) (*client.Envelope, error) {
	return b.r.DeleteSync(ctx, name)
}

func (b *Builder) DeleteAsync(ctx context.Context, name string) (*client.Outcome, error) {
	return b.r.DeleteAsync(ctx, name)
}

func (b *Builder) SearchAll(ctx context.Context) (*client.Envelope, error) {
	return b.r.SearchAll(ctx)
}

// Search returns the metadata of a build.
func (b *Builder) Search(ctx context.Context, name string) (*client.Envelope, error) {
	return b.r.get(ctx, "search", name, "")
}

// SearchPredictions returns the evaluation results of every classifier of
// a build.
func (b *Builder) SearchPredictions(ctx context.Context, name string) (*client.Envelope, error) {
	return b.r.get(ctx, "search predictions", name, "/predictions")
}

// SearchRegisterPredictions pages through the predicted tuples of a build.
func (b *Builder) SearchRegisterPredictions(ctx context.Context, name string, page Page) (*client.Envelope, error) {
	return b.r.page(ctx, "search predictions", name, "/predictions", page)
}

func (b *Builder) Await(ctx context.Context, handle client.Handle) (*client.Envelope, error) {
	return b.r.Await(ctx, handle)
}

func (b *Builder) run(tool string, spec *BuildSpec) (*client.Call, error) {
	if spec == nil {
		spec = &BuildSpec{}
	}
	if err := b.r.check("run", spec); err != nil {
		return nil, err
	}

	return b.r.call(http.MethodPost, false, client.Request{
		"tool":             tool,
		"builderName":      spec.Name,
		"trainDatasetName": spec.TrainDataset,
		"testDatasetName":  spec.TestDataset,
		"modelingCode":     spec.ModelingCode,
		"classifiersList":  spec.Classifiers,
	}, spec.Name), nil
}
