package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/pkg/client"
)

// Histogram plots the distribution of a dataset attribute.
type Histogram struct {
	resource
}

func (h *Histogram) RunSync(ctx context.Context, dataset string, name string, attribute string) (*client.Envelope, error) {
	call, err := h.run(dataset, name, attribute)
	return h.sync(ctx, call, err)
}

func (h *Histogram) RunAsync(ctx context.Context, dataset string, name string, attribute string) (*client.Outcome, error) {
	call, err := h.run(dataset, name, attribute)
	return h.async(ctx, call, err)
}

func (h *Histogram) Search(ctx context.Context, name string, page Page) (*client.Envelope, error) {
	return h.page(ctx, "search", name, "", page)
}

func (h *Histogram) run(dataset string, name string, attribute string) (*client.Call, error) {
	if err := h.check("run", struct {
		Dataset   string `validate:"required,resource"`
		Name      string `validate:"required,resource"`
		Attribute string `validate:"required"`
	}{dataset, name, attribute}); err != nil {
		return nil, err
	}

	return h.call(http.MethodPost, false, client.Request{
		"datasetName":   dataset,
		"histogramName": name,
		"attribute":     attribute,
	}, name), nil
}

// explorer runs a dimensionality reduction over a dataset and serves the
// resulting data and plot.
type explorer struct {
	resource
	key string
}

func (e *explorer) RunSync(ctx context.Context, dataset string, name string, attribute string) (*client.Envelope, error) {
	call, err := e.run(dataset, name, attribute)
	return e.sync(ctx, call, err)
}

func (e *explorer) RunAsync(ctx context.Context, dataset string, name string, attribute string) (*client.Outcome, error) {
	call, err := e.run(dataset, name, attribute)
	return e.async(ctx, call, err)
}

func (e *explorer) SearchData(ctx context.Context, name string) (*client.Envelope, error) {
	return e.get(ctx, "search", name, "")
}

func (e *explorer) SearchPlot(ctx context.Context, name string) (*client.Envelope, error) {
	return e.get(ctx, "search plot", name, "/plot")
}

func (e *explorer) run(dataset string, name string, attribute string) (*client.Call, error) {
	if err := e.check("run", struct {
		Dataset   string `validate:"required,resource"`
		Name      string `validate:"required,resource"`
		Attribute string `validate:"required"`
	}{dataset, name, attribute}); err != nil {
		return nil, err
	}

	return e.call(http.MethodPost, false, client.Request{
		"datasetName": dataset,
		e.key:         name,
		"attribute":   attribute,
	}, name), nil
}

// PCA projects a dataset onto its principal components.
type PCA struct {
	explorer
}

// TSNE embeds a dataset with t-distributed stochastic neighbor embedding.
type TSNE struct {
	explorer
}
