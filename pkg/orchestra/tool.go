package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/pkg/client"
)

// ToolSpec describes a call into a scikit-learn or tensorflow class: the
// class is instantiated with ConstructorParameters and Method is invoked on
// the instance with MethodParameters.
type ToolSpec struct {
	Tool                  string         `validate:"required,oneof=scikit-learn tensorflow"`
	Name                  string         `validate:"required,resource"`
	Description           string         `validate:"-"`
	Package               string         `validate:"required"`
	Class                 string         `validate:"required"`
	ConstructorParameters map[string]any `validate:"-"`
	Method                string         `validate:"required"`
	MethodParameters      map[string]any `validate:"-"`
}

func (s *ToolSpec) request() client.Request {
	return client.Request{
		"toolName":              s.Tool,
		"datasetName":           s.Name,
		"description":           s.Description,
		"toolPackage":           s.Package,
		"toolClass":             s.Class,
		"constructorParameters": parameters(s.ConstructorParameters),
		"methodName":            s.Method,
		"methodParameters":      parameters(s.MethodParameters),
	}
}

func parameters(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// tool is the runner shared by explore and transform.
type tool struct {
	resource
}

func (t *tool) RunSync(ctx context.Context, spec *ToolSpec) (*client.Envelope, error) {
	call, err := t.run(spec)
	return t.sync(ctx, call, err)
}

func (t *tool) RunAsync(ctx context.Context, spec *ToolSpec) (*client.Outcome, error) {
	call, err := t.run(spec)
	return t.async(ctx, call, err)
}

// UpdateSync re-executes a previous run, calling method with new
// parameters on the stored instance.
func (t *tool) UpdateSync(ctx context.Context, name string, method string, params map[string]any) (*client.Envelope, error) {
	call, err := t.update(name, method, params)
	return t.sync(ctx, call, err)
}

func (t *tool) UpdateAsync(ctx context.Context, name string, method string, params map[string]any) (*client.Outcome, error) {
	call, err := t.update(name, method, params)
	return t.async(ctx, call, err)
}

// Search returns the metadata of a single run.
func (t *tool) Search(ctx context.Context, name string) (*client.Envelope, error) {
	return t.get(ctx, "search", name, "")
}

func (t *tool) run(spec *ToolSpec) (*client.Call, error) {
	if spec == nil {
		spec = &ToolSpec{}
	}
	if err := t.check("run", spec); err != nil {
		return nil, err
	}

	return t.call(http.MethodPost, false, spec.request(), spec.Name), nil
}

func (t *tool) update(name string, method string, params map[string]any) (*client.Call, error) {
	if err := t.check("update", struct {
		Name   string `validate:"required,resource"`
		Method string `validate:"required"`
	}{name, method}); err != nil {
		return nil, err
	}

	return t.call(http.MethodPatch, true, client.Request{
		"datasetName":      name,
		"methodName":       method,
		"methodParameters": parameters(params),
	}, name), nil
}

// Explore runs exploration methods, such as clustering, and renders their
// result as a plot.
type Explore struct {
	tool
}

func (e *Explore) SearchPlot(ctx context.Context, name string) (*client.Envelope, error) {
	return e.get(ctx, "search plot", name, "/plot")
}

// Transform runs preprocessing methods that produce a new dataset.
type Transform struct {
	tool
}

func (t *Transform) SearchContent(ctx context.Context, name string, page Page) (*client.Envelope, error) {
	return t.page(ctx, "search", name, "", page)
}
