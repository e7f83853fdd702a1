package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/pkg/client"
)

// Projection derives datasets from existing ones by dropping, adding or
// rewriting attributes and rows. Operations that take newDataset create a
// new dataset when it is true and modify name in place otherwise.
type Projection struct {
	resource
}

func (p *Projection) RemoveAttributesSync(ctx context.Context, name string, oldName string, attributes []string, newDataset bool) (*client.Envelope, error) {
	call, err := p.removeAttributes(name, oldName, attributes, newDataset)
	return p.sync(ctx, call, err)
}

func (p *Projection) RemoveAttributesAsync(ctx context.Context, name string, oldName string, attributes []string, newDataset bool) (*client.Outcome, error) {
	call, err := p.removeAttributes(name, oldName, attributes, newDataset)
	return p.async(ctx, call, err)
}

// InsertAttribute adds attribute to name, deriving its values from
// existingAttribute through the values mapping.
func (p *Projection) InsertAttributeSync(ctx context.Context, name string, attribute string, existingAttribute string, values map[string]string, newDataset bool) (*client.Envelope, error) {
	call, err := p.insertAttribute(name, attribute, existingAttribute, values, newDataset)
	return p.sync(ctx, call, err)
}

func (p *Projection) InsertAttributeAsync(ctx context.Context, name string, attribute string, existingAttribute string, values map[string]string, newDataset bool) (*client.Outcome, error) {
	call, err := p.insertAttribute(name, attribute, existingAttribute, values, newDataset)
	return p.async(ctx, call, err)
}

func (p *Projection) ReduceSync(ctx context.Context, name string, size int, newDataset bool) (*client.Envelope, error) {
	call, err := p.resize(name, "sizeReduction", size, newDataset)
	return p.sync(ctx, call, err)
}

func (p *Projection) ReduceAsync(ctx context.Context, name string, size int, newDataset bool) (*client.Outcome, error) {
	call, err := p.resize(name, "sizeReduction", size, newDataset)
	return p.async(ctx, call, err)
}

func (p *Projection) EnlargeSync(ctx context.Context, name string, size int, newDataset bool) (*client.Envelope, error) {
	call, err := p.resize(name, "sizeEnlarge", size, newDataset)
	return p.sync(ctx, call, err)
}

func (p *Projection) EnlargeAsync(ctx context.Context, name string, size int, newDataset bool) (*client.Outcome, error) {
	call, err := p.resize(name, "sizeEnlarge", size, newDataset)
	return p.async(ctx, call, err)
}

// JoinSync concatenates datasets into a new dataset called name.
func (p *Projection) JoinSync(ctx context.Context, datasets []string, name string, removeExisting bool) (*client.Envelope, error) {
	call, err := p.join(datasets, name, removeExisting)
	return p.sync(ctx, call, err)
}

func (p *Projection) JoinAsync(ctx context.Context, datasets []string, name string, removeExisting bool) (*client.Outcome, error) {
	call, err := p.join(datasets, name, removeExisting)
	return p.async(ctx, call, err)
}

// JoinPairSync joins two datasets on the given attribute associations.
func (p *Projection) JoinPairSync(ctx context.Context, one string, two string, associations map[string]string, name string, removeExisting bool) (*client.Envelope, error) {
	call, err := p.joinPair(one, two, associations, name, removeExisting)
	return p.sync(ctx, call, err)
}

func (p *Projection) JoinPairAsync(ctx context.Context, one string, two string, associations map[string]string, name string, removeExisting bool) (*client.Outcome, error) {
	call, err := p.joinPair(one, two, associations, name, removeExisting)
	return p.async(ctx, call, err)
}

func (p *Projection) UpdateValuesSync(ctx context.Context, name string, attribute string, oldToNew map[string]string) (*client.Envelope, error) {
	call, err := p.updateValues(name, attribute, oldToNew)
	return p.sync(ctx, call, err)
}

func (p *Projection) UpdateValuesAsync(ctx context.Context, name string, attribute string, oldToNew map[string]string) (*client.Outcome, error) {
	call, err := p.updateValues(name, attribute, oldToNew)
	return p.async(ctx, call, err)
}

func (p *Projection) SearchContent(ctx context.Context, name string, page Page) (*client.Envelope, error) {
	return p.page(ctx, "search", name, "", page)
}

func (p *Projection) removeAttributes(name string, oldName string, attributes []string, newDataset bool) (*client.Call, error) {
	if err := p.check("remove attributes", struct {
		Name       string   `validate:"required,resource"`
		OldName    string   `validate:"required,resource"`
		Attributes []string `validate:"required,min=1,dive,required"`
	}{name, oldName, attributes}); err != nil {
		return nil, err
	}

	return p.call(method(newDataset), true, client.Request{
		"datasetName":    name,
		"datasetOldName": oldName,
		"names":          attributes,
	}, name), nil
}

func (p *Projection) insertAttribute(name string, attribute string, existingAttribute string, values map[string]string, newDataset bool) (*client.Call, error) {
	if err := p.check("insert attribute", struct {
		Name              string            `validate:"required,resource"`
		Attribute         string            `validate:"required"`
		ExistingAttribute string            `validate:"required"`
		Values            map[string]string `validate:"required,min=1"`
	}{name, attribute, existingAttribute, values}); err != nil {
		return nil, err
	}

	return p.call(method(newDataset), true, client.Request{
		"datasetName":       name,
		"attribute":         attribute,
		"existingAttribute": existingAttribute,
		"values":            pairs(values),
	}, name), nil
}

func (p *Projection) resize(name string, key string, size int, newDataset bool) (*client.Call, error) {
	if err := p.check("resize", struct {
		Name string `validate:"required,resource"`
		Size int    `validate:"gt=0"`
	}{name, size}); err != nil {
		return nil, err
	}

	return p.call(method(newDataset), true, client.Request{
		"datasetName": name,
		key:           size,
	}, name), nil
}

func (p *Projection) join(datasets []string, name string, removeExisting bool) (*client.Call, error) {
	if err := p.check("join", struct {
		Datasets []string `validate:"required,min=2,dive,required,resource"`
		Name     string   `validate:"required,resource"`
	}{datasets, name}); err != nil {
		return nil, err
	}

	return p.call(http.MethodPost, false, client.Request{
		"datasetName":            name,
		"datasetNames":           datasets,
		"removeExistingDatasets": removeExisting,
	}, name), nil
}

func (p *Projection) joinPair(one string, two string, associations map[string]string, name string, removeExisting bool) (*client.Call, error) {
	if err := p.check("join", struct {
		One          string            `validate:"required,resource"`
		Two          string            `validate:"required,resource"`
		Associations map[string]string `validate:"required,min=1"`
		Name         string            `validate:"required,resource"`
	}{one, two, associations, name}); err != nil {
		return nil, err
	}

	return p.call(http.MethodPost, false, client.Request{
		"datasetName":            name,
		"datasetNameOne":         one,
		"datasetNameTwo":         two,
		"attributesAssociations": pairs(associations),
		"removeExistingDatasets": removeExisting,
	}, name), nil
}

func (p *Projection) updateValues(name string, attribute string, oldToNew map[string]string) (*client.Call, error) {
	if err := p.check("update values", struct {
		Name      string            `validate:"required,resource"`
		Attribute string            `validate:"required"`
		Values    map[string]string `validate:"required,min=1"`
	}{name, attribute, oldToNew}); err != nil {
		return nil, err
	}

	return p.call(http.MethodPatch, true, client.Request{
		"datasetName": name,
		"attribute":   attribute,
		"values":      pairs(oldToNew),
	}, name), nil
}
