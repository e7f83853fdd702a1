package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/pkg/client"
)

// DataType converts dataset attributes between string and number.
type DataType struct {
	resource
}

// UpdateTypesSync sets the type of each attribute in types, keyed by
// attribute name.
func (d *DataType) UpdateTypesSync(ctx context.Context, name string, types map[string]string) (*client.Envelope, error) {
	call, err := d.updateTypes(name, types)
	return d.sync(ctx, call, err)
}

func (d *DataType) UpdateTypesAsync(ctx context.Context, name string, types map[string]string) (*client.Outcome, error) {
	call, err := d.updateTypes(name, types)
	return d.async(ctx, call, err)
}

func (d *DataType) SearchContent(ctx context.Context, name string, page Page) (*client.Envelope, error) {
	return d.page(ctx, "search", name, "", page)
}

func (d *DataType) updateTypes(name string, types map[string]string) (*client.Call, error) {
	if err := d.check("update types", struct {
		Name  string            `validate:"required,resource"`
		Types map[string]string `validate:"required,min=1,dive,keys,required,endkeys,oneof=string number"`
	}{name, types}); err != nil {
		return nil, err
	}

	return d.call(http.MethodPatch, true, client.Request{
		"datasetName": name,
		"types":       pairs(types),
	}, name), nil
}
