package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/pkg/client"
)

// Dataset downloads csv datasets into the orchestra and reads them back.
type Dataset struct {
	resource
}

func (d *Dataset) InsertSync(ctx context.Context, uri string, name string) (*client.Envelope, error) {
	call, err := d.insert(http.MethodPost, false, uri, name)
	return d.sync(ctx, call, err)
}

func (d *Dataset) InsertAsync(ctx context.Context, uri string, name string) (*client.Outcome, error) {
	call, err := d.insert(http.MethodPost, false, uri, name)
	return d.async(ctx, call, err)
}

// UpdateSync replaces the content of an existing dataset with the file at
// uri.
func (d *Dataset) UpdateSync(ctx context.Context, uri string, name string) (*client.Envelope, error) {
	call, err := d.insert(http.MethodPut, true, uri, name)
	return d.sync(ctx, call, err)
}

func (d *Dataset) UpdateAsync(ctx context.Context, uri string, name string) (*client.Outcome, error) {
	call, err := d.insert(http.MethodPut, true, uri, name)
	return d.async(ctx, call, err)
}

func (d *Dataset) SearchContent(ctx context.Context, name string, page Page) (*client.Envelope, error) {
	return d.page(ctx, "search", name, "", page)
}

func (d *Dataset) SearchContentDefault(ctx context.Context, name string) (*client.Envelope, error) {
	return d.SearchContent(ctx, name, DefaultPage)
}

func (d *Dataset) insert(method string, routed bool, uri string, name string) (*client.Call, error) {
	if err := d.check("insert", struct {
		URI  string `validate:"required,url"`
		Name string `validate:"required,resource"`
	}{uri, name}); err != nil {
		return nil, err
	}

	return d.call(method, routed, client.Request{
		"datasetName": name,
		"datasetURI":  uri,
	}, name), nil
}
