package orchestra

import (
	"context"
	"net/http"

	"github.com/learningorchestra/orchestra/internal/util"
	"github.com/learningorchestra/orchestra/pkg/client"
)

// resource is the part every microservice api shares: a service name and
// the client it is reached through.
type resource struct {
	client  *client.Client
	service string
}

func (r *resource) Service() string {
	return r.service
}

// SearchAll returns the metadata of every resource the service holds.
func (r *resource) SearchAll(ctx context.Context) (*client.Envelope, error) {
	return r.client.Fetch(ctx, r.service, "")
}

// Await blocks until the operation identified by handle has finished.
func (r *resource) Await(ctx context.Context, handle client.Handle) (*client.Envelope, error) {
	if err := r.check("await", struct {
		Handle string `validate:"required"`
	}{handle.String()}); err != nil {
		return nil, err
	}

	return r.client.Await(ctx, r.service, handle)
}

func (r *resource) DeleteSync(ctx context.Context, name string) (*client.Envelope, error) {
	call, err := r.delete(name)
	return r.sync(ctx, call, err)
}

func (r *resource) DeleteAsync(ctx context.Context, name string) (*client.Outcome, error) {
	call, err := r.delete(name)
	return r.async(ctx, call, err)
}

func (r *resource) delete(name string) (*client.Call, error) {
	if err := r.check("delete", struct {
		Name string `validate:"required,resource"`
	}{name}); err != nil {
		return nil, err
	}

	return &client.Call{
		Method:  http.MethodDelete,
		Service: r.service,
		Suffix:  name,
	}, nil
}

// get fetches name with an optional suffix after validating the name.
func (r *resource) get(ctx context.Context, op string, name string, suffix string) (*client.Envelope, error) {
	if err := r.check(op, struct {
		Name string `validate:"required,resource"`
	}{name}); err != nil {
		return nil, err
	}

	return r.client.Fetch(ctx, r.service, name+suffix)
}

func (r *resource) page(ctx context.Context, op string, name string, suffix string, page Page) (*client.Envelope, error) {
	if err := r.check(op, page); err != nil {
		return nil, err
	}

	return r.get(ctx, op, name, suffix+page.Query())
}

func (r *resource) call(method string, routed bool, body client.Request, handle string) *client.Call {
	return &client.Call{
		Method:  method,
		Service: r.service,
		Routed:  routed,
		Body:    body,
		Handle:  client.Handle(handle),
	}
}

func (r *resource) sync(ctx context.Context, call *client.Call, err error) (*client.Envelope, error) {
	if err != nil {
		return nil, err
	}

	return r.client.SubmitSync(ctx, call)
}

func (r *resource) async(ctx context.Context, call *client.Call, err error) (*client.Outcome, error) {
	if err != nil {
		return nil, err
	}

	return r.client.Submit(ctx, call)
}

func (r *resource) check(op string, args any) error {
	if err := validate.Struct(args); err != nil {
		return client.NewError(client.KindInvalid, op, r.service, err)
	}

	return nil
}

// pairs renders a map as a key sorted list of {key, value} objects.
func pairs(m map[string]string) []*util.KV[string, string] {
	return util.OrderedRangeKV(m)
}

func method(create bool) string {
	if create {
		return http.MethodPost
	}
	return http.MethodPatch
}
