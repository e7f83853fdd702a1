package util

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/learningorchestra/orchestra/pkg/orchestra"
	"github.com/spf13/cobra"
)

// Resource is the part of the api every microservice shares.
type Resource interface {
	Service() string
	SearchAll(context.Context) (*client.Envelope, error)
	DeleteSync(context.Context, string) (*client.Envelope, error)
	DeleteAsync(context.Context, string) (*client.Outcome, error)
	Await(context.Context, client.Handle) (*client.Envelope, error)
}

// ResourceCmds returns the list, delete and wait commands of a resource. r
// picks the resource api once the orchestra is set up.
func ResourceCmds[T Resource](o *Orchestra, r func(*orchestra.Orchestra) T) []*cobra.Command {
	return []*cobra.Command{
		ListCmd(o, r),
		DeleteCmd(o, r),
		WaitCmd(o, r),
	}
}

func ListCmd[T Resource](o *Orchestra, r func(*orchestra.Orchestra) T) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List metadata of every resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := r(o.Orchestra).SearchAll(cmd.Context())
			if err != nil {
				return err
			}

			return PrintEnvelope(cmd, e)
		},
	}
}

func DeleteCmd[T Resource](o *Orchestra, r func(*orchestra.Orchestra) T) *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a name")
			}

			return Submit(cmd, async,
				func(ctx context.Context) (*client.Envelope, error) { return r(o.Orchestra).DeleteSync(ctx, args[0]) },
				func(ctx context.Context) (*client.Outcome, error) { return r(o.Orchestra).DeleteAsync(ctx, args[0]) },
			)
		},
	}

	AsyncFlag(cmd, &async)
	return cmd
}

func WaitCmd[T Resource](o *Orchestra, r func(*orchestra.Orchestra) T) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <handle>",
		Short: "Wait for a pending operation to finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("must specify a handle")
			}

			e, err := r(o.Orchestra).Await(cmd.Context(), client.Handle(args[0]))
			if err != nil {
				return err
			}

			return PrintEnvelope(cmd, e)
		},
	}
}

// Submit runs the sync variant of an operation, or the async one when async
// is set, and prints the result.
func Submit(cmd *cobra.Command, async bool, sync func(context.Context) (*client.Envelope, error), submit func(context.Context) (*client.Outcome, error)) error {
	if async {
		o, err := submit(cmd.Context())
		if err != nil {
			return err
		}
		return PrintOutcome(cmd, o)
	}

	e, err := sync(cmd.Context())
	if e != nil && err != nil {
		// the operation was accepted but could not be awaited
		_ = PrintEnvelope(cmd, e)
	}
	if err != nil {
		return err
	}

	return PrintEnvelope(cmd, e)
}

func AsyncFlag(cmd *cobra.Command, async *bool) {
	cmd.Flags().BoolVar(async, "async", false, "return as soon as the operation is accepted")
}

func PageFlags(cmd *cobra.Command, page *orchestra.Page) {
	cmd.Flags().IntVar(&page.Size, "limit", orchestra.DefaultPage.Size, "page size")
	cmd.Flags().IntVar(&page.Number, "skip", orchestra.DefaultPage.Number, "number of entries to skip")
}

// Params decodes each value as json, falling back to the raw string.
func Params(m map[string]string) map[string]any {
	params := make(map[string]any, len(m))
	for k, v := range m { // nosemgrep: range-over-map
		var value any
		if err := json.Unmarshal([]byte(v), &value); err != nil {
			value = v
		}
		params[k] = value
	}
	return params
}
