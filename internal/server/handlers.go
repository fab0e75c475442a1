package server

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// operation is the signature huma registers for a typed handler.
type operation[I, O any] = func(context.Context, *I) (*O, error)

// reportErrors passes every error op returns to report before returning it.
func reportErrors[I, O any](op operation[I, O], report func(context.Context, error)) operation[I, O] {
	if report == nil {
		return op
	}
	return func(ctx context.Context, in *I) (*O, error) {
		out, err := op(ctx, in)
		if err != nil {
			report(ctx, err)
		}
		return out, err
	}
}

// documents lists the error statuses an operation can return.
func documents(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

// succeedsWith sets the status of a successful response.
func succeedsWith(code int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.DefaultStatus = code }
}
