package catalog

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/meli-catalog/internal/meli"
)

// page describes one fetch-parse-dedupe run.
type page[T any] struct {
	op    string
	path  string
	shape meli.Shape
	build func(ctx context.Context, raw jx.Raw) (T, error)
	dedup DedupeFunc[T]
}

type built[T any] struct {
	v   T
	err error
}

type pipelineMetrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	skipped  metric.Int64Counter
}

func newPipelineMetrics(meter metric.Meter) (m pipelineMetrics, err error) {
	if m.calls, err = meter.Int64Counter("catalog.pipeline.calls",
		metric.WithDescription("Pipeline invocations"),
	); err != nil {
		return m, errors.Wrap(err, "calls counter")
	}
	if m.failures, err = meter.Int64Counter("catalog.pipeline.failures",
		metric.WithDescription("Pipeline invocations that failed as a whole"),
	); err != nil {
		return m, errors.Wrap(err, "failures counter")
	}
	if m.skipped, err = meter.Int64Counter("catalog.pipeline.skipped",
		metric.WithDescription("Elements skipped because they could not be built"),
	); err != nil {
		return m, errors.Wrap(err, "skipped counter")
	}
	return m, nil
}

// collect runs p and appends its elements to acc.
//
// acc itself is never modified: on success the returned Items may share its
// backing array, on failure nothing is appended.
func collect[T any](ctx context.Context, s *Service, p page[T], acc []T) (*Result[T], error) {
	ctx, span := s.tracer.Start(ctx, "catalog."+p.op,
		trace.WithAttributes(
			attribute.String("catalog.path", p.path),
			attribute.Int("catalog.accumulated", len(acc)),
		),
	)
	defer span.End()

	opAttr := metric.WithAttributes(attribute.String("op", p.op))
	s.metrics.calls.Add(ctx, 1, opAttr)
	lg := s.lg.With(zap.String("op", p.op), zap.String("path", p.path))

	fail := func(msg string, err error) error {
		s.metrics.failures.Add(ctx, 1, opAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		lg.Error(msg, zap.Error(err))
		return err
	}

	body, err := s.client.Get(ctx, p.path)
	if err != nil {
		return nil, fail("Fetch failed", &TransportError{Op: p.op, Path: p.path, Err: err})
	}
	elems, err := p.shape(body)
	if err != nil {
		return nil, fail("Unexpected response shape", &DecodeError{Op: p.op, Err: err})
	}

	// Elements are independent: build them concurrently, append in order.
	slots := make([]built[T], len(elems))
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, raw := range elems {
		g.Go(func() error {
			v, err := p.build(ctx, raw)
			slots[i] = built[T]{v: v, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fail("Cancelled", errors.Wrap(err, p.op))
	}

	var items []T
	if len(acc) == 0 {
		items = make([]T, 0, len(elems))
	} else {
		items = slices.Grow(slices.Clip(acc), len(elems))
	}

	res := &Result[T]{}
	for i, b := range slots {
		if b.err != nil {
			lg.Warn("Skipping element",
				zap.Int("index", i),
				zap.ByteString("element", elems[i]),
				zap.Error(b.err),
			)
			res.Skipped = append(res.Skipped, &ElementError{Index: i, Err: b.err})
			continue
		}
		if p.dedup != nil && p.dedup(b.v, items) {
			res.Duplicates++
			continue
		}
		items = append(items, b.v)
	}
	res.Items = items
	res.Next = len(items)

	if n := len(res.Skipped); n > 0 {
		s.metrics.skipped.Add(ctx, int64(n), opAttr)
	}
	span.SetAttributes(
		attribute.Int("catalog.received", len(elems)),
		attribute.Int("catalog.skipped", len(res.Skipped)),
		attribute.Int("catalog.duplicates", res.Duplicates),
	)
	lg.Debug("Page collected",
		zap.Int("received", len(elems)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("total", len(items)),
	)
	return res, nil
}
