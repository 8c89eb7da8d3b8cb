package engine

import (
	"context"

	"github.com/tphakala/go-wavelet/internal/pyramid"
)

// analyze1D runs one level on a single line, decimated or stationary.
func (e *Engine[F]) analyze1D(a, d, x []F, spec pyramid.LevelSpec, ws *Workspace[F]) {
	if e.opts.Kind == pyramid.Stationary {
		e.bank.AnalyzeStationary(a, d, x, spec.Dilation, ws)
		return
	}
	e.bank.Analyze(a, d, x, e.opts.Mode, ws)
}

// synthesize1D inverts analyze1D into dst.
func (e *Engine[F]) synthesize1D(dst, a, d []F, spec pyramid.LevelSpec, ws *Workspace[F]) {
	if e.opts.Kind == pyramid.Stationary {
		e.bank.SynthesizeStationary(dst, a, d, spec.Dilation, ws)
		return
	}
	e.bank.Synthesize(dst, a, d, e.opts.Mode, ws)
}

// analyzeRows transforms every row of in independently into approx and detail.
func (e *Engine[F]) analyzeRows(ctx context.Context, in, approx, detail Plane[F], spec pyramid.LevelSpec) error {
	return e.sched.forEach(ctx, in.Rows, func(i int, ws *Workspace[F]) {
		e.analyze1D(approx.Row(i), detail.Row(i), in.Row(i), spec, ws)
	})
}

// synthesizeRows inverts analyzeRows.
func (e *Engine[F]) synthesizeRows(ctx context.Context, out, approx, detail Plane[F], spec pyramid.LevelSpec) error {
	return e.sched.forEach(ctx, out.Rows, func(i int, ws *Workspace[F]) {
		e.synthesize1D(out.Row(i), approx.Row(i), detail.Row(i), spec, ws)
	})
}

// analyzeCols transforms every column of in into lo and hi.
func (e *Engine[F]) analyzeCols(ctx context.Context, in, lo, hi Plane[F], spec pyramid.LevelSpec) error {
	return e.sched.forEach(ctx, in.Cols, func(c int, ws *Workspace[F]) {
		col := ws.buf(slotColA, in.Rows)
		outLo := ws.buf(slotColOut1, lo.Rows)
		outHi := ws.buf(slotColOut2, hi.Rows)
		in.gatherCol(col, c)
		e.analyze1D(outLo, outHi, col, spec, ws)
		lo.scatterCol(outLo, c)
		hi.scatterCol(outHi, c)
	})
}

// synthesizeCols inverts analyzeCols.
func (e *Engine[F]) synthesizeCols(ctx context.Context, out, lo, hi Plane[F], spec pyramid.LevelSpec) error {
	return e.sched.forEach(ctx, out.Cols, func(c int, ws *Workspace[F]) {
		colLo := ws.buf(slotColA, lo.Rows)
		colHi := ws.buf(slotColD, hi.Rows)
		res := ws.buf(slotColOut1, out.Rows)
		lo.gatherCol(colLo, c)
		hi.gatherCol(colHi, c)
		e.synthesize1D(res, colLo, colHi, spec, ws)
		out.scatterCol(res, c)
	})
}

// analyzeLevel runs one level and returns the approximation and the detail
// bands (one for 1-D, H/V/D for 2-D).
func (e *Engine[F]) analyzeLevel(ctx context.Context, in Plane[F], spec pyramid.LevelSpec) (Plane[F], []Plane[F], error) {
	out := spec.Output

	if e.opts.Dims == 1 {
		approx, detail := NewPlane[F](out), NewPlane[F](out)
		if err := e.analyzeRows(ctx, in, approx, detail, spec); err != nil {
			return Plane[F]{}, nil, err
		}
		return approx, []Plane[F]{detail}, nil
	}

	if e.opts.NonSeparable {
		return e.analyzeNonSeparable(ctx, in, spec)
	}

	// Rows first (axis 1), then columns (axis 0).
	rowPass := pyramid.Shape{Rows: in.Rows, Cols: out.Cols}
	lo, hi := NewPlane[F](rowPass), NewPlane[F](rowPass)
	if err := e.analyzeRows(ctx, in, lo, hi, spec); err != nil {
		return Plane[F]{}, nil, err
	}

	approx := NewPlane[F](out)
	bands := []Plane[F]{NewPlane[F](out), NewPlane[F](out), NewPlane[F](out)}
	if err := e.analyzeCols(ctx, lo, approx, bands[pyramid.Horizontal], spec); err != nil {
		return Plane[F]{}, nil, err
	}
	if err := e.analyzeCols(ctx, hi, bands[pyramid.Vertical], bands[pyramid.Diagonal], spec); err != nil {
		return Plane[F]{}, nil, err
	}
	return approx, bands, nil
}

// synthesizeLevel inverts analyzeLevel, producing a plane of spec.Input shape.
func (e *Engine[F]) synthesizeLevel(ctx context.Context, approx Plane[F], details []Plane[F], spec pyramid.LevelSpec) (Plane[F], error) {
	out := NewPlane[F](spec.Input)

	if e.opts.Dims == 1 {
		if err := e.synthesizeRows(ctx, out, approx, details[0], spec); err != nil {
			return Plane[F]{}, err
		}
		return out, nil
	}

	if e.opts.NonSeparable {
		return e.synthesizeNonSeparable(approx, details, spec)
	}

	// Columns first, then rows.
	rowPass := pyramid.Shape{Rows: spec.Input.Rows, Cols: spec.Output.Cols}
	lo, hi := NewPlane[F](rowPass), NewPlane[F](rowPass)
	if err := e.synthesizeCols(ctx, lo, approx, details[pyramid.Horizontal], spec); err != nil {
		return Plane[F]{}, err
	}
	if err := e.synthesizeCols(ctx, hi, details[pyramid.Vertical], details[pyramid.Diagonal], spec); err != nil {
		return Plane[F]{}, err
	}
	if err := e.synthesizeRows(ctx, out, lo, hi, spec); err != nil {
		return Plane[F]{}, err
	}
	return out, nil
}
