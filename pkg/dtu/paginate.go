package dtu

import "context"

// paginate drives the multi-page assembly described in §4.4: fetch(ctx, 0)
// retrieves the first page; if its advertised total page count is below 2
// (the "ap=0" open question, §9) the first page is the entire result and
// no follow-ups are issued. Otherwise follow-ups for cp = 1..ap-1 are
// fetched in order and folded into the accumulator with merge. Every
// follow-up is a full round trip, so it is subject to the same rate limit
// and mutual exclusion as any other request.
func paginate[Resp any](
	ctx context.Context,
	fetch func(ctx context.Context, cp int32) (Resp, error),
	pages func(Resp) (ap, cp int32),
	merge func(acc, next Resp) Resp,
) (Resp, error) {
	var zero Resp

	first, err := fetch(ctx, 0)
	if err != nil {
		return zero, err
	}

	ap, _ := pages(first)
	acc := first
	if ap < 2 {
		return acc, nil
	}

	for cp := int32(1); cp < ap; cp++ {
		next, err := fetch(ctx, cp)
		if err != nil {
			return zero, err
		}
		acc = merge(acc, next)
	}

	return acc, nil
}
