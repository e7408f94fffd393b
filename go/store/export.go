package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/rmmh/blockfaces/go/render"
)

// Export renders every declared state of each block into sink. With no
// blocks given, every block of the pack is exported. Failed renderings are
// stored with their error; only sink and listing failures stop the export.
func Export(ctx context.Context, r *render.Resolver, sink Sink, blocks []string, faces []render.Direction, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(blocks) == 0 {
		var err error
		if blocks, err = r.BlockNames(ctx); err != nil {
			return 0, errors.Wrap(err, "listing blocks")
		}
	}

	written := 0
	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		st, err := r.BlockState(ctx, block)
		if err != nil {
			logger.Warn("skipping block", "block", block, "err", err)
			if err := sink.Write(Record{Block: block, Err: err.Error()}); err != nil {
				return written, err
			}
			written++
			continue
		}
		for _, state := range render.DeclaredStates(st) {
			rec := Record{Block: block, State: state.String()}
			rendered, err := r.Render(ctx, block, state, faces)
			if err != nil {
				logger.Warn("render failed", "block", block, "state", rec.State, "err", err)
				rec.Err = err.Error()
			} else {
				rec.Rendering = rendered
			}
			if err := sink.Write(rec); err != nil {
				return written, errors.Wrapf(err, "writing %s[%s]", block, rec.State)
			}
			written++
		}
		logger.Debug("exported", "block", block)
	}
	return written, nil
}
