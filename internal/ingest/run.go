package ingest

import (
	"context"
	"fmt"

	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// Run drives an ingest to completion on the calling goroutine, reporting each
// yield to onProgress (which may be nil). Cancellation is checked between yields.
func Run(ctx context.Context, path string, opts Options, onProgress func(Status)) (*pointcloud.PointCloud, error) {
	d := Begin(path, opts)
	defer d.Close()

	for {
		if err := ctx.Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
		}

		st := d.Resume()
		if onProgress != nil {
			onProgress(st)
		}
		if st.State.Terminal() {
			return d.Result()
		}
	}
}
