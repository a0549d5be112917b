package outcall

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxParallelCallWorkers bounds the goroutines one fan-out round may spawn.
const maxParallelCallWorkers = 8

// Result couples one outbound call's response with its failure. Err is nil
// exactly when Response holds a usable HTTP answer, and is always a
// *TransportError otherwise.
type Result struct {
	Response Response
	Err      error
}

// ParallelCall fans the requests out through a bounded worker pool and
// waits for every call to finish. Results[i] always corresponds to
// requests[i], and a provider failure never cancels its siblings: failures
// land in the result slots, never in the group error.
//
// Context cancellation marks not-yet-dispatched calls as timeouts instead
// of dropping them, so the caller still receives one result per request.
func ParallelCall(ctx context.Context, transport Transport, requests []Request) []Result {
	results := make([]Result, len(requests))

	var group errgroup.Group
	group.SetLimit(maxParallelCallWorkers)
	for i := range requests {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Err: Classify(err)}
				return nil
			}
			resp, err := transport.Send(ctx, requests[i])
			if err != nil {
				results[i] = Result{Err: Classify(err)}
				return nil
			}
			results[i] = Result{Response: resp}
			return nil
		})
	}
	_ = group.Wait()

	return results
}
