// Package httputil provides HTTP helpers shared by the extraction apps.
//
// # Polling
//
// Some apps answer a request with a job and publish the result later.
// [Poll] asks again on a [Schedule] until the result is there:
//
//	err := httputil.Poll(ctx, httputil.DefaultSchedule(10*time.Minute),
//	    func(ctx context.Context) (bool, error) {
//	        return client.ResultReady(ctx)
//	    })
//	if errors.Is(err, httputil.ErrTimeout) {
//	    // give up
//	}
//
// [DefaultSchedule] polls every second during the first minute and every
// ten seconds afterwards. Cancelling the context stops polling at once.
//
// Requests are never retried automatically: a failed call is reported to
// the caller as is.
package httputil
