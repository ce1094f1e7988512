// Package retry provides exponential backoff and retry logic for transient
// failures in catalog queries, listing fetches and download requests.
//
//	cfg := retry.FromSettings(settings.Retry, log)
//	body, err := retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
//		return client.get(ctx, url)
//	}, cfg)
//
// Errors typed by pkg/errors are retried only when their type is network,
// rate_limit or server_error. Context cancellation is never retried, and a
// cancelled context aborts the wait between attempts.
package retry
