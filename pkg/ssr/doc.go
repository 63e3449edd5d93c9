// Package ssr serves suspense-rendered pages over HTTP.
//
// Handler renders one page per request with the request context, so a
// disconnected client aborts every deferred value the page was waiting on.
// NewRouter mounts pages on a chi router next to /healthz and /metrics.
package ssr
