// Package msgraph is a small Microsoft Graph transport used by the events
// package.
//
// It is deliberately not a general Graph SDK. Requester exposes the four HTTP
// verbs the calendar code needs; Client implements it with:
//
//   - app-only authentication through the OAuth2 client-credentials flow
//     against login.microsoftonline.com
//   - JSON request and response bodies
//   - a fresh client-request-id header per request for support correlation
//   - caller-supplied extra headers merged over the defaults, with the
//     Authorization header always owned by the client
//   - one OpenTelemetry client span and one metrics sample per request
//
// Non-2xx responses come back as *APIError. Nothing is retried.
//
//	client, err := msgraph.NewClient(msgraph.ConfigFromEnv(),
//	    msgraph.WithMetrics(provider.Metrics()))
//	resp, err := client.Get(ctx, "/users/room@example.org/calendar/events", nil, nil)
package msgraph
