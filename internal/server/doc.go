// Package server provides the bridge's network surfaces: the websocket hub
// that fans playback change notifications out to connected overlay clients,
// and the OAuth2 authorization callback flow.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with a [Middleware] stack; middleware
// is applied in reverse order (last added executes first), following the
// standard Go pattern. Custom handlers implement the [Handler] interface,
// which adds Routes() to the stdlib handler so a handler can register all of
// its paths itself.
//
// # WebSocket Hub
//
// [Hub] owns the subscriber set. Each connection gets a buffered outbound
// queue and a write pump; broadcasts never block on a slow client, they drop
// that client's message instead. Inbound messages are forwarded to the
// tracking service as remote-control commands, each on its own goroutine.
// A new connection forces a full refresh so it receives the complete current
// playback state.
//
// # OAuth Callback
//
// [CodeHandler] validates the state parameter (CSRF protection) and delivers
// the raw authorization code through a channel; it processes only one
// callback to prevent replay. [AuthFlow] ties it together: temporary local
// server, browser launch, and a bounded wait for the code. The token
// exchange itself belongs to the credential manager.
package server
