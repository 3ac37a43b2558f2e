// Package server provides the HTTP control surface over the source store.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses a chi mux internally, so path parameters such as {name} are available
// through chi.URLParam.
//
// # Control Surface
//
// [ControlHandler] serves the cached read view and the direct mutations:
//
//	GET  /lists                         → every cached list
//	GET  /list/{name}                   → one cached list, or 404
//	POST /clear                         → delete all items of the configured lists
//	POST /list/{name}/item              → append an unchecked item ({"text": "..."})
//	PUT  /list/{name}/item/{text}/check → mark the first matching item as checked
//	GET  /health                        → cache status
//
// Reads never touch the source store. They are answered from a [ListCache], an immutable snapshot that every
// mutation and the background refresher rebuild. A failed rebuild keeps the previous snapshot.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which returns the routes they serve,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
