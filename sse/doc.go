// Package sse delivers server-sent events to connected browsers.
//
// A Hub keeps the connected clients keyed by id and routes each broadcast
// to the clients whose id matches a glob pattern. The search sessions use
// ids of the form "search:<session>:<connection>" and broadcast to
// "search:<session>:*", so every tab attached to a session sees the same
// results.
//
//	comp := sse.NewComponent("/api/search/:session/stream")
//	registry.Register(comp)
//	router.GET(path, func(c *gin.Context) {
//		sse.ServeSSE(comp.Hub(), c.Writer, c.Request, clientID)
//	})
package sse
