// Package api exposes the hero service and the search sessions over HTTP.
//
//	GET    /api/heroes                  list, or search with ?name=term
//	GET    /api/dashboard               top heroes
//	GET    /api/heroes/:id              one hero
//	POST   /api/heroes                  add {"name": ...}
//	PUT    /api/heroes/:id              rename {"name": ...}
//	DELETE /api/heroes/:id              delete
//	GET    /api/messages                message log
//	DELETE /api/messages                clear the message log
//	POST   /api/search/:session/query   submit a keystroke {"query": ...}
//	GET    /api/search/:session         latest query of a session
//	DELETE /api/search/:session         end a session
//	GET    /api/search/:session/stream  server-sent stream of results
//
// Successful responses use the {"data": ...} envelope of the server
// package; failures use the error body of the errors package.
package api
