// Package http implements the JSON API of basketlens. Handlers are a thin layer
// between chi routing and the services package: they parse and validate query
// parameters and bodies, call one service method, and render the result.
//
// # Routes
//
// Mounted under /api:
//
//	POST   /sessions                                open an analysis session
//	GET    /sessions/{id}                           session info
//	DELETE /sessions/{id}                           close a session
//	GET    /sessions/{id}/itemsets                  ranked frequent itemsets
//	GET    /sessions/{id}/rules                     ranked association rules
//	GET    /sessions/{id}/network                   rule network
//	GET    /sessions/{id}/summary                   headline counts and top lists
//	POST   /sessions/{id}/summary                   same, parameters in a JSON body
//	GET    /sessions/{id}/export/{kind}.{format}    itemsets|rules as csv|xlsx
//	GET    /dataset/overview                        dataset statistics
//	GET    /dataset/items                           distinct items
//	GET    /dataset/item-frequency?limit=           most purchased items
//	GET    /dataset/pairs?limit=&items=             co-occurring item pairs
//	GET    /dataset/basket-sizes?items=             basket size histogram
//	GET    /dataset/records?offset=&limit=          raw records
//	GET    /health, /health/ready, /health/live, /version
//
// Mining endpoints accept min_support, min_confidence, sort (lift, confidence
// or support), limit and items. Omitted thresholds use the configured defaults;
// a limit of -1 returns every result.
//
// # Responses
//
// Successful responses use a common envelope:
//
//	{"status": "success", "data": ..., "count": 3, "empty": false}
//
// An analysis that finds nothing is not an error: it answers 200 with
// "empty": true and a message explaining which threshold to relax.
//
// Errors follow RFC 7807 Problem Details and are produced by the errors package.
// Invalid thresholds answer 400, unknown sessions 404 and a missing dataset 503.
package http
