// Package http implements the HTTP request handlers for the column-sum
// web service. Handlers stay thin: they parse requests, delegate to the
// service layer, and transform service errors into RFC 7807 responses.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Aggregator
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
package http
