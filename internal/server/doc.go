// Package server is the network edge of duochat: the WebSocket endpoint
// that feeds frames to the real-time engine, the REST API over the chat
// service, and the lifecycle of the HTTP listener.
//
// Configuration, the hub of live clients, per-connection pumps, origin
// policy and rate limiting each live in their own file.
package server
