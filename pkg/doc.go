// Package pkg groups the libraries behind mcp-stdio-server.
//
// Dependencies point one way: protocol is the leaf, errors and logging build
// on it, transport and pagination on those, and server on all of them.
// handlers and observability plug into server through its registry and
// middleware. config only reads the environment.
package pkg
