// Package protocol defines the wire types exchanged by the server.
//
// Every message is a JSON-RPC 2.0 value carried on its own line. This package
// contains the Go type definitions for the envelope, the response, the error
// object and the payloads of the built-in methods.
//
// # Package Organization
//
//   - jsonrpc.go: Envelope decoding and validation, Response and Error
//   - mcp.go: method names, protocol revision, initialize types, pagination members
//   - tools.go, resources.go, prompts.go: descriptors and results for the three handler groups
//
// # Requests and Notifications
//
// An envelope with an id member is a request and is always answered, even when
// the id is null. An envelope without one is a notification and never is.
// Envelope keeps the raw id bytes so the response echoes them unchanged.
//
// # Message Flow
//
//  1. Client sends an initialize request
//  2. Server responds with capabilities and server info
//  3. Client sends an initialized notification
//  4. Client lists and calls tools, reads resources and gets prompts
//  5. Client closes the input stream when done
//
// # Example Messages
//
// Initialize request:
//
//	{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"ExampleClient","version":"1.0.0"}}}
//
// Initialize response:
//
//	{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","capabilities":{"tools":{},"resources":{},"prompts":{}},"serverInfo":{"name":"mcp-stdio-server","version":"1.0.0"}}}
package protocol
