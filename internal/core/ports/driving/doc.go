// Package driving defines interfaces that external actors (CLI, HTTP API,
// MCP clients, folder watcher) use to interact with core services. These
// are the "driving" ports in hexagonal architecture terminology - they
// drive the application.
//
// Every operation that touches user data takes a domain.OwnerID.
//
// Implementations of these interfaces live in internal/core/services.
package driving
