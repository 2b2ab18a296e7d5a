// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. They hold no mutable state, so one
// instance can serve concurrent requests.
package services
