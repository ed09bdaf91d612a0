// Package service implements the business logic of the netseg server.
//
// Services sit between the HTTP handlers and the topology session or the
// repository. They validate requests, run the simulated delays on an
// injected clock and publish events for connected clients.
//
// # Services
//
// DesignerService serializes access to the editing session: canvas edits,
// undo/redo, validation, auto-fix, saving, loading and deployment.
//
// DepartmentService manages department zone configuration and remembers
// the selected zone in the preferences store.
//
// HostService manages the simulated virtual hosts and their lifecycle.
//
// TestingService runs simulated connectivity tests and keeps their history.
//
// # Event System
//
// All services publish events via EventBus. The SSE hub forwards them to
// connected clients.
//
// # Validation
//
// FormValidator checks request structs against their validate tags and
// reports failures as a *ValidationError keyed by JSON field name.
package service
