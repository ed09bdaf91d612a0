// Package handler implements the HTTP API of the network segmentation
// designer.
//
// Handlers are grouped by page: DesignerHandler serves the canvas editor,
// DepartmentHandler the zone configuration, HostHandler the virtual host
// management view, TestHandler the connectivity tester, MonitorHandler the
// live metrics and PrefsHandler the remembered UI preferences.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details, fields}; fields maps
// form field names to inline messages when a request fails validation.
//
// # Server-Sent Events
//
// The /events endpoint streams every service event, so open pages can
// follow canvas edits, host transitions and metric updates live.
package handler
