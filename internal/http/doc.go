// Package http provides HTTP handlers and middleware for the extension
// scheduler API.
//
// The router exposes the following endpoints:
//   - GET /rules, POST /rules, GET /rules/{id}, PUT /rules/{id},
//     DELETE /rules/{id}: schedule rule management exchanging the `ruleDTO`
//     payload defined in rule_handler.go.
//   - PUT /rules/{id}/active: flips a single rule's active flag. Body:
//     {"active": bool}.
//   - GET /rules/{id}/occurrences?count=N: previews the next instants at
//     which the rule will act.
//   - GET /extensions: lists installed extensions as reported by the
//     management bridge.
//   - GET /extensions/{id}/verification: reports whether an extension
//     appears on the configured verified-extension list.
//   - GET /backup, POST /backup: exports and imports the full storage
//     contents as a backup document.
//   - GET /healthz: liveness probe, always 200 and never authenticated.
//   - GET /metrics: Prometheus metrics, never authenticated.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
