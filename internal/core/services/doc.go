// Package services implements the driving port interfaces.
// Services contain the core business logic: segment alignment,
// similarity ranking, cross-segment continuity and run history.
// They orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO or external dependencies.
package services
