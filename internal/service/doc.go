// Package service implements the engine's business logic: contact
// resolution, rule-driven lead scoring, automation trigger evaluation,
// action execution, and audit recording. Services depend on the store
// interfaces and never on a concrete database.
package service
