// Package domain defines the core business entities of the lead scoring
// and automation engine: contacts, deals, scoring rules, automation
// workflows, and the append-only activity and audit records.
package domain
