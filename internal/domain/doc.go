// Package domain holds the marketplace entities (users, tasks, messages,
// favorites and reference data), their constructors and validation rules,
// and the errors whose messages are shown to API clients.
package domain
