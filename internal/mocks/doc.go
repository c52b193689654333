// Package mocks provides test doubles shared by the service, api and
// cmd/server tests.
//
// MemoryDB backs every store interface with maps and follows the ordering
// and error behavior of the database stores. Failures are injected per
// operation name:
//
//	db := mocks.NewMemoryDB()
//	db.Fail("Messages.CountUnread", errors.New("boom"))
//	svc, _ := service.NewMessageService(db.Stores().Messages, db.Stores().Tasks, db.Stores().Users, nil)
//
// Interfaces with few methods get function-field mocks (MockJWTService,
// MockPasswordHasher).
package mocks
