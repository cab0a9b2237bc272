// Package client contains the console's connection to the NFCGate backend.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, the single gateway for every backend call. It attaches the
//     session token, tags each request with an X-Request-ID and classifies
//     the response (see Do).
//  2. Typed endpoint methods mirroring the backend admin API: AuthStatus,
//     Login, Bootstrap, ExportLogs, APDUStats, TailLogs, Health and the admin
//     user CRUD calls.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Sentinel errors matched with errors.Is: ErrUnauthorized, ErrUnavailable.
// Typed errors matched with errors.As: *AppError, *NetworkError. OutcomeOf
// folds any error into one of four outcomes.
//
// A 401 response additionally calls Session.Invalidate, so a rejected token
// always ends the local session no matter which call saw it.
package client
