// Package cli provides the interactive NFCGate admin console.
//
// It wires configuration, the local session database, the backend client and
// the services into a REPL. Typical flow: the stored session is restored (or
// the backend is probed to choose between login and bootstrap), then the
// operator adjusts the shared filter and runs panel or admin commands.
//
// Key features:
//   - Login / Bootstrap / Logout, with forced logout on a rejected session
//   - Shared filter: set / unset / filter
//   - Panels: export, stats, tail, health, refresh
//   - Administrators: admins, admin-add, admin-edit, admin-del
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
