// Package metadata provides the console's persistent key/value store.
//
// The session token and display name live here between runs (see
// services.CredentialStore). SQLiteRepository persists rows of the
// "metadata" table through a dbx.DBTX, so it works on both *sql.DB and
// *sql.Tx; MemoryRepository keeps everything in process for throwaway
// sessions.
//
//	repo := metadata.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "session_token", []byte(token))
//	v, _ := repo.Get(ctx, "session_token") // nil when absent
package metadata
