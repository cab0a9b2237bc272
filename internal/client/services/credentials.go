package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/nfcgate-console/internal/dbx"
)

// Metadata keys holding the session between runs.
const (
	keySessionToken    = "session_token"
	keySessionUsername = "session_username"
)

// CredentialStore persists the session credential between runs.
//
// Contract:
//   - Load returns the saved credential, or an empty one when nothing is saved.
//   - Save with an empty token removes the credential entirely; otherwise
//     token and display name are written together.
type CredentialStore interface {
	Load(ctx context.Context) (models.Credential, error)
	Save(ctx context.Context, c models.Credential) error
}

// sqliteCredentialStore keeps the credential in the metadata table and writes
// both keys in one transaction.
type sqliteCredentialStore struct {
	db *sql.DB
}

// NewCredentialStore returns a CredentialStore backed by db, which must have
// the metadata migration applied.
func NewCredentialStore(db *sql.DB) CredentialStore {
	return &sqliteCredentialStore{db: db}
}

func (s *sqliteCredentialStore) Load(ctx context.Context) (models.Credential, error) {
	return loadCredential(ctx, metadata.NewSQLiteRepository(s.db))
}

func (s *sqliteCredentialStore) Save(ctx context.Context, c models.Credential) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return saveCredential(ctx, metadata.NewSQLiteRepository(tx), c)
	})
}

// repoCredentialStore keeps the credential in any metadata.Repository, for
// sessions that should not outlive the process.
type repoCredentialStore struct {
	repo metadata.Repository
}

// NewRepositoryCredentialStore returns a CredentialStore over repo.
func NewRepositoryCredentialStore(repo metadata.Repository) CredentialStore {
	return &repoCredentialStore{repo: repo}
}

func (s *repoCredentialStore) Load(ctx context.Context) (models.Credential, error) {
	return loadCredential(ctx, s.repo)
}

func (s *repoCredentialStore) Save(ctx context.Context, c models.Credential) error {
	return saveCredential(ctx, s.repo, c)
}

func loadCredential(ctx context.Context, repo metadata.Repository) (models.Credential, error) {
	token, err := repo.Get(ctx, keySessionToken)
	if err != nil {
		return models.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	if len(token) == 0 {
		return models.Credential{}, nil
	}
	name, err := repo.Get(ctx, keySessionUsername)
	if err != nil {
		return models.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	return models.Credential{Token: string(token), DisplayName: string(name)}, nil
}

func saveCredential(ctx context.Context, repo metadata.Repository, c models.Credential) error {
	if c.IsEmpty() {
		if err := repo.Delete(ctx, keySessionToken); err != nil {
			return fmt.Errorf("clear credential: %w", err)
		}
		if err := repo.Delete(ctx, keySessionUsername); err != nil {
			return fmt.Errorf("clear credential: %w", err)
		}
		return nil
	}
	if err := repo.Set(ctx, keySessionToken, []byte(c.Token)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	if err := repo.Set(ctx, keySessionUsername, []byte(c.DisplayName)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}
