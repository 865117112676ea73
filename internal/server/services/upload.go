// Package services wires the acceptance engine to the surrounding
// infrastructure: intake of .changes files from the spool, queue records,
// payload storage and operator review.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/openpgp"

	"github.com/dpetrovs/archivegate/internal/archive"
	"github.com/dpetrovs/archivegate/internal/changes"
	"github.com/dpetrovs/archivegate/internal/common"
	"github.com/dpetrovs/archivegate/internal/logging"
	"github.com/dpetrovs/archivegate/internal/server/blobstore"
	sc "github.com/dpetrovs/archivegate/internal/server/config"
	"github.com/dpetrovs/archivegate/internal/server/policy"
	"github.com/dpetrovs/archivegate/internal/server/shared/db"
	"github.com/dpetrovs/archivegate/internal/upload"
)

// UploadService runs the full acceptance pipeline for one spooled upload.
// It also acts as the engine's Committer: the queue record and, for
// non-rejected uploads, the pool payloads are persisted here.
type UploadService struct {
	logger   logging.Logger
	config   *sc.Config
	repos    db.RepositoryManager
	store    blobstore.Store
	notifier upload.Notifier
	keyring  openpgp.EntityList
}

func NewUploadService(logger logging.Logger, config *sc.Config, repos db.RepositoryManager,
	store blobstore.Store, notifier upload.Notifier) *UploadService {

	s := &UploadService{
		logger:   logger.With("component", "upload-service"),
		config:   config,
		repos:    repos,
		store:    store,
		notifier: notifier,
	}

	keyring, err := changes.LoadKeyring(config.KeyringPath)
	if err != nil {
		// Without a keyring every signed upload fails verification; the
		// unsigned pathways still work.
		s.logger.Warn(context.Background(), "uploader keyring unavailable",
			"path", config.KeyringPath, "error", err)
	} else {
		s.keyring = keyring
	}

	return s
}

// ProcessChangesFile takes one .changes file through signature
// verification, parsing and the acceptance engine, and commits the
// outcome. The returned error is reserved for input that could not even be
// turned into an upload (bad signature, unparseable control data) and for
// infrastructure failures; every processable upload ends in a definite
// Result instead.
func (s *UploadService) ProcessChangesFile(ctx context.Context, path string) (upload.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return upload.ResultRejected, fmt.Errorf("read changes file: %w", err)
	}

	signer, plaintext, err := changes.VerifySignature(raw, s.keyring)
	if err != nil {
		return upload.ResultRejected, fmt.Errorf("%w: %v", common.ErrorUnparseableChanges, err)
	}

	m, err := changes.Parse(plaintext, path)
	if err != nil {
		return upload.ResultRejected, fmt.Errorf("%w: %v", common.ErrorUnparseableChanges, err)
	}
	m.Signer = signer

	target, err := s.repos.Releases().ArchiveByName(ctx, s.config.Distribution, s.config.ArchiveName)
	if err != nil {
		return upload.ResultRejected, fmt.Errorf("target archive lookup: %w", err)
	}

	pol, err := policy.ForName(s.config.PolicyName, s.config.AnnounceList)
	if err != nil {
		return upload.ResultRejected, err
	}

	e := upload.New(s.logger, m, pol, target, upload.Stores{
		Releases:    s.repos.Releases(),
		Ancestry:    s.repos.Publications(),
		Permissions: s.repos.Permissions(),
	})

	if err := e.Process(ctx); err != nil {
		return upload.ResultRejected, err
	}

	return e.Accept(ctx, s, s.notifier), nil
}

// Commit persists the queue record for a processed upload and, unless it
// was rejected, copies the payload files into the pool.
func (s *UploadService) Commit(ctx context.Context, e *upload.Engine, status archive.QueueStatus) error {
	m := e.Manifest()

	item := &archive.QueueItem{
		ID:               uuid.NewString(),
		Distribution:     s.config.Distribution,
		Pocket:           e.Pocket(),
		ArchiveID:        e.TargetArchive().ID,
		Package:          m.Source,
		Version:          m.Version,
		ChangesFile:      filepath.Base(m.Path),
		Status:           status,
		RejectionMessage: e.RejectionMessage(),
		CreatedAt:        time.Now(),
	}
	if e.Series() != nil {
		item.Series = e.Series().Name
	}
	if m.Signer != nil {
		item.Signer = m.Signer.Fingerprint
	}

	if err := s.repos.Queue().Create(ctx, item); err != nil {
		return fmt.Errorf("queue record: %w", err)
	}

	if status == archive.QueueRejected {
		return nil
	}

	for _, f := range m.Files {
		if err := s.storeFile(ctx, m.Source, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *UploadService) storeFile(ctx context.Context, source string, f *changes.UploadedFile) error {
	payload, err := os.Open(f.Path())
	if err != nil {
		return fmt.Errorf("open payload %s: %w", f.Filename, err)
	}
	defer payload.Close()

	key := blobstore.PoolKey(f.ComponentName, source, f.Filename)
	if err := s.store.Put(ctx, key, payload); err != nil {
		return fmt.Errorf("store payload %s: %w", f.Filename, err)
	}
	return nil
}
