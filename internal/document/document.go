// Package document holds in-process handles on group documents.
package document

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/abrezinsky/pollboard/internal/errors"
	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/repository"
)

// Document is the in-memory copy of one group's document. All access is
// serialized; the lock is held across the save so writers apply one at a time.
type Document struct {
	groupID string
	repo    repository.DocumentRepository
	log     logger.Logger

	mu     sync.Mutex
	data   *models.GroupData
	loaded bool
}

// GroupID returns the id of the group this handle belongs to
func (d *Document) GroupID() string {
	return d.groupID
}

// load reads the document on first use. Callers hold d.mu.
func (d *Document) load(ctx context.Context) error {
	if d.loaded {
		return nil
	}
	data, err := d.repo.LoadDocument(ctx, d.groupID)
	if stderrors.Is(err, repository.ErrNotFound) {
		d.log.Info("Starting empty group document", "group", d.groupID)
		data, err = models.NewGroupData(), nil
	}
	if err != nil {
		d.log.Error("Failed to load group document", "group", d.groupID, "error", err)
		return errors.Wrap(err, errors.ErrUnavailable, "failed to load group data")
	}
	d.data = data
	d.loaded = true
	return nil
}

// invalidate drops the loaded copy once any in-flight access is done
func (d *Document) invalidate() {
	d.mu.Lock()
	d.data = nil
	d.loaded = false
	d.mu.Unlock()
}

// Read calls fn with the current document. fn must not mutate or retain it.
func (d *Document) Read(ctx context.Context, fn func(doc *models.GroupData) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.load(ctx); err != nil {
		return err
	}
	return fn(d.data)
}

// Snapshot returns a deep copy of the current document
func (d *Document) Snapshot(ctx context.Context) (*models.GroupData, error) {
	var snap *models.GroupData
	err := d.Read(ctx, func(doc *models.GroupData) error {
		snap = doc.Clone()
		return nil
	})
	return snap, err
}

// Update applies fn to the document and persists the result when fn reports a
// change. If fn fails or the save fails the document is restored to its state
// before the call; save failures are returned as ErrUnavailable.
func (d *Document) Update(ctx context.Context, fn func(doc *models.GroupData) (changed bool, err error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.load(ctx); err != nil {
		return err
	}

	before := d.data.Clone()
	changed, err := fn(d.data)
	if err != nil {
		d.data = before
		return err
	}
	if !changed {
		return nil
	}

	if err := d.repo.SaveDocument(ctx, d.groupID, d.data); err != nil {
		d.data = before
		d.log.Error("Failed to save group document", "group", d.groupID, "error", err)
		return errors.Unavailable(err)
	}
	return nil
}

// Registry hands out one Document per group id
type Registry struct {
	repo repository.DocumentRepository
	log  logger.Logger

	mu   sync.Mutex
	docs map[string]*Document
}

// NewRegistry creates a registry backed by repo
func NewRegistry(repo repository.DocumentRepository, log logger.Logger) *Registry {
	return &Registry{
		repo: repo,
		log:  log,
		docs: make(map[string]*Document),
	}
}

// Get returns the handle for groupID, creating it if needed. The document
// itself is loaded on first Read or Update.
func (r *Registry) Get(groupID string) *Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[groupID]
	if !ok {
		doc = &Document{groupID: groupID, repo: r.repo, log: r.log}
		r.docs[groupID] = doc
	}
	return doc
}

// Forget discards the cached document so the next access reloads it from
// storage. The handle itself is kept, so an update already in flight finishes
// before the reload and later writers stay serialized behind it.
func (r *Registry) Forget(groupID string) {
	r.mu.Lock()
	doc, ok := r.docs[groupID]
	r.mu.Unlock()
	if ok {
		doc.invalidate()
	}
}
