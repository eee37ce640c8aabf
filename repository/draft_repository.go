package repository

import (
	"context"
	"fmt"
	"spotnsort/models"
	"strings"
	"sync"
)

// DraftRepository persists each authority's per-report drafts as one mapping
// keyed by report id. Drafts are a convenience cache and are never sent to the
// report backend on their own.
type DraftRepository struct {
	store KVStore

	// serializes read-modify-write of an authority's draft document
	mu sync.Mutex
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(store KVStore) *DraftRepository {
	return &DraftRepository{store: store}
}

func draftsKey(authorityEmail string) string {
	return fmt.Sprintf("drafts:%s", strings.ToLower(authorityEmail))
}

// GetDrafts returns all drafts of an authority; never nil
func (r *DraftRepository) GetDrafts(ctx context.Context, authorityEmail string) (map[string]models.Draft, error) {
	drafts := make(map[string]models.Draft)
	if _, err := getJSON(ctx, r.store, draftsKey(authorityEmail), &drafts); err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = make(map[string]models.Draft)
	}
	return drafts, nil
}

// SaveDraft replaces the draft for one report. An empty draft removes the entry.
func (r *DraftRepository) SaveDraft(ctx context.Context, authorityEmail, reportID string, draft models.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	drafts, err := r.GetDrafts(ctx, authorityEmail)
	if err != nil {
		return err
	}
	if draft.IsEmpty() {
		delete(drafts, reportID)
	} else {
		drafts[reportID] = draft
	}
	return setJSON(ctx, r.store, draftsKey(authorityEmail), drafts)
}

// ClearDraft drops the draft for one report
func (r *DraftRepository) ClearDraft(ctx context.Context, authorityEmail, reportID string) error {
	return r.SaveDraft(ctx, authorityEmail, reportID, models.Draft{})
}
