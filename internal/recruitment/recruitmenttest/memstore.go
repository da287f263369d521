// Package recruitmenttest provides in-memory implementations of the
// recruitment service's dependencies for tests.
package recruitmenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/faculty-recruitment/internal/audit"
	"github.com/jonathan/faculty-recruitment/internal/blobstore"
	"github.com/jonathan/faculty-recruitment/internal/db"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// MemStore is an in-memory recruitment.Store with the same conflict
// semantics as the Postgres store
type MemStore struct {
	mu    sync.Mutex
	Jobs  map[uuid.UUID]*types.Job
	Apps  map[uuid.UUID]*types.Application
	Users map[uuid.UUID][]uuid.UUID

	// BeforeStatusUpdate runs inside UpdateStatus before the version check
	BeforeStatusUpdate func(app *types.Application)
	// PatchErr is returned by PatchSection when set
	PatchErr error
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		Jobs:  make(map[uuid.UUID]*types.Job),
		Apps:  make(map[uuid.UUID]*types.Application),
		Users: make(map[uuid.UUID][]uuid.UUID),
	}
}

// Clone deep-copies v through its JSON encoding
func Clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

func (m *MemStore) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Clone(m.Jobs[id]), nil
}

func (m *MemStore) ListJobs(_ context.Context, filter types.JobFilter) ([]types.Job, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Job
	for _, j := range m.Jobs {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		out = append(out, *Clone(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

func (m *MemStore) CreateJob(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.Jobs {
		if j.AdvertisementCode == job.AdvertisementCode {
			return db.ErrDuplicate
		}
	}
	m.Jobs[job.ID] = Clone(job)
	return nil
}

func (m *MemStore) UpdateJob(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Jobs[job.ID]; !ok {
		return db.ErrNotFound
	}
	for _, j := range m.Jobs {
		if j.ID != job.ID && j.AdvertisementCode == job.AdvertisementCode {
			return db.ErrDuplicate
		}
	}
	m.Jobs[job.ID] = Clone(job)
	return nil
}

func (m *MemStore) UpdateJobStatus(_ context.Context, id uuid.UUID, status types.JobStatus, at time.Time) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	j.Status = status
	j.UpdatedAt = at
	return Clone(j), nil
}

func (m *MemStore) CreateApplication(_ context.Context, jobID uuid.UUID, build func(job *types.Job) (*types.Application, error)) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, err := build(Clone(m.Jobs[jobID]))
	if err != nil {
		return nil, err
	}
	for _, a := range m.Apps {
		if a.UserID == app.UserID && a.JobID == app.JobID {
			return nil, db.ErrDuplicate
		}
		if a.ApplicationNumber == app.ApplicationNumber {
			return nil, db.ErrDuplicateApplicationNumber
		}
	}
	m.Apps[app.ID] = Clone(app)
	m.Users[app.UserID] = append(m.Users[app.UserID], app.ID)
	return Clone(app), nil
}

func (m *MemStore) GetApplication(_ context.Context, id uuid.UUID) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Clone(m.Apps[id]), nil
}

func (m *MemStore) ListApplications(_ context.Context, filter types.ApplicationFilter) ([]types.Application, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Application
	for _, a := range m.Apps {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.JobID != nil && a.JobID != *filter.JobID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && a.PaymentStatus != filter.PaymentStatus {
			continue
		}
		out = append(out, *Clone(a))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ApplicationNumber < out[k].ApplicationNumber })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

func (m *MemStore) DeleteDraftApplication(_ context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Apps[id]
	if !ok || a.UserID != userID {
		return db.ErrNotFound
	}
	if a.Status != types.StatusDraft {
		return db.ErrLocked
	}
	delete(m.Apps, id)
	refs := m.Users[userID][:0]
	for _, ref := range m.Users[userID] {
		if ref != id {
			refs = append(refs, ref)
		}
	}
	m.Users[userID] = refs
	return nil
}

func (m *MemStore) PatchSection(_ context.Context, id uuid.UUID, section types.SectionType, patch types.SectionPatch, requireUnlocked bool, at time.Time) (*types.SectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PatchErr != nil {
		return nil, m.PatchErr
	}
	a, ok := m.Apps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if requireUnlocked && a.IsLocked {
		return nil, db.ErrLocked
	}
	if a.Sections == nil {
		a.Sections = map[types.SectionType]types.SectionState{}
	}
	state := patch.Apply(a.Sections[section])
	a.Sections[section] = state
	a.Version++
	a.UpdatedAt = at
	return Clone(&state), nil
}

func (m *MemStore) UpdateStatus(_ context.Context, upd types.StatusUpdate) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Apps[upd.ApplicationID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if m.BeforeStatusUpdate != nil {
		m.BeforeStatusUpdate(a)
	}
	if a.Version != upd.ExpectedVersion {
		return nil, db.ErrVersionConflict
	}
	a.Status = upd.Status
	a.IsLocked = upd.IsLocked
	a.LockedAt = upd.LockedAt
	a.SubmittedAt = upd.SubmittedAt
	a.StatusHistory = append(a.StatusHistory, upd.Entry)
	a.Version++
	a.UpdatedAt = upd.Entry.ChangedAt
	return Clone(a), nil
}

func (m *MemStore) BulkUpdateStatus(_ context.Context, upd types.BulkStatusUpdate) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	modified := 0
	for _, id := range upd.ApplicationIDs {
		a, ok := m.Apps[id]
		if !ok {
			continue
		}
		if a.Status == types.StatusWithdrawn && upd.Status != types.StatusSubmitted {
			continue
		}
		remarks := upd.Remarks
		if remarks == "" {
			remarks = fmt.Sprintf("Status changed from %s to %s", a.Status, upd.Status)
		}
		a.Status = upd.Status
		a.StatusHistory = append(a.StatusHistory, types.StatusHistoryEntry{
			Status: upd.Status, ChangedBy: upd.ChangedBy, ChangedAt: upd.ChangedAt, Remarks: remarks,
		})
		a.Version++
		modified++
	}
	return modified, nil
}

func (m *MemStore) SetReviewNotes(_ context.Context, id uuid.UUID, notes string, reviewer uuid.UUID, at time.Time) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Apps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	a.ReviewNotes = notes
	a.ReviewedBy = &reviewer
	a.ReviewedAt = &at
	a.Version++
	return Clone(a), nil
}

func (m *MemStore) SetPaymentStatus(_ context.Context, id uuid.UUID, status types.PaymentStatus, at time.Time) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Apps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	a.PaymentStatus = status
	a.UpdatedAt = at
	a.Version++
	return Clone(a), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// MemBlobs is an in-memory blob store
type MemBlobs struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Deleted   []string
	StoreErr  error
	DeleteErr error
}

// NewMemBlobs returns an empty blob store
func NewMemBlobs() *MemBlobs {
	return &MemBlobs{Objects: make(map[string][]byte)}
}

func (b *MemBlobs) Store(_ context.Context, content []byte, meta blobstore.Metadata) (blobstore.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.StoreErr != nil {
		return blobstore.Object{}, b.StoreErr
	}
	key := blobstore.ObjectKey(meta)
	b.Objects[key] = append([]byte(nil), content...)
	return blobstore.Object{URL: "https://files.example.test/" + key, ID: key}, nil
}

func (b *MemBlobs) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	b.Deleted = append(b.Deleted, id)
	delete(b.Objects, id)
	return nil
}

// RecordingAuditor collects emitted events
type RecordingAuditor struct {
	mu     sync.Mutex
	Events []audit.Event
}

func (r *RecordingAuditor) Emit(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

// Actions returns the emitted actions in order
func (r *RecordingAuditor) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Action)
	}
	return out
}
