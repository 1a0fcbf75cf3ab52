package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
	"github.com/graceauto/catalogue/internal/store"
)

// PersistStatus reports how a mutation reached storage.
type PersistStatus string

const (
	// StatusSaved means the document was written to the data file.
	StatusSaved PersistStatus = "saved"
	// StatusPendingManualSync means no save path is configured: the mutated
	// document is staged for download and the operator must replace the
	// stored file by hand. The pending state clears once the file watcher
	// observes a matching document on disk.
	StatusPendingManualSync PersistStatus = "pending_manual_sync"
)

// Editor performs catalog mutations as read-modify-write cycles over the
// whole document: refresh, apply exactly one change, stamp lastUpdate,
// persist, replace the store snapshot. A single mutex serializes the whole
// cycle, so this process has exactly one writer; concurrent admin processes
// remain last-writer-wins at the file level.
type Editor struct {
	mu        sync.Mutex
	store     *store.Store
	saver     repository.Saver // nil selects manual-sync mode
	validator *validator.Validate
	log       *logrus.Entry
	now       func() time.Time

	pendingMu sync.Mutex
	pending   *repository.Document
	// suppressClear masks the EventChanged the editor itself raises when it
	// stages a document, so only reloads from disk can complete the sync.
	suppressClear bool
}

// New creates an editor over the store. A nil saver puts the editor in
// manual-sync mode: mutations are staged for download instead of written.
func New(st *store.Store, saver repository.Saver) *Editor {
	e := &Editor{
		store:     st,
		saver:     saver,
		validator: validator.New(),
		log:       logger.WithComponent("editor"),
		now:       time.Now,
	}
	st.Notifier().Subscribe(e.onStoreEvent)
	return e
}

// ManualMode reports whether the editor stages documents instead of saving.
func (e *Editor) ManualMode() bool {
	return e.saver == nil
}

// Pending returns the staged document awaiting manual replacement, if any.
func (e *Editor) Pending() (repository.Document, bool) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	if e.pending == nil {
		return repository.Document{}, false
	}
	return *e.pending, true
}

// onStoreEvent clears the pending state when the document reloaded from disk
// matches the staged one, meaning the operator completed the manual sync.
func (e *Editor) onStoreEvent(ev store.Event) {
	if ev != store.EventChanged {
		return
	}

	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	if e.pending == nil || e.suppressClear {
		return
	}

	snapshot, err := e.store.Snapshot()
	if err != nil {
		return
	}
	if repository.AreDocumentsEqual(&snapshot, e.pending) {
		e.pending = nil
		e.log.Info("manual sync completed, pending document cleared")
	}
}

// mutate runs one read-modify-write cycle under the writer lock.
func (e *Editor) mutate(ctx context.Context, apply func(doc *repository.Document) error) (PersistStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.workingCopy(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh before mutation: %w", err)
	}

	if err := apply(&doc); err != nil {
		return "", err
	}

	doc.LastUpdate = e.timestamp()
	return e.persist(ctx, doc)
}

// workingCopy returns the latest document a mutation must start from. In
// manual-sync mode staged edits accumulate until the operator replaces the
// file, so the pending document takes precedence over the stale disk copy.
func (e *Editor) workingCopy(ctx context.Context) (repository.Document, error) {
	if e.saver == nil {
		if pending, ok := e.Pending(); ok {
			return repository.CloneDocument(pending)
		}
	}
	return e.store.Refresh(ctx)
}

func (e *Editor) persist(ctx context.Context, doc repository.Document) (PersistStatus, error) {
	if err := e.validator.Struct(&doc); err != nil {
		return "", fmt.Errorf("validate document: %w: %v", errdefs.ErrInvalidArgument, err)
	}

	if e.saver == nil {
		e.pendingMu.Lock()
		staged := doc
		e.pending = &staged
		e.suppressClear = true
		e.pendingMu.Unlock()

		err := e.store.Replace(doc)

		e.pendingMu.Lock()
		e.suppressClear = false
		e.pendingMu.Unlock()

		if err != nil {
			return "", fmt.Errorf("replace store snapshot: %w", err)
		}
		e.log.Warn("no save path configured, document staged for manual sync")
		return StatusPendingManualSync, nil
	}

	if err := e.saver.Save(ctx, &doc); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	if err := e.store.Replace(doc); err != nil {
		// The save went through; a failed snapshot swap only delays readers
		// until the next load.
		e.log.Errorf("replace store snapshot after save: %v", err)
	}
	return StatusSaved, nil
}

func (e *Editor) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

// AddListing appends a new listing to the sequence named by kind. The id is
// max(existing)+1 within that sequence alone; deletions elsewhere never
// cause reuse across sequences. Defaults applied under the payload:
// disponible=true, createdAt=now, and categorie="location" for residences.
func (e *Editor) AddListing(ctx context.Context, kind repository.Kind, payload repository.Listing) (repository.Listing, PersistStatus, error) {
	if !kind.Valid() {
		return repository.Listing{}, "", fmt.Errorf("unknown listing kind %q: %w", kind, errdefs.ErrInvalidArgument)
	}

	var created repository.Listing
	status, err := e.mutate(ctx, func(doc *repository.Document) error {
		item := payload
		if item.Disponible == nil {
			v := true
			item.Disponible = &v
		}
		if item.CreatedAt == "" {
			item.CreatedAt = e.timestamp()
		}
		if kind == repository.KindResidence && item.Categorie == "" {
			item.Categorie = "location"
		}

		switch kind {
		case repository.KindVehicule:
			item.ID = nextListingID(doc.Vehicules)
			doc.Vehicules = append(doc.Vehicules, item)
		case repository.KindResidence:
			item.ID = nextListingID(doc.Residences)
			doc.Residences = append(doc.Residences, item)
		}
		created = item
		return nil
	})
	if err != nil {
		return repository.Listing{}, "", err
	}
	return created, status, nil
}

// UpdateItem patches the first listing with the given id, searching vehicles
// before residences: on a cross-sequence id collision only the vehicle
// changes. The patch cannot move a record's id.
func (e *Editor) UpdateItem(ctx context.Context, id int, patch Patch) (PersistStatus, error) {
	return e.mutate(ctx, func(doc *repository.Document) error {
		for _, seq := range [][]repository.Listing{doc.Vehicules, doc.Residences} {
			for i := range seq {
				if seq[i].ID == id {
					merged, err := mergeJSON(seq[i], patch, "id")
					if err != nil {
						return err
					}
					seq[i] = merged
					return nil
				}
			}
		}
		return fmt.Errorf("listing %d: %w", id, errdefs.ErrNotFound)
	})
}

// UpdateListing is the composite-key variant of UpdateItem: it patches the
// listing with the given id inside the named sequence only.
func (e *Editor) UpdateListing(ctx context.Context, kind repository.Kind, id int, patch Patch) (PersistStatus, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown listing kind %q: %w", kind, errdefs.ErrInvalidArgument)
	}
	return e.mutate(ctx, func(doc *repository.Document) error {
		seq := doc.Vehicules
		if kind == repository.KindResidence {
			seq = doc.Residences
		}
		for i := range seq {
			if seq[i].ID == id {
				merged, err := mergeJSON(seq[i], patch, "id")
				if err != nil {
					return err
				}
				seq[i] = merged
				return nil
			}
		}
		return fmt.Errorf("%s %d: %w", kind, id, errdefs.ErrNotFound)
	})
}

// DeleteItem removes the first listing with the given id, vehicles searched
// before residences.
func (e *Editor) DeleteItem(ctx context.Context, id int) (PersistStatus, error) {
	return e.mutate(ctx, func(doc *repository.Document) error {
		for i := range doc.Vehicules {
			if doc.Vehicules[i].ID == id {
				doc.Vehicules = append(doc.Vehicules[:i], doc.Vehicules[i+1:]...)
				return nil
			}
		}
		for i := range doc.Residences {
			if doc.Residences[i].ID == id {
				doc.Residences = append(doc.Residences[:i], doc.Residences[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("listing %d: %w", id, errdefs.ErrNotFound)
	})
}

// DeleteListing removes the listing with the given id from the named
// sequence only.
func (e *Editor) DeleteListing(ctx context.Context, kind repository.Kind, id int) (PersistStatus, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown listing kind %q: %w", kind, errdefs.ErrInvalidArgument)
	}
	return e.mutate(ctx, func(doc *repository.Document) error {
		seq := &doc.Vehicules
		if kind == repository.KindResidence {
			seq = &doc.Residences
		}
		for i := range *seq {
			if (*seq)[i].ID == id {
				*seq = append((*seq)[:i], (*seq)[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%s %d: %w", kind, id, errdefs.ErrNotFound)
	})
}

// AddReservation appends a reservation. New reservations always start in
// "en attente" regardless of the payload, and dateReservation is stamped
// server-side.
func (e *Editor) AddReservation(ctx context.Context, payload repository.Reservation) (repository.Reservation, PersistStatus, error) {
	if payload.ItemKind != "" && !repository.Kind(payload.ItemKind).Valid() {
		return repository.Reservation{}, "", fmt.Errorf("unknown item kind %q: %w", payload.ItemKind, errdefs.ErrInvalidArgument)
	}

	var created repository.Reservation
	status, err := e.mutate(ctx, func(doc *repository.Document) error {
		item := payload
		item.ID = nextReservationID(doc.Reservations)
		item.Statut = repository.StatutEnAttente
		item.DateReservation = e.timestamp()
		doc.Reservations = append(doc.Reservations, item)
		created = item
		return nil
	})
	if err != nil {
		return repository.Reservation{}, "", err
	}
	return created, status, nil
}

// UpdateReservationStatus sets the statut of one reservation.
func (e *Editor) UpdateReservationStatus(ctx context.Context, id int, statut string) (PersistStatus, error) {
	switch statut {
	case repository.StatutEnAttente, repository.StatutConfirmee, repository.StatutAnnulee:
	default:
		return "", fmt.Errorf("unknown statut %q: %w", statut, errdefs.ErrInvalidArgument)
	}

	return e.mutate(ctx, func(doc *repository.Document) error {
		for i := range doc.Reservations {
			if doc.Reservations[i].ID == id {
				doc.Reservations[i].Statut = statut
				return nil
			}
		}
		return fmt.Errorf("reservation %d: %w", id, errdefs.ErrNotFound)
	})
}

// UpdateSettings shallow-merges patch over the stored settings. Nested
// objects such as businessHours are replaced wholesale when present in the
// patch.
func (e *Editor) UpdateSettings(ctx context.Context, patch Patch) (PersistStatus, error) {
	return e.mutate(ctx, func(doc *repository.Document) error {
		merged, err := mergeJSON(doc.Settings, patch)
		if err != nil {
			return err
		}
		doc.Settings = merged
		return nil
	})
}

// Export returns the latest document for external output. In manual-sync
// mode the staged document is exported, since that is the file the operator
// must install.
func (e *Editor) Export(ctx context.Context) (repository.Document, error) {
	if e.saver == nil {
		if pending, ok := e.Pending(); ok {
			return pending, nil
		}
	}
	return e.store.Refresh(ctx)
}

// Import replaces the stored document with the candidate wholesale. The
// candidate must carry at least the vehicules and residences sequences;
// nothing is persisted when validation fails. Destructive: callers confirm
// out-of-band.
func (e *Editor) Import(ctx context.Context, raw []byte) (PersistStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("decode import candidate: %w: %v", errdefs.ErrInvalidArgument, err)
	}
	for _, key := range []string{"vehicules", "residences"} {
		seq, ok := probe[key]
		if !ok {
			return "", fmt.Errorf("import candidate missing %q sequence: %w", key, errdefs.ErrInvalidArgument)
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(seq, &arr); err != nil {
			return "", fmt.Errorf("import candidate %q is not a sequence: %w", key, errdefs.ErrInvalidArgument)
		}
	}

	var doc repository.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode import candidate: %w: %v", errdefs.ErrInvalidArgument, err)
	}
	doc.ApplyDefaults()
	doc.LastUpdate = e.timestamp()

	return e.persist(ctx, doc)
}

func nextListingID(seq []repository.Listing) int {
	max := 0
	for _, item := range seq {
		if item.ID > max {
			max = item.ID
		}
	}
	return max + 1
}

func nextReservationID(seq []repository.Reservation) int {
	max := 0
	for _, item := range seq {
		if item.ID > max {
			max = item.ID
		}
	}
	return max + 1
}
