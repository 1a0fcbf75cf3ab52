package store

import (
	"context"
	"sync"

	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
)

// Store keeps the authoritative in-memory copy of the catalog document and
// provides read-only projections over it. Projections never touch storage;
// Load and Refresh are the only operations that do.
type Store struct {
	mu       sync.RWMutex
	doc      repository.Document
	loaded   bool
	repo     repository.Loader
	notifier *Notifier
}

// New creates a store over the given loader. The store starts unloaded;
// call Load before serving reads.
func New(repo repository.Loader, notifier *Notifier) *Store {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &Store{repo: repo, notifier: notifier}
}

// Notifier returns the store's event notifier.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// Load fetches the document from storage. Any failure is absorbed: the store
// falls back to the built-in default document so pages can always render.
// An EventLoaded notification fires only when the fetch succeeded.
func (s *Store) Load(ctx context.Context) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		logger.WithComponent("store").Warnf("load failed, falling back to default document: %v", err)
		def := repository.DefaultDocument()
		s.mu.Lock()
		s.doc = def
		s.loaded = true
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.doc = *doc
	s.loaded = true
	s.mu.Unlock()

	s.notifier.Publish(EventLoaded)
}

// Refresh re-fetches the document from storage and returns it. Unlike Load
// it propagates failures instead of installing the default document: a
// mutation must never proceed from a fabricated empty catalog.
func (s *Store) Refresh(ctx context.Context) (repository.Document, error) {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return repository.Document{}, err
	}

	s.mu.Lock()
	s.doc = *doc
	s.loaded = true
	s.mu.Unlock()

	s.notifier.Publish(EventLoaded)

	return repository.CloneDocument(*doc)
}

// Loaded reports whether the store holds a document.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() (repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return repository.CloneDocument(s.doc)
}

// Replace swaps the in-memory document and broadcasts EventChanged. The
// editor calls it after a successful save; the file watcher calls it when
// the stored file changed underneath the process.
func (s *Store) Replace(doc repository.Document) error {
	cloned, err := repository.CloneDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = cloned
	s.loaded = true
	s.mu.Unlock()

	s.notifier.Publish(EventChanged)
	return nil
}

// Vehicules returns the vehicles offered for sale.
func (s *Store) Vehicules() []repository.Listing {
	return s.filterVehicules("vente")
}

// Locations returns the vehicles offered for rent.
func (s *Store) Locations() []repository.Listing {
	return s.filterVehicules("location")
}

func (s *Store) filterVehicules(categorie string) []repository.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []repository.Listing{}
	for _, v := range s.doc.Vehicules {
		if v.Categorie == categorie {
			out = append(out, v)
		}
	}
	return out
}

// Residences returns all residence listings.
func (s *Store) Residences() []repository.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.Listing{}, s.doc.Residences...)
}

// AllItems returns vehicles followed by residences.
func (s *Store) AllItems() []repository.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]repository.Listing, 0, len(s.doc.Vehicules)+len(s.doc.Residences))
	out = append(out, s.doc.Vehicules...)
	out = append(out, s.doc.Residences...)
	return out
}

// ItemByID looks a listing up by numeric id alone: vehicles are searched
// first, so an id present in both sequences resolves to the vehicle. Use
// ListingByKey when the kind is known.
func (s *Store) ItemByID(id int) (repository.Listing, repository.Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.doc.Vehicules {
		if v.ID == id {
			return v, repository.KindVehicule, true
		}
	}
	for _, r := range s.doc.Residences {
		if r.ID == id {
			return r, repository.KindResidence, true
		}
	}
	return repository.Listing{}, "", false
}

// ListingByKey looks a listing up by (kind, id), the unambiguous form.
func (s *Store) ListingByKey(kind repository.Kind, id int) (repository.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.doc.Vehicules
	if kind == repository.KindResidence {
		seq = s.doc.Residences
	}
	for _, item := range seq {
		if item.ID == id {
			return item, true
		}
	}
	return repository.Listing{}, false
}

// Reservations returns all reservations.
func (s *Store) Reservations() []repository.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.Reservation{}, s.doc.Reservations...)
}

// Settings returns the business settings.
func (s *Store) Settings() repository.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Settings
}

// LastUpdate returns the document's lastUpdate stamp.
func (s *Store) LastUpdate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.LastUpdate
}

// Stats summarizes the catalog for the admin dashboard.
type Stats struct {
	VehiculesVente         int `json:"vehiculesVente"`
	VehiculesLocation      int `json:"vehiculesLocation"`
	TotalResidences        int `json:"totalResidences"`
	TotalReservations      int `json:"totalReservations"`
	ReservationsEnAttente  int `json:"reservationsEnAttente"`
	ReservationsConfirmees int `json:"reservationsConfirmees"`
	ReservationsAnnulees   int `json:"reservationsAnnulees"`
}

// Stats computes aggregate counts from the in-memory document.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalResidences:   len(s.doc.Residences),
		TotalReservations: len(s.doc.Reservations),
	}
	for _, v := range s.doc.Vehicules {
		switch v.Categorie {
		case "vente":
			stats.VehiculesVente++
		case "location":
			stats.VehiculesLocation++
		}
	}
	for _, r := range s.doc.Reservations {
		switch r.Statut {
		case repository.StatutEnAttente:
			stats.ReservationsEnAttente++
		case repository.StatutConfirmee:
			stats.ReservationsConfirmees++
		case repository.StatutAnnulee:
			stats.ReservationsAnnulees++
		}
	}
	return stats
}
