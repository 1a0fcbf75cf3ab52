package store

import "github.com/graceauto/catalogue/internal/repository"

// Reader is the read-only projection API the HTTP layer consumes.
type Reader interface {
	Snapshot() (repository.Document, error)
	Vehicules() []repository.Listing
	Locations() []repository.Listing
	Residences() []repository.Listing
	AllItems() []repository.Listing
	ItemByID(id int) (repository.Listing, repository.Kind, bool)
	ListingByKey(kind repository.Kind, id int) (repository.Listing, bool)
	Reservations() []repository.Reservation
	Settings() repository.Settings
	LastUpdate() string
	Stats() Stats
}
