package repository

import (
	"encoding/json"
	"reflect"
	"time"
)

// Kind identifies which listing sequence a record belongs to.
type Kind string

const (
	KindVehicule  Kind = "vehicule"
	KindResidence Kind = "residence"
)

// Valid reports whether k names a known listing sequence.
func (k Kind) Valid() bool {
	return k == KindVehicule || k == KindResidence
}

// Reservation status values. The French labels are part of the stored format.
const (
	StatutEnAttente = "en attente"
	StatutConfirmee = "confirmée"
	StatutAnnulee   = "annulée"
)

// Document is the root of the persisted JSON structure. The whole document
// is always read and written as a unit; there are no partial updates.
type Document struct {
	Vehicules    []Listing     `json:"vehicules" validate:"dive"`
	Residences   []Listing     `json:"residences" validate:"dive"`
	Reservations []Reservation `json:"reservations" validate:"dive"`
	Settings     Settings      `json:"settings"`
	LastUpdate   string        `json:"lastUpdate"` // RFC 3339
}

// Listing models one vehicle or residence entry. Ids are unique within
// their own sequence only; a vehicle and a residence may share an id.
type Listing struct {
	ID           int     `json:"id"`
	Titre        string  `json:"titre" validate:"required"`
	Prix         float64 `json:"prix"`
	Categorie    string  `json:"categorie" validate:"omitempty,oneof=vente location"`
	Disponible   *bool   `json:"disponible"`
	Type         string  `json:"type,omitempty"`
	Localisation string  `json:"localisation,omitempty"`
	Image        string  `json:"image,omitempty" validate:"omitempty,url"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

// Reservation references a listing by numeric id. ItemKind disambiguates
// cross-sequence id collisions; it is optional so documents written before
// the field existed still decode.
type Reservation struct {
	ID              int    `json:"id"`
	ItemID          int    `json:"itemId"`
	ItemKind        string `json:"itemKind,omitempty" validate:"omitempty,oneof=vehicule residence"`
	Nom             string `json:"nom" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Telephone       string `json:"telephone"`
	Date            string `json:"date"`
	Statut          string `json:"statut" validate:"omitempty,oneof='en attente' confirmée annulée"`
	Message         string `json:"message,omitempty"`
	DateReservation string `json:"dateReservation,omitempty"`
}

// Settings holds the business-facing configuration shown on every page.
type Settings struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	ContactPhone  string         `json:"contactPhone"`
	ContactEmail  string         `json:"contactEmail"`
	BusinessHours *BusinessHours `json:"businessHours,omitempty"`
}

// BusinessHours is replaced wholesale on settings updates, never deep-merged.
type BusinessHours struct {
	Weekday  string `json:"weekday"`
	Saturday string `json:"saturday"`
	Sunday   string `json:"sunday"`
}

// ApplyDefaults sets fallback values after decode.
func (d *Document) ApplyDefaults() {
	if d.Vehicules == nil {
		d.Vehicules = []Listing{}
	}
	if d.Residences == nil {
		d.Residences = []Listing{}
	}
	if d.Reservations == nil {
		d.Reservations = []Reservation{}
	}
	for i := range d.Reservations {
		if d.Reservations[i].Statut == "" {
			d.Reservations[i].Statut = StatutEnAttente
		}
	}
}

// DefaultDocument returns the bootstrap document used when no stored copy
// can be read: empty sequences and the fixed business settings.
func DefaultDocument() Document {
	return Document{
		Vehicules:    []Listing{},
		Residences:   []Listing{},
		Reservations: []Reservation{},
		Settings: Settings{
			Name:         "GRÂCE AUTO SERVICE-CI-BKT",
			Description:  "Vente • Location • Assurance",
			ContactPhone: "+225 0748735115",
			ContactEmail: "graceautoservice88@gmail.com",
		},
		LastUpdate: time.Now().UTC().Format(time.RFC3339),
	}
}

// Timestamp parses LastUpdate, returning the zero time when absent or
// malformed. The file watcher uses it to order disk and memory versions.
func (d *Document) Timestamp() time.Time {
	if d.LastUpdate == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, d.LastUpdate)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// AreDocumentsEqual compares two Documents ignoring LastUpdate.
// Uses JSON serialization for flexible comparison.
func AreDocumentsEqual(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}

	aBytes, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bBytes, err := json.Marshal(b)
	if err != nil {
		return false
	}

	var aMap, bMap map[string]interface{}
	if err := json.Unmarshal(aBytes, &aMap); err != nil {
		return false
	}
	if err := json.Unmarshal(bBytes, &bMap); err != nil {
		return false
	}

	delete(aMap, "lastUpdate")
	delete(bMap, "lastUpdate")

	return reflect.DeepEqual(aMap, bMap)
}

// CloneDocument deep-copies the document to avoid shared slices between the
// store and its callers.
func CloneDocument(doc Document) (Document, error) {
	bytes, err := json.Marshal(doc)
	if err != nil {
		return Document{}, err
	}
	var copy Document
	if err := json.Unmarshal(bytes, &copy); err != nil {
		return Document{}, err
	}
	copy.ApplyDefaults()
	return copy, nil
}
