package models

import "time"

// Sentinel values used when an address component cannot be resolved from the
// source record. The French feeds historically used both spellings.
const (
	UnknownCity       = "Inconnue"
	UnknownPostalCode = "Inconnu"
	UnknownRegion     = "Inconnue"
)

// RawEvent is one record of a source feed before adaptation: a JSON-LD graph
// node or an OpenAgenda event object. No shape is guaranteed; any field may be
// absent, singular, or a list whose first element is authoritative.
type RawEvent map[string]interface{}

// SourceID returns the source identifier of the raw record ("@id" for
// JSON-LD), or "" when absent. This is the natural dedup key against the sink.
func (r RawEvent) SourceID() string {
	if id, ok := r["@id"].(string); ok {
		return id
	}
	return ""
}

// Event is the canonical adapted record inserted into the sinks. It is created
// once per adaptation and never mutated; re-running the pipeline on the same
// source data produces a fresh Event with a new ID, and the sink's dedup query
// on SourceID prevents double storage.
type Event struct {
	ID          string    `json:"id" dynamodbav:"id"`
	Title       string    `json:"titre" dynamodbav:"titre"`
	City        string    `json:"ville" dynamodbav:"ville"`
	PostalCode  string    `json:"cp" dynamodbav:"cp"`
	Region      string    `json:"region" dynamodbav:"region"`
	Latitude    string    `json:"latitude,omitempty" dynamodbav:"latitude"`
	Longitude   string    `json:"longitude,omitempty" dynamodbav:"longitude"`
	StartDate   string    `json:"date_debut" dynamodbav:"date_debut"` // YYYY-MM-DD
	EndDate     string    `json:"date_fin" dynamodbav:"date_fin"`     // YYYY-MM-DD
	Description string    `json:"description,omitempty" dynamodbav:"description"`
	Keywords    []string  `json:"motscles,omitempty" dynamodbav:"motscles"` // source "@type" annotations
	Category    string    `json:"categorie" dynamodbav:"categorie"`
	SourceID    string    `json:"source" dynamodbav:"source"` // original source URI
	ImageURL    string    `json:"image_url,omitempty" dynamodbav:"image_url"`
	IngestedAt  time.Time `json:"ts_entree" dynamodbav:"ts_entree"`
}

// Rejection pairs a rejected raw record with the reason it was dropped.
// Source-data incompleteness is normal input, not a program error.
type Rejection struct {
	Raw    RawEvent `json:"raw"`
	Reason string   `json:"reason"`
}

// Rejection reasons.
const (
	RejectMissingKeys    = "missing required keys"
	RejectNoTitle        = "no title"
	RejectNotWhitelisted = "no whitelist match"
	RejectBlacklisted    = "blacklist match"
	RejectNoStartDate    = "no start date"
	RejectNoEndDate      = "no end date"
	RejectNoCity         = "no resolvable city"
)
