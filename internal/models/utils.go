package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewEventID generates the opaque per-adaptation identifier. It is fresh on
// every run; cross-run dedup goes through SourceID or the natural key.
func NewEventID() string {
	return uuid.New().String()
}

// NaturalKey derives a dedup key from business fields rather than a generated
// identifier. Inputs are normalized so casing and whitespace variants of the
// same event in the same venue and dates collide.
func NaturalKey(title, venue, startDate, endDate string) string {
	input := fmt.Sprintf("%s|%s|%s|%s",
		strings.ToLower(strings.TrimSpace(title)),
		strings.ToLower(strings.TrimSpace(venue)),
		strings.TrimSpace(startDate),
		strings.TrimSpace(endDate),
	)
	hash := sha256.Sum256([]byte(input))
	return "evt_" + hex.EncodeToString(hash[:])[:12]
}

// NewRunID generates an identifier for one pipeline run, used to tag archive
// snapshots.
func NewRunID(timestamp time.Time) string {
	input := fmt.Sprintf("run|%d", timestamp.Unix())
	hash := sha256.Sum256([]byte(input))
	return "run_" + hex.EncodeToString(hash[:])[:8]
}
