package services

import (
	"context"
	"time"

	"festa-events-pipeline/internal/models"
)

// Keys a DataTourisme graph node must carry before adaptation is attempted.
var requiredKeys = []string{"rdfs:label", "schema:startDate", "schema:endDate", "isLocatedAt"}

// Adapter turns one raw DataTourisme JSON-LD record into a canonical Event,
// or rejects it. Adaptation is a pure transform: the only external touch is
// the read-only region lookup.
type Adapter struct {
	classifier *Classifier
	regions    RegionResolver
	now        func() time.Time
}

// NewAdapter creates an Adapter. Pass NopRegionResolver{} when no postal-code
// lookup collaborator is available.
func NewAdapter(classifier *Classifier, regions RegionResolver) *Adapter {
	return &Adapter{
		classifier: classifier,
		regions:    regions,
		now:        time.Now,
	}
}

// Adapt returns either an adapted Event or a Rejection pairing the raw record
// with the reason it was dropped — never both, never a partial record.
func (a *Adapter) Adapt(ctx context.Context, raw models.RawEvent) (*models.Event, *models.Rejection) {
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, &models.Rejection{Raw: raw, Reason: models.RejectMissingKeys}
		}
	}

	title := LiteralString(raw["rdfs:label"], "")
	if title == "" {
		return nil, &models.Rejection{Raw: raw, Reason: models.RejectNoTitle}
	}

	if !a.classifier.Whitelisted(title) {
		return nil, &models.Rejection{Raw: raw, Reason: models.RejectNotWhitelisted}
	}
	if a.classifier.Blacklisted(title) {
		return nil, &models.Rejection{Raw: raw, Reason: models.RejectBlacklisted}
	}

	startDate, ok := NormalizeDate(raw["schema:startDate"])
	if !ok {
		return nil, &models.Rejection{Raw: raw, Reason: models.RejectNoStartDate}
	}
	endDate, ok := NormalizeDate(raw["schema:endDate"])
	if !ok {
		return nil, &models.Rejection{Raw: raw, Reason: models.RejectNoEndDate}
	}

	city, postalCode, region := a.resolveAddress(ctx, raw)
	if city == "" {
		return nil, &models.Rejection{Raw: raw, Reason: models.RejectNoCity}
	}
	if postalCode == "" {
		postalCode = models.UnknownPostalCode
	}
	if region == "" {
		region = models.UnknownRegion
	}

	description := LiteralString(raw["rdfs:comment"], "")

	event := &models.Event{
		ID:          models.NewEventID(),
		Title:       title,
		City:        city,
		PostalCode:  postalCode,
		Region:      region,
		Latitude:    LiteralString(NestedValue(raw, []string{"isLocatedAt", "schema:geo", "schema:latitude"}, nil), ""),
		Longitude:   LiteralString(NestedValue(raw, []string{"isLocatedAt", "schema:geo", "schema:longitude"}, nil), ""),
		StartDate:   startDate,
		EndDate:     endDate,
		Description: description,
		Keywords:    StringList(raw["@type"]),
		Category:    a.classifier.Categorize(title, description),
		SourceID:    raw.SourceID(),
		ImageURL:    a.extractImageURL(raw),
		IngestedAt:  a.now(),
	}
	return event, nil
}

// resolveAddress walks the isLocatedAt address chain. The region from the
// address graph itself wins over the postal-code lookup; either may be empty.
func (a *Adapter) resolveAddress(ctx context.Context, raw models.RawEvent) (city, postalCode, region string) {
	address, ok := NestedValue(raw, []string{"isLocatedAt", "schema:address"}, nil).(map[string]interface{})
	if !ok {
		return "", "", ""
	}

	city = FirstString(address["schema:addressLocality"], "")
	postalCode = FirstString(address["schema:postalCode"], "")

	if postalCode != "" {
		if resolved, found := a.regions.Region(ctx, postalCode); found {
			region = resolved
		}
	}
	if label := LiteralString(NestedValue(address, []string{"hasAddressCity", "isPartOfRegion", "rdfs:label"}, nil), ""); label != "" {
		region = label
	}
	return city, postalCode, region
}

// extractImageURL follows the main-representation chain to the locator value.
// The locator may be a bare URI list instead of a value object; only the
// object form carries a usable URL.
func (a *Adapter) extractImageURL(raw models.RawEvent) string {
	resource, ok := NestedValue(raw, []string{"hasMainRepresentation", "ebucore:hasRelatedResource"}, nil).(map[string]interface{})
	if !ok {
		return ""
	}
	if locator, ok := resource["ebucore:locator"].(map[string]interface{}); ok {
		if url, ok := locator["@value"].(string); ok {
			return url
		}
	}
	return ""
}
