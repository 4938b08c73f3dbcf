package core

import "fmt"

// CollectionType identifies one of the biomedical data collections the
// system can search. The set is closed: adding a collection means adding
// a new provider package that registers itself for a new type.
type CollectionType string

const (
	CollectionClinicalStudy   CollectionType = "clinical_study"
	CollectionScientificPaper CollectionType = "scientific_paper"
	CollectionDataDomain      CollectionType = "data_domain"
)

// DefaultCollectionType is used when a search request does not name a
// collection explicitly.
const DefaultCollectionType = CollectionClinicalStudy

// AllCollectionTypes returns the supported collection types in a stable order.
func AllCollectionTypes() []CollectionType {
	return []CollectionType{
		CollectionClinicalStudy,
		CollectionScientificPaper,
		CollectionDataDomain,
	}
}

// ParseCollectionType validates a raw collection type string. An empty
// string resolves to DefaultCollectionType; anything outside the supported
// set is a validation error.
func ParseCollectionType(s string) (CollectionType, error) {
	if s == "" {
		return DefaultCollectionType, nil
	}
	ct := CollectionType(s)
	switch ct {
	case CollectionClinicalStudy, CollectionScientificPaper, CollectionDataDomain:
		return ct, nil
	}
	return "", &ValidationError{
		Field:  "collection_type",
		Reason: fmt.Sprintf("unsupported collection type %q", s),
	}
}

func (c CollectionType) String() string {
	return string(c)
}
