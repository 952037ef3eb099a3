package importer

import (
	"fmt"
	"strings"

	"github.com/campusdesk/import-service/internal/models"
)

// ExistingKey is one existing document's identity for duplicate
// comparison: its id plus the raw value of the key field.
type ExistingKey struct {
	ID  string
	Key string
}

// KeyFunc extracts the raw duplicate key from a valid item.
type KeyFunc func(item *models.ImportItem) string

// MatchFunc reports whether a normalized candidate key collides with a
// normalized existing key.
type MatchFunc func(key, existing string) bool

// Detector flags valid items that already exist in the target
// collection. Advisory only: it never mutates anything and never
// blocks a commit. The caller decides whether flagged rows are
// skipped or imported anyway.
type Detector struct {
	keyOf KeyFunc
	match MatchFunc
}

func NewDetector(keyOf KeyFunc, match MatchFunc) *Detector {
	return &Detector{keyOf: keyOf, match: match}
}

// NewQuestionDetector matches on exact normalized question text.
func NewQuestionDetector() *Detector {
	return NewDetector(
		func(item *models.ImportItem) string {
			if item.Question == nil {
				return ""
			}
			return item.Question.Text
		},
		func(key, existing string) bool {
			return key == existing
		},
	)
}

// NewCourseDetector matches course codes in both containment
// directions, so an upload of CS101 collides with an existing CS101A
// and vice versa.
func NewCourseDetector() *Detector {
	return NewDetector(
		func(item *models.ImportItem) string {
			if item.Course == nil {
				return ""
			}
			return item.Course.Code
		},
		func(key, existing string) bool {
			return strings.Contains(existing, key) || strings.Contains(key, existing)
		},
	)
}

func DetectorFor(entity models.ImportEntity) (*Detector, error) {
	switch entity {
	case models.EntityQuestions:
		return NewQuestionDetector(), nil
	case models.EntityCourses:
		return NewCourseDetector(), nil
	default:
		return nil, fmt.Errorf("no duplicate detector for entity %q", entity)
	}
}

// NormalizeKey case-folds and trims a raw key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Detect returns the items whose normalized key matches any existing
// document's normalized key, in input row order. Items without a key
// are never flagged.
func (d *Detector) Detect(items []*models.ImportItem, existing []ExistingKey) []models.Duplicate {
	if len(items) == 0 || len(existing) == 0 {
		return nil
	}

	normalized := make([]ExistingKey, 0, len(existing))
	for _, e := range existing {
		if key := NormalizeKey(e.Key); key != "" {
			normalized = append(normalized, ExistingKey{ID: e.ID, Key: key})
		}
	}

	var duplicates []models.Duplicate
	for _, item := range items {
		key := NormalizeKey(d.keyOf(item))
		if key == "" {
			continue
		}
		for _, e := range normalized {
			if d.match(key, e.Key) {
				duplicates = append(duplicates, models.Duplicate{
					Row:        item.Row,
					Key:        key,
					ExistingID: e.ID,
				})
				break
			}
		}
	}
	return duplicates
}
