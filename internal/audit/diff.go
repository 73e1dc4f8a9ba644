package audit

import (
	"fmt"
	"sort"
	"time"

	"github.com/netsentry/netsentry/internal/datastore/entities"
)

// imageOf renders the mutable fields of a rule as the flat map used for
// diffing. Auto-touched timestamps and the identifier are excluded so a
// single-field edit produces a single-field diff.
func imageOf(r *entities.Rule) map[string]any {
	return map[string]any{
		"name":             r.Name,
		"owner_id":         derefOwner(r.OwnerID),
		"pattern":          r.Pattern,
		"enabled":          r.Enabled,
		"notify_on_change": r.NotifyOnChange,
	}
}

// fullImageOf renders the complete row, used as the "old" side of a delete
// diff.
func fullImageOf(r *entities.Rule) map[string]any {
	img := imageOf(r)
	img["id"] = r.ID
	img["created_at"] = r.CreatedAt.UTC().Format(time.RFC3339)
	img["updated_at"] = r.UpdatedAt.UTC().Format(time.RFC3339)
	return img
}

func derefOwner(id *uint) any {
	if id == nil {
		return nil
	}
	return *id
}

// computeDiff emits one record per field whose string representation
// differs between the two images, over the union of their field names, in
// sorted field order. The comparison is textual (nil renders as "null"),
// so differently-typed but textually equal values compare as unchanged.
func computeDiff(oldImg, newImg map[string]any) []entities.FieldDiff {
	fields := make(map[string]struct{}, len(oldImg)+len(newImg))
	for k := range oldImg {
		fields[k] = struct{}{}
	}
	for k := range newImg {
		fields[k] = struct{}{}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	diffs := make([]entities.FieldDiff, 0)
	for _, name := range names {
		oldVal := oldImg[name]
		newVal := newImg[name]
		if stringify(oldVal) != stringify(newVal) {
			diffs = append(diffs, entities.FieldDiff{Field: name, Old: oldVal, New: newVal})
		}
	}
	return diffs
}

func stringify(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
