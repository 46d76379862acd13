package replicate

import (
	"strings"

	"dbmirror/internal/schema"
)

// TargetName derives the remote table name for a source table:
// every "." in the qualified name becomes "_", then the suffix is appended.
// dbo.Orders with suffix "bi" becomes dbo_Orders_bi. Deterministic, but not
// injective: distinct sources can collide, which FindCollisions detects.
func TargetName(ref schema.TableRef, suffix string) string {
	return strings.ReplaceAll(ref.Qualified(), ".", "_") + "_" + suffix
}

// FindCollisions groups source tables whose derived target names coincide.
// Only groups with more than one member are returned.
func FindCollisions(tables []schema.TableRef, suffix string) map[string][]schema.TableRef {
	byTarget := make(map[string][]schema.TableRef)
	for _, ref := range tables {
		target := TargetName(ref, suffix)
		byTarget[target] = append(byTarget[target], ref)
	}

	collisions := make(map[string][]schema.TableRef)
	for target, refs := range byTarget {
		if len(refs) > 1 {
			collisions[target] = refs
		}
	}
	return collisions
}
