package replicate

import (
	"testing"

	"dbmirror/internal/schema"

	"github.com/stretchr/testify/assert"
)

func TestTargetName(t *testing.T) {
	ref := schema.TableRef{Schema: "dbo", Name: "Orders"}

	assert.Equal(t, "dbo_Orders_bi", TargetName(ref, "bi"))
	assert.Equal(t, "dbo_Orders_v2", TargetName(ref, "v2"))
	assert.Equal(t, TargetName(ref, "bi"), TargetName(ref, "bi"), "derivation must be deterministic")
}

func TestTargetNameReplacesEveryDot(t *testing.T) {
	// A dot inside the table name itself is flattened too, which is exactly
	// why collisions are possible.
	ref := schema.TableRef{Schema: "dbo", Name: "a.b"}
	assert.Equal(t, "dbo_a_b_x", TargetName(ref, "x"))
}

func TestFindCollisions(t *testing.T) {
	tables := []schema.TableRef{
		{Schema: "dbo", Name: "Orders"},
		{Schema: "dbo", Name: "Users"},
		{Schema: "dbo_a", Name: "b"},
		{Schema: "dbo", Name: "a_b"},
	}

	collisions := FindCollisions(tables, "x")
	assert.Len(t, collisions, 1)
	assert.Len(t, collisions["dbo_a_b_x"], 2)
}

func TestFindCollisionsNoneOnDistinctNames(t *testing.T) {
	tables := []schema.TableRef{
		{Schema: "dbo", Name: "Orders"},
		{Schema: "sales", Name: "Orders"},
	}

	assert.Empty(t, FindCollisions(tables, "bi"))
}
