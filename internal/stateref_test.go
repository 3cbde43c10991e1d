package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageForRef(t *testing.T) {
	t.Run("walks the parent chain to find the owning page", func(t *testing.T) {
		root := NewLeaf("root", nil)
		child := NewLeaf("root.child", root)
		root.Reg["r"] = &StateRef{ID: "r", Current: 1}

		assert.Same(t, root, GetPageForRef(child, "r"))
	})

	t.Run("returns nil when no page in the chain owns the id", func(t *testing.T) {
		root := NewLeaf("root", nil)
		assert.Nil(t, GetPageForRef(root, "missing"))
	})
}

func TestGetPageRef(t *testing.T) {
	t.Run("a page overlay wins over a scope overlay", func(t *testing.T) {
		ref := &StateRef{ID: "r", Initial: 0}
		page := NewLeaf("p", nil)
		page.Reg["r"] = &StateRef{ID: "r", Current: 99}
		scope := NewScope()

		resolved := GetPageRef(page, scope, ref, false)
		assert.Equal(t, 99, resolved.Current)
	})

	t.Run("with no page and no scope, resolves to the ref itself", func(t *testing.T) {
		ref := &StateRef{ID: "r", Current: 5, Initial: 0}
		assert.Same(t, ref, GetPageRef(nil, nil, ref, false))
	})

	t.Run("with a scope but no owning page, materializes and caches a scope cell", func(t *testing.T) {
		ref := &StateRef{ID: "r", Initial: 42}
		scope := NewScope()

		first := GetPageRef(nil, scope, ref, false)
		assert.Equal(t, 42, first.Current)

		first.Current = 7
		second := GetPageRef(nil, scope, ref, false)
		assert.Same(t, first, second)
		assert.Equal(t, 7, second.Current)
	})
}

func TestInitRefInScope(t *testing.T) {
	t.Run("is idempotent: a second call does not touch an already-materialized cell", func(t *testing.T) {
		ref := &StateRef{ID: "r", Initial: 1}
		scope := NewScope()

		InitRefInScope(scope, ref, false, false, false)
		scope.Reg["r"].Current = 99

		InitRefInScope(scope, ref, false, false, false)
		assert.Equal(t, 99, scope.Reg["r"].Current)
	})

	t.Run("an idMap value takes priority over Initial and Before", func(t *testing.T) {
		ref := &StateRef{ID: "r", Initial: 1, Before: []DeriveCommand{
			MapCommand{From: &StateRef{ID: "src", Current: 5}},
		}}
		scope := NewScope()
		scope.Values.IDMap["r"] = 123

		InitRefInScope(scope, ref, false, false, false)
		assert.Equal(t, 123, scope.Reg["r"].Current)
	})

	t.Run("a sidMap value is used when the sid has not already been assigned", func(t *testing.T) {
		ref := &StateRef{ID: "r", Sid: "s1", Initial: 0}
		scope := NewScope()
		scope.Values.SidMap["s1"] = "restored"

		InitRefInScope(scope, ref, false, false, false)
		assert.Equal(t, "restored", scope.Reg["r"].Current)
	})

	t.Run("map derivation copies the upstream ref's current value", func(t *testing.T) {
		src := &StateRef{ID: "src", Initial: 10}
		ref := &StateRef{ID: "r", Initial: 0, Before: []DeriveCommand{
			MapCommand{From: src},
		}}
		scope := NewScope()

		InitRefInScope(scope, ref, false, false, false)
		assert.Equal(t, 10, scope.Reg["r"].Current)
	})

	t.Run("map derivation applies Fn to the upstream value", func(t *testing.T) {
		src := &StateRef{ID: "src", Initial: 10}
		ref := &StateRef{ID: "r", Initial: 0, Before: []DeriveCommand{
			MapCommand{From: src, Fn: func(v any) any { return v.(int) * 2 }},
		}}
		scope := NewScope()

		InitRefInScope(scope, ref, false, false, false)
		assert.Equal(t, 20, scope.Reg["r"].Current)
	})

	t.Run("field derivation clones once and writes each field from its source", func(t *testing.T) {
		type point struct{ X, Y int }

		x := &StateRef{ID: "x", Initial: 3}
		y := &StateRef{ID: "y", Initial: 4}
		ref := &StateRef{ID: "p", Initial: &point{}, Before: []DeriveCommand{
			FieldCommand{From: x, Field: "X"},
			FieldCommand{From: y, Field: "Y"},
		}}
		scope := NewScope()

		InitRefInScope(scope, ref, false, false, false)
		assert.Equal(t, &point{X: 3, Y: 4}, scope.Reg["p"].Current)
	})

	t.Run("softRead with no idMap/sidMap hit leaves the cell at Initial and skips Before", func(t *testing.T) {
		src := &StateRef{ID: "src", Initial: 10}
		ref := &StateRef{ID: "r", Initial: -1, Before: []DeriveCommand{
			MapCommand{From: src},
		}}
		scope := NewScope()

		InitRefInScope(scope, ref, false, false, true)
		assert.Equal(t, -1, scope.Reg["r"].Current)
	})

	t.Run("a NoInit ref only derives Before when the call is a get-state or kernel call", func(t *testing.T) {
		src := &StateRef{ID: "src", Initial: 10}

		t.Run("plain resolution leaves NoInit at Initial", func(t *testing.T) {
			ref := &StateRef{ID: "r", Initial: -1, NoInit: true, Before: []DeriveCommand{
				MapCommand{From: src},
			}}
			scope := NewScope()

			InitRefInScope(scope, ref, false, false, false)
			assert.Equal(t, -1, scope.Reg["r"].Current)
		})

		t.Run("a get-state call forces derivation even under NoInit", func(t *testing.T) {
			ref := &StateRef{ID: "r", Initial: -1, NoInit: true, Before: []DeriveCommand{
				MapCommand{From: src},
			}}
			scope := NewScope()

			InitRefInScope(scope, ref, true, false, false)
			assert.Equal(t, 10, scope.Reg["r"].Current)
		})
	})
}
