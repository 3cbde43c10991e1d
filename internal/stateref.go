package internal

// StateRefID is the dynamic, comparable identity of a state cell.
type StateRefID any

// StateRef is a logical state cell. Current holds the resolved value once
// materialized; Before is an ordered list of derivation commands used to
// lazily build a scope-local overlay of this ref.
type StateRef struct {
	ID      StateRefID
	Current any
	Initial any
	Meta    map[string]any
	Sid     any
	Before  []DeriveCommand
	NoInit  bool
}

// DeriveCommand is one step of a StateRef.Before derivation pipeline. It is
// a closed two-case union, map and field: there is deliberately no third
// Go type implementing this interface for a graph compiler to construct.
type DeriveCommand interface {
	isDeriveCommand()
}

// MapCommand derives a ref's value from an upstream ref, optionally through
// fn; with Fn but no From, Fn is called with nil. If both From and Fn are
// absent the command is a no-op.
type MapCommand struct {
	From *StateRef
	Fn   func(any) any
}

func (MapCommand) isDeriveCommand() {}

// FieldCommand derives a ref's value by shallow-cloning its current value
// (on first use) and writing one field from an upstream ref into it.
type FieldCommand struct {
	From  *StateRef
	Field string
}

func (FieldCommand) isDeriveCommand() {}

// Leaf is a page: a node in the tree of per-instance state overlays. Its
// registry is searched by walking the parent chain.
type Leaf struct {
	Reg    map[StateRefID]*StateRef
	Parent *Leaf
	FullID string
}

// NewLeaf creates an empty page under parent (parent may be nil for a root
// page).
func NewLeaf(fullID string, parent *Leaf) *Leaf {
	return &Leaf{
		Reg:    make(map[StateRefID]*StateRef),
		Parent: parent,
		FullID: fullID,
	}
}

// GetPageForRef walks page's parent chain and returns the nearest page
// whose registry owns id, or nil.
func GetPageForRef(page *Leaf, id StateRefID) *Leaf {
	for p := page; p != nil; p = p.Parent {
		if _, ok := p.Reg[id]; ok {
			return p
		}
	}
	return nil
}

// ScopeValues is the pair of maps a fork's initial state comes from: values
// keyed by state-ref id, and values keyed by a serialization id (sid).
type ScopeValues struct {
	IDMap  map[StateRefID]any
	SidMap map[any]any
}

// Scope is a fork: an isolated state universe with its own lazily-
// materialized state cells, additional graph links, and per-sid bookkeeping.
type Scope struct {
	Reg               map[StateRefID]*StateRef
	Values            ScopeValues
	SidIDMap          map[any]StateRefID
	FromSerialize     bool
	FxCount           *Node
	StoreChange       *Node
	WarnSerializeNode *Node
	AdditionalLinks   map[NodeID]*Seq[*Node]
}

// NewScope creates an empty fork.
func NewScope() *Scope {
	return &Scope{
		Reg:             make(map[StateRefID]*StateRef),
		Values:          ScopeValues{IDMap: make(map[StateRefID]any), SidMap: make(map[any]any)},
		SidIDMap:        make(map[any]StateRefID),
		AdditionalLinks: make(map[NodeID]*Seq[*Node]),
	}
}

// GetPageRef resolves ref to the correct storage cell: a page that owns it,
// else a lazily-materialized scope cell, else the ref itself.
func GetPageRef(page *Leaf, scope *Scope, ref *StateRef, isGetState bool) *StateRef {
	if page != nil {
		if p := GetPageForRef(page, ref.ID); p != nil {
			return p.Reg[ref.ID]
		}
	}

	if scope != nil {
		InitRefInScope(scope, ref, isGetState, false, false)
		return scope.Reg[ref.ID]
	}

	return ref
}

// InitRefInScope idempotently materializes scope.Reg[sourceRef.ID].
// isGetState/isKernelCall force derivation of a `before` pipeline even when
// sourceRef.NoInit is set; softRead skips the `before` pipeline entirely
// and leaves the cell at its initial value unless an idMap/sidMap value is
// already on hand.
func InitRefInScope(scope *Scope, sourceRef *StateRef, isGetState, isKernelCall, softRead bool) {
	if _, ok := scope.Reg[sourceRef.ID]; ok {
		return
	}

	ref := &StateRef{ID: sourceRef.ID, Current: sourceRef.Initial, Meta: sourceRef.Meta}

	switch {
	case hasIDMapValue(scope, sourceRef.ID):
		ref.Current = scope.Values.IDMap[sourceRef.ID]

	case sourceRef.Sid != nil && hasSidMapValue(scope, sourceRef.Sid) && !hasSidAssigned(scope, sourceRef.Sid):
		raw := scope.Values.SidMap[sourceRef.Sid]
		if scope.FromSerialize && !isSerializeIgnore(sourceRef.Meta) {
			ref.Current = applySerializeRead(sourceRef.Meta, raw)
		} else {
			ref.Current = raw
		}

	case len(sourceRef.Before) > 0 && !softRead:
		needToAssign := isGetState || !sourceRef.NoInit || isKernelCall
		cloned := false

		for _, cmd := range sourceRef.Before {
			switch c := cmd.(type) {
			case MapCommand:
				if c.From == nil && c.Fn == nil {
					continue
				}
				if c.From != nil {
					InitRefInScope(scope, c.From, isGetState, isKernelCall, false)
				}
				if needToAssign {
					var value any
					if c.From != nil {
						value = effectiveRef(scope, c.From).Current
					}
					if c.Fn != nil {
						ref.Current = c.Fn(value)
					} else {
						ref.Current = value
					}
				}

			case FieldCommand:
				InitRefInScope(scope, c.From, isGetState, isKernelCall, false)
				if !cloned {
					ref.Current = shallowClone(ref.Current)
					cloned = true
				}
				if needToAssign {
					from := effectiveRef(scope, c.From)
					setField(ref.Current, c.Field, from.Current)
				}
			}
		}

	default:
		// softRead with no idMap/sidMap hit: leave ref.Current at Initial,
		// Before is never walked.
	}

	if sourceRef.Sid != nil {
		scope.SidIDMap[sourceRef.Sid] = sourceRef.ID
	}
	scope.Reg[sourceRef.ID] = ref
}

func hasIDMapValue(scope *Scope, id StateRefID) bool {
	_, ok := scope.Values.IDMap[id]
	return ok
}

func hasSidMapValue(scope *Scope, sid any) bool {
	_, ok := scope.Values.SidMap[sid]
	return ok
}

func hasSidAssigned(scope *Scope, sid any) bool {
	_, ok := scope.SidIDMap[sid]
	return ok
}

func isSerializeIgnore(meta map[string]any) bool {
	if meta == nil {
		return false
	}
	s, _ := meta["serialize"].(string)
	return s == "ignore"
}

func applySerializeRead(meta map[string]any, raw any) any {
	if meta == nil {
		return raw
	}
	serialize, ok := meta["serialize"].(map[string]any)
	if !ok {
		return raw
	}
	read, ok := serialize["read"].(func(any) any)
	if !ok {
		return raw
	}
	return read(raw)
}

// effectiveRef returns the scope's materialized cell for ref if present
// (it always is, right after InitRefInScope(scope, ref, ...) above), else
// ref itself.
func effectiveRef(scope *Scope, ref *StateRef) *StateRef {
	if r, ok := scope.Reg[ref.ID]; ok {
		return r
	}
	return ref
}
