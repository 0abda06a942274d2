package keymap

import "slices"

// Resolver maps key strings to actions. Context bindings shadow global
// ones for the same key.
type Resolver struct {
	global   map[string]Action
	byCtx    map[string]map[string]Action
	byAction map[Action][]string // action -> keys (for help)
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		global:   make(map[string]Action),
		byCtx:    make(map[string]map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		m := r.global
		if b.Context != "global" && b.Context != "playback" && b.Context != "list" {
			m = r.byCtx[b.Context]
			if m == nil {
				m = make(map[string]Action)
				r.byCtx[b.Context] = m
			}
		}
		for _, k := range b.Keys {
			m[k] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		slices.Sort(keys)
		r.byAction[action] = slices.Compact(keys)
	}
	return r
}

// Resolve returns the action for a key in context, or "" if not bound.
func (r *Resolver) Resolve(context, key string) Action {
	if a, ok := r.byCtx[context][key]; ok {
		return a
	}
	return r.global[key]
}

// KeysFor returns the keys bound to an action, sorted.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Default is the resolver over All.
var Default = NewResolver(All)
