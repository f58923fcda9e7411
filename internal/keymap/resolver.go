package keymap

import "slices"

type scopedAction struct {
	context string
	action  Action
}

// Resolver looks up the action bound to a key in a set of active contexts.
// Contexts are searched in the order given, so an earlier context shadows a
// later one bound to the same key.
type Resolver struct {
	byKey map[string][]scopedAction
}

// NewResolver indexes bindings by key.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{byKey: make(map[string][]scopedAction)}
	for _, b := range bindings {
		for _, k := range b.Keys {
			r.byKey[k] = append(r.byKey[k], scopedAction{context: b.Context, action: b.Action})
		}
	}
	return r
}

// Resolve returns the action bound to key in the first matching context,
// or "" when none is. With no contexts every binding is considered, first
// declared wins.
func (r *Resolver) Resolve(key string, contexts ...string) Action {
	scoped := r.byKey[key]
	if len(contexts) == 0 {
		if len(scoped) == 0 {
			return ""
		}
		return scoped[0].action
	}
	for _, ctx := range contexts {
		for _, s := range scoped {
			if s.context == ctx {
				return s.action
			}
		}
	}
	return ""
}

// KeysFor returns the distinct keys bound to action in any context.
func (r *Resolver) KeysFor(action Action) []string {
	var keys []string
	for k, scoped := range r.byKey {
		for _, s := range scoped {
			if s.action == action {
				keys = append(keys, k)
				break
			}
		}
	}
	slices.Sort(keys)
	return keys
}
