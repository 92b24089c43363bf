// Package state holds the client-side application state and the pure
// transitions on it. Nothing here performs I/O; callers run network
// commands and feed their outcomes back through these functions.
package state

import "github.com/nhle/matchbox/internal/model"

// Notifications is the ordered notification store, most recent first.
// Ids are unique. Every method returns a new value and leaves the
// receiver untouched, so a copy doubles as a snapshot.
//
// Ids passed to Resolve are remembered until the next Set or Clear, and
// later fetches never bring them back.
type Notifications struct {
	items    []model.Notification
	resolved map[string]bool
}

// NewNotifications returns a store holding list.
func NewNotifications(list []model.Notification) Notifications {
	return Notifications{}.Set(list)
}

// Set replaces the whole store with list, keeping its order. A repeated id
// keeps its first occurrence.
func (s Notifications) Set(list []model.Notification) Notifications {
	items := make([]model.Notification, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, n := range list {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		items = append(items, n)
	}
	return Notifications{items: items}
}

// Reload replaces the records with list like Set but keeps the resolved
// ids and leaves them out.
func (s Notifications) Reload(list []model.Notification) Notifications {
	kept := make([]model.Notification, 0, len(list))
	for _, n := range list {
		if !s.resolved[n.ID] {
			kept = append(kept, n)
		}
	}
	next := s.Set(kept)
	next.resolved = s.resolved
	return next
}

// Add inserts n at the front. A record with the same id is replaced.
func (s Notifications) Add(n model.Notification) Notifications {
	items := make([]model.Notification, 0, len(s.items)+1)
	items = append(items, n)
	for _, existing := range s.items {
		if existing.ID != n.ID {
			items = append(items, existing)
		}
	}
	return Notifications{items: items, resolved: s.resolved}
}

// MarkRead sets IsRead on the record with id. Unknown ids are a no-op.
func (s Notifications) MarkRead(id string) Notifications {
	i := s.index(id)
	if i < 0 || s.items[i].IsRead {
		return s
	}
	items := s.Items()
	items[i].IsRead = true
	return Notifications{items: items, resolved: s.resolved}
}

// MarkUnread clears IsRead on the record with id. Unknown ids are a no-op.
func (s Notifications) MarkUnread(id string) Notifications {
	i := s.index(id)
	if i < 0 || !s.items[i].IsRead {
		return s
	}
	items := s.Items()
	items[i].IsRead = false
	return Notifications{items: items, resolved: s.resolved}
}

// Remove drops the record with id. Unknown ids are a no-op.
func (s Notifications) Remove(id string) Notifications {
	if s.index(id) < 0 {
		return s
	}
	items := make([]model.Notification, 0, len(s.items)-1)
	for _, n := range s.items {
		if n.ID != id {
			items = append(items, n)
		}
	}
	return Notifications{items: items, resolved: s.resolved}
}

// Resolve removes the record with id and keeps later fetches from
// pushing it again.
func (s Notifications) Resolve(id string) Notifications {
	next := s.Remove(id)
	resolved := make(map[string]bool, len(s.resolved)+1)
	for k := range s.resolved {
		resolved[k] = true
	}
	resolved[id] = true
	next.resolved = resolved
	return next
}

// Clear empties the store.
func (s Notifications) Clear() Notifications {
	return Notifications{}
}

// Merge pushes the records of fetched that the store does not hold yet
// and returns how many were added. fetched is most recent first and its
// new records land at the front in that order. Known records keep their
// local state and resolved ids are skipped.
func (s Notifications) Merge(fetched []model.Notification) (Notifications, int) {
	var fresh []model.Notification
	seen := make(map[string]bool, len(fetched))
	for _, n := range fetched {
		if seen[n.ID] || s.resolved[n.ID] || s.index(n.ID) >= 0 {
			continue
		}
		seen[n.ID] = true
		fresh = append(fresh, n)
	}
	if len(fresh) == 0 {
		return s, 0
	}
	items := make([]model.Notification, 0, len(fresh)+len(s.items))
	items = append(items, fresh...)
	items = append(items, s.items...)
	return Notifications{items: items, resolved: s.resolved}, len(fresh)
}

// Get returns the record with id.
func (s Notifications) Get(id string) (model.Notification, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Notification{}, false
	}
	return s.items[i], true
}

// Items returns a copy of the records in order.
func (s Notifications) Items() []model.Notification {
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Unread counts records with IsRead unset.
func (s Notifications) Unread() int {
	n := 0
	for _, item := range s.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// Len returns the number of records.
func (s Notifications) Len() int {
	return len(s.items)
}

func (s Notifications) index(id string) int {
	for i, n := range s.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
