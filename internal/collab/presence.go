package collab

import (
	"maps"
	"slices"
	"sync"
)

// PresenceManager tracks what each user in a diagram room points at.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update stores p for userID. The selection is kept sorted and without
// duplicates or empty ids.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	p.Selection = normalizeSelection(p.Selection)

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

func (pm *PresenceManager) Get(userID string) (*PresencePayload, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.presences[userID]
	return p, ok
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

// SelectedBy returns the users whose selection contains elementID.
func (pm *PresenceManager) SelectedBy(elementID string) []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	var users []string
	for userID, p := range pm.presences {
		if _, ok := slices.BinarySearch(p.Selection, elementID); ok {
			users = append(users, userID)
		}
	}
	slices.Sort(users)
	return users
}

func (pm *PresenceManager) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}

func normalizeSelection(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == "" })
	slices.Sort(out)
	return slices.Compact(out)
}
