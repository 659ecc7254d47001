package alarm

import (
	"sort"
	"sync"
)

// ActiveAlarms tracks which diagnostics are currently raised so repeated ones
// can be logged quietly.
type ActiveAlarms struct {
	activeAlarms map[string]struct{}
	sync.RWMutex
}

// Add adds alarm to the active set and returns true if it was added. returns false if it already exists.
func (a *ActiveAlarms) Add(alarm string) bool {
	a.Lock()
	defer a.Unlock()
	if a.activeAlarms == nil {
		a.activeAlarms = make(map[string]struct{})
	}
	if _, ok := a.activeAlarms[alarm]; ok {
		return false
	}
	a.activeAlarms[alarm] = struct{}{}
	return true
}

// Retain clears every alarm not in keep and returns the cleared ones.
func (a *ActiveAlarms) Retain(keep ...string) []string {
	a.Lock()
	defer a.Unlock()
	var cleared []string
	for alarm := range a.activeAlarms {
		if !contains(keep, alarm) {
			delete(a.activeAlarms, alarm)
			cleared = append(cleared, alarm)
		}
	}
	sort.Strings(cleared)
	return cleared
}

func (a *ActiveAlarms) List() []string {
	a.RLock()
	defer a.RUnlock()
	list := make([]string, 0, len(a.activeAlarms))
	for alarm := range a.activeAlarms {
		list = append(list, alarm)
	}
	sort.Strings(list)
	return list
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
