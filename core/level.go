package core

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// Level pairs a numeric severity with its canonical name.
type Level struct {
	No   int
	Name string
}

// Canonical levels. The numeric spacing leaves room for custom levels
// registered at runtime.
var (
	DebugLevel    = Level{No: 10, Name: "DEBUG"}
	InfoLevel     = Level{No: 20, Name: "INFO"}
	WarningLevel  = Level{No: 30, Name: "WARNING"}
	ErrorLevel    = Level{No: 40, Name: "ERROR"}
	CriticalLevel = Level{No: 50, Name: "CRITICAL"}
)

// Sentinels bounding the range available to custom levels. minLevelNo
// also acts as the "no handlers" marker for the Core's minimum handler
// level, so registered levels must stay strictly inside the range.
const (
	minLevelNo = 0
	maxLevelNo = math.MaxInt32
)

func (l Level) String() string {
	return l.Name
}

// levels maps every lookup representation of a level (number, name,
// single-letter short code) to its canonical Level. Writes are rare
// (RegisterLevel), reads happen on every log call.
type levels struct {
	mu     sync.RWMutex
	byNo   map[int]Level
	byName map[string]Level
}

func newLevels() *levels {
	ls := &levels{
		byNo:   make(map[int]Level, 8),
		byName: make(map[string]Level, 16),
	}
	for _, l := range []Level{DebugLevel, InfoLevel, WarningLevel, ErrorLevel, CriticalLevel} {
		ls.insert(l)
	}
	return ls
}

// insert adds all lookup keys for l. Callers hold the write lock or own
// the registry exclusively. An earlier level keeps its short code when
// a later name starts with the same letter.
func (ls *levels) insert(l Level) {
	ls.byNo[l.No] = l
	ls.byName[l.Name] = l
	if _, taken := ls.byName[l.Name[:1]]; !taken {
		ls.byName[l.Name[:1]] = l
	}
}

// get resolves a level given by number, full name, single-letter short
// code or an existing Level value.
func (ls *levels) get(key any) (Level, error) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()

	switch k := key.(type) {
	case Level:
		if l, ok := ls.byNo[k.No]; ok {
			return l, nil
		}
	case int:
		if l, ok := ls.byNo[k]; ok {
			return l, nil
		}
	case string:
		if l, ok := ls.byName[strings.ToUpper(k)]; ok {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("invalid level %v: does not exist", key)
}

// register adds a custom level. Built-in and already-registered
// severities cannot be overwritten, by number or by name.
func (ls *levels) register(no int, name string) (Level, error) {
	if no <= minLevelNo || no >= maxLevelNo {
		return Level{}, fmt.Errorf("level number %d outside the allowed range (%d, %d)", no, minLevelNo, maxLevelNo)
	}
	if name == "" {
		return Level{}, fmt.Errorf("level name must not be empty")
	}
	name = strings.ToUpper(name)

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if existing, ok := ls.byNo[no]; ok {
		return Level{}, fmt.Errorf("level number %d already taken by %q", no, existing.Name)
	}
	if existing, ok := ls.byName[name]; ok {
		return Level{}, fmt.Errorf("level name %q already taken by number %d", name, existing.No)
	}
	l := Level{No: no, Name: name}
	ls.insert(l)
	return l, nil
}
