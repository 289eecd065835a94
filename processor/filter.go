package processor

import (
	"strings"

	"github.com/driftlog/driftlog/core"
)

// FilterAll drops every record; useful to mute a chain entirely.
func FilterAll(*core.Record) core.Action {
	return core.Drop
}

// DropEmptyName drops records whose channel name is empty.
func DropEmptyName(r *core.Record) core.Action {
	if r.Name == "" {
		return core.Drop
	}
	return core.Continue
}

// FilterByName returns a processor passing only records whose name
// starts with the given parent channel.
func FilterByName(parent string) core.Processor {
	return func(r *core.Record) core.Action {
		if strings.HasPrefix(r.Name, parent) {
			return core.Continue
		}
		return core.Drop
	}
}

// FilterByLevel returns a processor enforcing per-channel minimum
// levels. The record's dot-separated name is walked from the most to
// the least specific component; the first configured ancestor decides.
// Unconfigured channels pass.
func FilterByLevel(levelPerChannel map[string]int) core.Processor {
	return func(r *core.Record) core.Action {
		name := r.Name
		for {
			if min, ok := levelPerChannel[name]; ok {
				if r.Level.No < min {
					return core.Drop
				}
				return core.Continue
			}
			i := strings.LastIndexByte(name, '.')
			if i < 0 {
				return core.Continue
			}
			name = name[:i]
		}
	}
}

// FilterList drops records whose channel (or any ancestor) is
// blacklisted, unless it is also whitelisted.
type FilterList struct {
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// NewFilterList creates a FilterList; the whitelist may be nil.
func NewFilterList(blacklist, whitelist []string) *FilterList {
	f := &FilterList{
		whitelist: make(map[string]struct{}, len(whitelist)),
		blacklist: make(map[string]struct{}, len(blacklist)),
	}
	for _, n := range whitelist {
		f.whitelist[n] = struct{}{}
	}
	for _, n := range blacklist {
		f.blacklist[n] = struct{}{}
	}
	return f
}

// Processor adapts the FilterList to the chain signature.
func (f *FilterList) Processor() core.Processor {
	return func(r *core.Record) core.Action {
		var white, black bool
		walkChannel(r.Name, func(part string) {
			if _, ok := f.whitelist[part]; ok {
				white = true
			}
			if _, ok := f.blacklist[part]; ok {
				black = true
			}
		})
		if black && !white {
			return core.Drop
		}
		return core.Continue
	}
}

// WhitelistLevel passes only whitelisted channels, each with its own
// minimum level.
type WhitelistLevel struct {
	levels map[string]int
}

// NewWhitelistLevel creates a WhitelistLevel from channel name to
// minimum level number.
func NewWhitelistLevel(levels map[string]int) *WhitelistLevel {
	return &WhitelistLevel{levels: levels}
}

// Processor adapts the WhitelistLevel to the chain signature.
func (w *WhitelistLevel) Processor() core.Processor {
	return func(r *core.Record) core.Action {
		pass := false
		walkChannel(r.Name, func(part string) {
			if min, ok := w.levels[part]; ok && r.Level.No >= min {
				pass = true
			}
		})
		if pass {
			return core.Continue
		}
		return core.Drop
	}
}

// walkChannel visits every ancestor prefix of a dot-separated name,
// from "a" up to "a.b.c".
func walkChannel(name string, visit func(part string)) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			visit(name[:i])
		}
	}
	visit(name)
}
