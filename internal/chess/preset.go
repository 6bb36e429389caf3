package chess

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// EnginePreset is a named search configuration for the engine oracle.
type EnginePreset struct {
	Name           string
	SkillLevel     int
	Threads        int
	HashMB         int
	MoveTimeMillis int
	NodeCap        int
	DepthCap       int
	Elo            int
}

var presetMu sync.RWMutex

// Engine processes run one per worker, so presets stay single-threaded.
const defaultThreads = 1

var DefaultPresets = map[string]EnginePreset{
	"fast": {
		Name:           "fast",
		SkillLevel:     20,
		Threads:        defaultThreads,
		HashMB:         16,
		MoveTimeMillis: 10,
	},
	"level1": {
		Name:           "level1",
		SkillLevel:     0,
		Threads:        defaultThreads,
		HashMB:         16,
		MoveTimeMillis: 20,
		DepthCap:       5,
		Elo:            600,
	},
	"level2": {
		Name:           "level2",
		SkillLevel:     0,
		Threads:        defaultThreads,
		HashMB:         16,
		MoveTimeMillis: 60,
		DepthCap:       6,
		Elo:            700,
	},
	"level3": {
		Name:           "level3",
		SkillLevel:     1,
		Threads:        defaultThreads,
		HashMB:         24,
		MoveTimeMillis: 80,
		DepthCap:       8,
		Elo:            800,
	},
	"level4": {
		Name:           "level4",
		SkillLevel:     3,
		Threads:        defaultThreads,
		HashMB:         32,
		MoveTimeMillis: 140,
		DepthCap:       10,
		Elo:            1000,
	},
	"level5": {
		Name:           "level5",
		SkillLevel:     7,
		Threads:        defaultThreads,
		HashMB:         48,
		MoveTimeMillis: 200,
		DepthCap:       12,
		Elo:            1200,
	},
	"level6": {
		Name:           "level6",
		SkillLevel:     11,
		Threads:        defaultThreads,
		HashMB:         64,
		MoveTimeMillis: 300,
		DepthCap:       16,
		Elo:            1400,
	},
	"level7": {
		Name:           "level7",
		SkillLevel:     16,
		Threads:        defaultThreads,
		HashMB:         96,
		MoveTimeMillis: 500,
		DepthCap:       20,
		Elo:            1650,
	},
	"level8": {
		Name:           "level8",
		SkillLevel:     20,
		Threads:        defaultThreads,
		HashMB:         128,
		MoveTimeMillis: 1000,
		DepthCap:       30,
		Elo:            1900,
	},
}

func GetPreset(name string) (EnginePreset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "":
		key = "fast"
	case "beginner":
		key = "level1"
	case "intermediate":
		key = "level5"
	case "advanced":
		key = "level7"
	case "master":
		key = "level8"
	}
	presetMu.RLock()
	p, ok := DefaultPresets[key]
	presetMu.RUnlock()
	if ok {
		return p, nil
	}
	return EnginePreset{}, fmt.Errorf("unknown engine preset: %s", name)
}

// PresetNames lists the registered presets in sorted order.
func PresetNames() []string {
	presetMu.RLock()
	defer presetMu.RUnlock()
	names := make([]string, 0, len(DefaultPresets))
	for name := range DefaultPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithMoveTime returns a copy of p searching for ms milliseconds per move.
func (p EnginePreset) WithMoveTime(ms int) EnginePreset {
	if ms > 0 {
		p.MoveTimeMillis = ms
	}
	return p
}

func ValidatePreset(p EnginePreset) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("preset name required")
	}
	if p.SkillLevel < 0 || p.SkillLevel > 20 {
		return fmt.Errorf("preset %s skill level %d out of range 0-20", p.Name, p.SkillLevel)
	}
	if p.HashMB <= 0 {
		return fmt.Errorf("preset %s hash must be > 0", p.Name)
	}
	if p.MoveTimeMillis < 0 || p.DepthCap < 0 || p.NodeCap < 0 {
		return fmt.Errorf("preset %s has negative search limits", p.Name)
	}
	if p.Elo < 0 {
		return fmt.Errorf("preset %s elo must be >= 0", p.Name)
	}
	return nil
}
