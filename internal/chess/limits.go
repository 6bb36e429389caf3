package chess

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-montecarlo/internal/chess/uci"
)

func BuildGoCommand(p EnginePreset) ([]string, error) {
	if err := ValidatePreset(p); err != nil {
		return nil, err
	}

	args := []string{"go"}
	if p.DepthCap > 0 {
		args = append(args, "depth", strconv.Itoa(p.DepthCap))
	}
	if p.MoveTimeMillis > 0 {
		args = append(args, "movetime", strconv.Itoa(p.MoveTimeMillis))
	}
	if p.NodeCap > 0 {
		args = append(args, "nodes", strconv.Itoa(p.NodeCap))
	}

	if len(args) == 1 {
		return nil, fmt.Errorf("preset %s does not define search limits", p.Name)
	}

	return args, nil
}

func FormatGoCommand(p EnginePreset) (string, error) {
	args, err := BuildGoCommand(p)
	if err != nil {
		return "", err
	}
	return strings.Join(args, " "), nil
}

func optionsFromPreset(p EnginePreset) uci.Options {
	return uci.Options{
		Threads:    p.Threads,
		SkillLevel: p.SkillLevel,
		HashMB:     p.HashMB,
		Elo:        p.Elo,
	}
}

func limitsFromPreset(p EnginePreset, timeout time.Duration) uci.Limits {
	return uci.Limits{
		Depth:          p.DepthCap,
		MoveTimeMillis: p.MoveTimeMillis,
		NodeCap:        p.NodeCap,
		Timeout:        timeout,
	}
}
