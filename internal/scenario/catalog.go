package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/park285/cheese-montecarlo/internal/chess/openingbook"
	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/internal/montecarlo"
	yaml "gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var defaultFiles embed.FS

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownScenario = errors.New("unknown scenario")
)

type fileScenario struct {
	Name       string            `yaml:"name"`
	ECO        string            `yaml:"eco"`
	Opening    []string          `yaml:"opening"`
	Defense    []string          `yaml:"defense"`
	FEN        string            `yaml:"fen"`
	Pieces     map[string]string `yaml:"pieces"`
	Turn       string            `yaml:"turn"`
	Truncation string            `yaml:"truncation"`
}

type catalogFile struct {
	Scenarios []fileScenario `yaml:"scenarios"`
}

// Catalog is an ordered, immutable list of scenarios.
type Catalog struct {
	scenarios []domain.Scenario
}

// New loads the embedded defaults, or the override file when given. The
// override replaces the default list rather than merging with it.
func New(overridePath string) (*Catalog, error) {
	if path := strings.TrimSpace(overridePath); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read scenario file: %w", err)
		}
		c, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return c, nil
	}
	raw, err := fs.ReadFile(defaultFiles, "scenarios.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded scenarios: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", ErrInvalidScenario)
	}

	seen := make(map[string]struct{}, len(f.Scenarios))
	out := make([]domain.Scenario, 0, len(f.Scenarios))
	for i, entry := range f.Scenarios {
		sc, err := convert(entry)
		if err != nil {
			return nil, fmt.Errorf("scenario #%d: %w", i+1, err)
		}
		key := strings.ToLower(sc.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidScenario, sc.Name)
		}
		seen[key] = struct{}{}
		out = append(out, sc)
	}
	return &Catalog{scenarios: out}, nil
}

func convert(in fileScenario) (domain.Scenario, error) {
	sc := domain.Scenario{
		Name:    strings.TrimSpace(in.Name),
		Opening: trimMoves(in.Opening),
		Defense: trimMoves(in.Defense),
		FEN:     strings.TrimSpace(in.FEN),
		Pieces:  in.Pieces,
		Turn:    domain.Color(strings.ToLower(strings.TrimSpace(in.Turn))),
	}
	if sc.Name == "" {
		return sc, fmt.Errorf("%w: name required", ErrInvalidScenario)
	}

	policy := strings.TrimSpace(in.Truncation)
	if policy != "" {
		p, err := domain.ParseTruncationPolicy(policy)
		if err != nil {
			return sc, fmt.Errorf("%w: %s: %v", ErrInvalidScenario, sc.Name, err)
		}
		sc.Truncation = p
	}

	eco := strings.TrimSpace(in.ECO)
	switch {
	case len(sc.Pieces) > 0:
		if eco != "" || sc.FEN != "" || len(sc.Opening) > 0 || len(sc.Defense) > 0 {
			return sc, fmt.Errorf("%w: %s: pieces cannot be combined with moves, eco or fen", ErrInvalidScenario, sc.Name)
		}
		return sc, nil
	case eco != "":
		if sc.FEN != "" || len(sc.Opening) > 0 {
			return sc, fmt.Errorf("%w: %s: eco replaces opening moves and fen", ErrInvalidScenario, sc.Name)
		}
		entry, err := openingbook.Resolve(eco)
		if err != nil {
			return sc, fmt.Errorf("%w: %s: %v", ErrInvalidScenario, sc.Name, err)
		}
		sc.Opening = entry.Moves
		sc.ECO = entry.Code
		return sc, nil
	}

	if sc.Turn != "" {
		return sc, fmt.Errorf("%w: %s: turn only applies to piece placements", ErrInvalidScenario, sc.Name)
	}
	if sc.FEN == "" {
		sc.ECO = label(sc)
	}
	return sc, nil
}

// label names the opening a move prefix reaches. Prefixes that cannot be
// played get no label; they fail later as setup errors.
func label(sc domain.Scenario) string {
	if len(sc.Opening)+len(sc.Defense) == 0 {
		return ""
	}
	game, err := montecarlo.NewPosition(sc)
	if err != nil {
		return ""
	}
	code, _ := openingbook.Label(game)
	return code
}

func trimMoves(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, mv := range in {
		if s := strings.TrimSpace(mv); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// All returns the scenarios in declaration order.
func (c *Catalog) All() []domain.Scenario {
	return append([]domain.Scenario(nil), c.scenarios...)
}

// Select keeps the named scenarios in catalog order. An empty filter selects
// everything.
func (c *Catalog) Select(names []string) ([]domain.Scenario, error) {
	if len(names) == 0 {
		return c.All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if key := strings.ToLower(strings.TrimSpace(n)); key != "" {
			want[key] = false
		}
	}
	out := make([]domain.Scenario, 0, len(want))
	for _, sc := range c.scenarios {
		key := strings.ToLower(sc.Name)
		if _, ok := want[key]; ok {
			want[key] = true
			out = append(out, sc)
		}
	}
	var missing []string
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if found, ok := want[key]; ok && !found {
			missing = append(missing, strings.TrimSpace(n))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, strings.Join(missing, ", "))
	}
	return out, nil
}
