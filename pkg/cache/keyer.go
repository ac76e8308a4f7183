package cache

import "fmt"

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always produce equal keys.
type Keyer interface {
	// LayoutKey addresses a solved document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// RenderKey addresses a rendered artifact of a solved document.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts holds every option that changes the outcome of a solve.
// TimeBudget is included because an expired solve may return a different
// feasible assignment than an unbounded one.
type LayoutKeyOpts struct {
	Backend          string `json:"backend"`
	DefaultFootprint bool   `json:"default_footprint"`
	MinFootprint     int64  `json:"min_footprint"`
	DomainMin        int64  `json:"domain_min"`
	DomainMax        int64  `json:"domain_max"`
	TimeBudgetMillis int64  `json:"time_budget_ms"`
}

// RenderKeyOpts holds the options of a hierarchy render.
type RenderKeyOpts struct {
	Format     string `json:"format"`
	ShowBoxes  bool   `json:"show_boxes"`
	ShowLayers bool   `json:"show_layers"`
	Labels     bool   `json:"labels"`
}

// DefaultKeyer produces "layout:<sha256>" and "render:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes the document hash together with the solve options.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// RenderKey hashes the layout hash together with the render options.
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}

// keyType extracts the entry type ("layout", "render") from a key, skipping
// any scope prefix.
func keyType(key string) string {
	end := -1
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			end = i
			break
		}
	}
	if end < 0 {
		return "unknown"
	}
	start := end - 1
	for start >= 0 && key[start] != ':' {
		start--
	}
	return key[start+1 : end]
}

// String renders the options for log lines.
func (o LayoutKeyOpts) String() string {
	return fmt.Sprintf("backend=%s footprint=%t/%d domain=[%d,%d] budget=%dms",
		o.Backend, o.DefaultFootprint, o.MinFootprint, o.DomainMin, o.DomainMax, o.TimeBudgetMillis)
}
