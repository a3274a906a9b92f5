package cache

import "fmt"

// Keyer derives cache keys. Implementations must return distinct keys for
// any two inputs that can produce different results.
type Keyer interface {
	// NetsKey is the key of an extraction result.
	NetsKey(snapshotHash string, opts NetsKeyOpts) string
	// ArtifactKey is the key of one rendered output format.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// NetsKeyOpts lists the extraction settings that change a result.
type NetsKeyOpts struct {
	GridUnit   float64 `json:"grid_unit"`
	CellFactor float64 `json:"cell_factor"`
	NodeOnly   bool    `json:"node_only"`
	Cleanup    bool    `json:"cleanup"`
}

// ArtifactKeyOpts lists the rendering settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Scale    float64 `json:"scale"`
	NodeOnly bool    `json:"node_only"`
	Cleanup  bool    `json:"cleanup"`
	Labels   bool    `json:"labels"`
}

// DefaultKeyer produces keys of the form "type:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) NetsKey(snapshotHash string, opts NetsKeyOpts) string {
	return hashKey("nets", snapshotHash, opts)
}

func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), snapshotHash, opts)
}
