// Package cache provides content-addressed caching for pipeline
// artifacts. Repeated runs over an unchanged inventory reuse the cached
// plan and rendered output instead of recomputing them.
package cache

import (
	"context"
	"time"
)

// Cache is the storage backend interface. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry kind. Inventories change rarely, plans
// and artifacts are cheap to keep around for a work session.
const (
	TTLItems    = 24 * time.Hour
	TTLPlan     = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// PlanKeyOpts are the allocation settings that affect a computed plan.
// Two runs with the same item set and the same opts share a plan key.
type PlanKeyOpts struct {
	Start    int
	End      int
	Spacing  int
	Strategy string
	Relocate bool
	Optimize bool
}

// ArtifactKeyOpts are the render settings that affect an output artifact.
type ArtifactKeyOpts struct {
	Format      string
	Detailed    bool
	ShowAssetID bool
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// ItemsKey keys a parsed inventory by its content hash.
	ItemsKey(contentHash string) string

	// PlanKey keys a computed plan by the item hash and allocation opts.
	PlanKey(itemsHash string, opts PlanKeyOpts) string

	// ArtifactKey keys a rendered artifact by the plan hash and render opts.
	ArtifactKey(planHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key builder.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key builder.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

func (k *DefaultKeyer) ItemsKey(contentHash string) string {
	return hashKey("items", contentHash)
}

func (k *DefaultKeyer) PlanKey(itemsHash string, opts PlanKeyOpts) string {
	return hashKey("plan", itemsHash, opts)
}

func (k *DefaultKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", planHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
