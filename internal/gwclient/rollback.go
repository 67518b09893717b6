package gwclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/logging"
)

// ErrNoSnapshot is returned when there is nothing to roll back to.
var ErrNoSnapshot = errors.New("no configuration snapshot")

// readOnlyKeys are reported by the gateway but never accepted back.
var readOnlyKeys = []string{"fw_ver", "nrf52_fw_ver", "gw_mac", "storage"}

// Snapshot is a gateway document saved before an update.
type Snapshot struct {
	Config      Document
	Timestamp   time.Time
	Description string
}

// RollbackManager keeps the documents a gateway held before each update so
// a failed change can be undone.
type RollbackManager struct {
	client *Client

	mutex        sync.RWMutex
	snapshots    []*Snapshot
	maxSnapshots int
}

// NewRollbackManager creates a rollback manager for client.
func NewRollbackManager(client *Client) *RollbackManager {
	return &RollbackManager{
		client:       client,
		snapshots:    make([]*Snapshot, 0, 10),
		maxSnapshots: 10,
	}
}

// SaveSnapshot records the gateway's current document.
func (rm *RollbackManager) SaveSnapshot(ctx context.Context, description string) error {
	doc, err := rm.client.RefreshConfiguration(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch configuration for snapshot: %w", err)
	}

	rm.mutex.Lock()
	defer rm.mutex.Unlock()
	rm.snapshots = append(rm.snapshots, &Snapshot{Config: doc, Timestamp: time.Now(), Description: description})
	if len(rm.snapshots) > rm.maxSnapshots {
		rm.snapshots = rm.snapshots[1:]
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot, or nil.
func (rm *RollbackManager) LatestSnapshot() *Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	if len(rm.snapshots) == 0 {
		return nil
	}
	return rm.snapshots[len(rm.snapshots)-1]
}

// Snapshots returns all snapshots, oldest first.
func (rm *RollbackManager) Snapshots() []*Snapshot {
	rm.mutex.RLock()
	defer rm.mutex.RUnlock()
	out := make([]*Snapshot, len(rm.snapshots))
	copy(out, rm.snapshots)
	return out
}

// Rollback posts the latest snapshot back to the gateway and verifies it.
// Secrets are not in the snapshot, so the gateway keeps its current ones.
func (rm *RollbackManager) Rollback(ctx context.Context) *VerificationResult {
	snap := rm.LatestSnapshot()
	if snap == nil {
		return &VerificationResult{Error: ErrNoSnapshot}
	}

	doc := snap.Config.Clone()
	for _, k := range readOnlyKeys {
		delete(doc, k)
	}

	logging.Warn("Rolling back gateway configuration",
		zap.String("gateway", rm.client.BaseURL),
		zap.String("snapshot", snap.Description),
		zap.Time("taken", snap.Timestamp),
	)
	return rm.client.UpdateAndVerify(ctx, doc, nil)
}

// SafeUpdate snapshots the gateway, posts doc and verifies it. When the
// update or verification fails after the post, the snapshot is restored.
// The returned result describes the update; rolledBack reports whether the
// restore ran.
func (rm *RollbackManager) SafeUpdate(ctx context.Context, doc Document, opts *VerificationOptions) (res *VerificationResult, rolledBack bool) {
	if err := rm.SaveSnapshot(ctx, "before update"); err != nil {
		return &VerificationResult{Error: err}, false
	}

	if _, err := rm.client.UpdateConfiguration(ctx, doc); err != nil {
		// A rejected document was never applied.
		if IsRejected(err) || IsAuthError(err) {
			return &VerificationResult{Error: err}, false
		}
		return &VerificationResult{Error: err}, rm.restore(ctx)
	}

	res = rm.client.VerifyConfiguration(ctx, doc, opts)
	if res.Success {
		return res, false
	}
	return res, rm.restore(ctx)
}

func (rm *RollbackManager) restore(ctx context.Context) bool {
	if r := rm.Rollback(ctx); r.Error != nil {
		logging.Error("Rollback failed", zap.Error(r.Error))
		return false
	}
	return true
}
