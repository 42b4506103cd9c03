package mural

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pierrec/lz4/v4"
)

// ErrEmptyProjectID is returned when a snapshot operation is given a blank
// project id.
var ErrEmptyProjectID = errors.New("mural: empty project id")

// saveDebounce is how long the save queue waits for the canvas to go quiet
// before flushing pending snapshots to disk.
const saveDebounce = 650 * time.Millisecond

// Snapshot is the serializable state of one canvas: the node and edge
// collections plus the viewport.
type Snapshot struct {
	Nodes    []*GraphNode `json:"nodes"`
	Edges    []*GraphEdge `json:"edges"`
	Viewport Viewport     `json:"viewport"`
}

// TakeSnapshot deep-copies the graph's current state so the snapshot stays
// stable while the canvas keeps mutating (the save queue serializes it on a
// background goroutine).
func TakeSnapshot(g *Graph, v Viewport) *Snapshot {
	s := &Snapshot{Viewport: v}
	for _, n := range g.Nodes() {
		cp := *n
		cp.Data = maps.Clone(n.Data)
		s.Nodes = append(s.Nodes, &cp)
	}
	for _, e := range g.Edges() {
		cp := *e
		cp.Data = maps.Clone(e.Data)
		s.Edges = append(s.Edges, &cp)
	}
	return s
}

// BuildGraph reconstructs a graph from the snapshot. Duplicate ids in a
// corrupted snapshot surface as ErrDuplicateID.
func (s *Snapshot) BuildGraph() (*Graph, error) {
	g := NewGraph()
	for _, n := range s.Nodes {
		if err := g.InsertNode(n); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		if err := g.InsertEdge(e); err != nil {
			return nil, fmt.Errorf("edge %q: %w", e.ID, err)
		}
	}
	return g, nil
}

// hashKey hashes a project id into a stable filename component.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ProjectSnapshotPath returns the on-disk path for a project's snapshot
// under dir.
func ProjectSnapshotPath(dir, projectID string) string {
	return filepath.Join(dir, hashKey(projectID)+".json")
}

// SaveSnapshot writes the snapshot as JSON via a temp file and an atomic
// rename, so a crash mid-write never leaves a truncated snapshot behind.
func SaveSnapshot(path string, s *Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("mural: marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mural: snapshot dir: %w", err)
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("mural: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("mural: commit snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. A missing file
// surfaces as fs.ErrNotExist via errors.Is.
func LoadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mural: read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("mural: decode snapshot: %w", err)
	}
	return &s, nil
}

// DeleteProjectSnapshot removes a project's snapshot. Deleting a project
// that was never saved is not an error.
func DeleteProjectSnapshot(dir, projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrEmptyProjectID
	}
	err := os.Remove(ProjectSnapshotPath(dir, projectID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("mural: delete snapshot: %w", err)
	}
	return nil
}

// EncodeSnapshot serializes the snapshot to lz4-compressed base64, the
// compact form used for clipboard export and cross-project transfer.
func EncodeSnapshot(s *Snapshot) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("mural: marshal snapshot: %w", err)
	}
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("mural: compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("mural: compress snapshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(encoded string) (*Snapshot, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("mural: decode snapshot: %w", err)
	}
	zr := lz4.NewReader(bytes.NewReader(compressed))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("mural: decompress snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("mural: decode snapshot: %w", err)
	}
	return &s, nil
}

type saveRequest struct {
	projectID string
	snap      *Snapshot
}

// SaveQueue debounces canvas saves on a background goroutine. Rapid edits
// enqueue many snapshots; only the latest per project is written, and only
// once the queue has been quiet for the debounce window. Close flushes
// whatever is still pending.
type SaveQueue struct {
	dir      string
	debounce time.Duration
	ch       chan saveRequest
	done     chan struct{}

	// OnError observes background save failures. Optional; called from the
	// worker goroutine.
	OnError func(projectID string, err error)
}

// NewSaveQueue starts a save worker writing snapshots under dir.
func NewSaveQueue(dir string) *SaveQueue {
	q := &SaveQueue{
		dir:      dir,
		debounce: saveDebounce,
		ch:       make(chan saveRequest, 64),
		done:     make(chan struct{}),
	}
	go q.worker()
	return q
}

// Enqueue schedules a snapshot save for the given project, superseding any
// pending snapshot for the same project. Must not be called after Close.
func (q *SaveQueue) Enqueue(projectID string, s *Snapshot) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrEmptyProjectID
	}
	q.ch <- saveRequest{projectID: projectID, snap: s}
	return nil
}

// Close stops the worker after flushing pending snapshots. Blocks until the
// flush completes.
func (q *SaveQueue) Close() {
	close(q.ch)
	<-q.done
}

func (q *SaveQueue) worker() {
	pending := make(map[string]*Snapshot)

	flush := func() {
		for id, snap := range pending {
			if err := SaveSnapshot(ProjectSnapshotPath(q.dir, id), snap); err != nil && q.OnError != nil {
				q.OnError(id, err)
			}
			delete(pending, id)
		}
	}

	for {
		select {
		case r, ok := <-q.ch:
			if !ok {
				flush()
				close(q.done)
				return
			}
			pending[r.projectID] = r.snap
		case <-time.After(q.debounce):
			flush()
		}
	}
}
