package telemetry

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/neural"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	brain := neural.NewController(rand.New(rand.NewSource(1)), 4)
	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RunID:       "run-1",
		RNGSeed:     42,
		WorldWidth:  1280,
		WorldHeight: 720,
		GridCols:    16,
		GridRows:    9,
		Tick:        1000,
		Agents: []AgentState{
			{
				ID:            7,
				Kind:          components.KindPredator,
				ParentID:      3,
				Generation:    2,
				X:             150,
				Y:             250,
				Direction:     1.2,
				Velocity:      0.5,
				Col:           1,
				Row:           3,
				Energy:        75,
				Age:           30,
				ReproCooldown: 2,
				Color:         components.RGB{R: 200, G: 10, B: 10},
				FOVAngle:      1.5,
				FOVDistance:   80,
				Brain:         brain.MarshalWeights(),
				Lifetime: &LifetimeStats{
					BirthTick:  100,
					Generation: 2,
					Kills:      4,
					Children:   1,
					PeakEnergy: 95,
				},
			},
		},
		Resources: []float64{1, 2, 3},
		Bookmark: &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != snapshot.RNGSeed || loaded.Tick != snapshot.Tick || loaded.RunID != snapshot.RunID {
		t.Errorf("header mismatch: got %+v", loaded)
	}
	if len(loaded.Agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(loaded.Agents))
	}
	got := loaded.Agents[0]
	if got.Kind != components.KindPredator || got.ParentID != 3 || got.Color != snapshot.Agents[0].Color {
		t.Errorf("agent mismatch: %+v", got)
	}
	if got.Lifetime == nil || got.Lifetime.Kills != 4 {
		t.Errorf("lifetime not restored: %+v", got.Lifetime)
	}
	if len(loaded.Resources) != 3 || loaded.Resources[2] != 3 {
		t.Errorf("resources = %v", loaded.Resources)
	}

	// Restored brain computes the same outputs
	restored, err := neural.FromWeights(got.Brain)
	if err != nil {
		t.Fatalf("FromWeights: %v", err)
	}
	in := [neural.NumInputs]float64{0.3, -0.2, 0.9}
	if restored.Forward(in) != brain.Forward(in) {
		t.Error("restored brain output differs")
	}

	if loaded.Bookmark == nil || loaded.Bookmark.Type != snapshot.Bookmark.Type {
		t.Errorf("bookmark not restored: %+v", loaded.Bookmark)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkPreyCrash,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	expected := filepath.Join(tmpDir, "snapshot_5000_prey_crash.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	data, _ := json.Marshal(Snapshot{Version: SnapshotVersion + 1})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSnapshot(path)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected version error, got %v", err)
	}
}
