package game

import (
	"log/slog"

	"github.com/pthm-cable/predprey/components"
	"github.com/pthm-cable/predprey/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWindow())
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleWindow measures the population at window end.
func (g *Game) sampleWindow() telemetry.Sample {
	s := telemetry.Sample{
		PreyCount:     g.numPrey,
		PredCount:     g.numPred,
		ResourceTotal: g.resourceField.Total(),
	}

	query := g.entityFilter.Query()
	for query.Next() {
		_, _, energy, org, traits := query.Get()

		if !energy.Alive {
			continue
		}

		if org.Kind == components.KindPrey {
			s.PreyEnergies = append(s.PreyEnergies, energy.Value)
			s.PreyFOVAngles = append(s.PreyFOVAngles, traits.FOVAngle)
			s.PreyFOVDistances = append(s.PreyFOVDistances, traits.FOVDistance)
		} else {
			s.PredEnergies = append(s.PredEnergies, energy.Value)
		}
		s.MaxGeneration = max(s.MaxGeneration, org.Generation)

		g.lifetimeTracker.UpdateEnergy(org.ID, energy.Value)
	}

	return s
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.createSnapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RunID:       g.runID,
		RNGSeed:     g.seed,
		WorldWidth:  g.cfg.World.Width,
		WorldHeight: g.cfg.World.Height,
		GridCols:    g.cfg.World.GridCols,
		GridRows:    g.cfg.World.GridRows,
		Tick:        g.tick,
		Resources:   g.resourceField.EnergiesInto(nil),
		Bookmark:    bookmark,
	}

	query := g.entityFilter.Query()
	for query.Next() {
		pos, motion, energy, org, traits := query.Get()

		if !energy.Alive {
			continue
		}

		brain, ok := g.brains[org.ID]
		if !ok {
			continue
		}

		var lifetime *telemetry.LifetimeStats
		if ls := g.lifetimeTracker.Get(org.ID); ls != nil {
			cp := *ls
			lifetime = &cp
		}

		snapshot.Agents = append(snapshot.Agents, telemetry.AgentState{
			ID:             org.ID,
			Kind:           org.Kind,
			ParentID:       org.ParentID,
			Generation:     org.Generation,
			X:              pos.X,
			Y:              pos.Y,
			Direction:      motion.Direction,
			Velocity:       motion.Velocity,
			Col:            org.Col,
			Row:            org.Row,
			Energy:         energy.Value,
			Age:            org.Age,
			ReproCooldown:  org.ReproCooldown,
			EatingCooldown: org.EatingCooldown,
			Color:          traits.Color,
			FOVAngle:       traits.FOVAngle,
			FOVDistance:    traits.FOVDistance,
			Brain:          brain.MarshalWeights(),
			Lifetime:       lifetime,
		})
	}

	return snapshot
}
