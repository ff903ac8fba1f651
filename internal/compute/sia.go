package compute

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/domain/partition"
	"gophi/internal"
	"gophi/internal/config"
	"gophi/models"
)

// SIA computes the system irreducibility analysis of s: the cut that makes
// the least difference to its cause-effect structure, and how much
// difference that is. Subsystems that cannot be integrated get a null SIA.
func (e *Engine) SIA(ctx context.Context, s *network.Subsystem) (*models.SIA, error) {
	logger := e.logger.WithComponent("SIA")
	if !e.cfg.CacheSIAs {
		return e.runSIA(ctx, s, logger)
	}
	return e.cache.SIA(ctx, e.siaKey(s), s, func(ctx context.Context) (*models.SIA, error) {
		return e.runSIA(ctx, s, logger)
	})
}

func (e *Engine) runSIA(ctx context.Context, s *network.Subsystem, logger *internal.Logger) (*models.SIA, error) {
	start := core.Now()
	runID := core.NewRunID()
	logger.Debug("run %s: evaluating %s", runID, s)

	sia, err := e.computeSIA(ctx, s, runID, logger)
	if err != nil {
		return nil, err
	}
	sia.RunID = runID
	sia.Elapsed = core.Since(start)
	logger.Info("run %s: %s Φ=%g in %s", runID, s, sia.Phi, sia.Elapsed)
	return sia, nil
}

// Phi is the big phi of s.
func (e *Engine) Phi(ctx context.Context, s *network.Subsystem) (float64, error) {
	sia, err := e.SIA(ctx, s)
	if err != nil {
		return 0, err
	}
	return sia.Phi, nil
}

func (e *Engine) computeSIA(ctx context.Context, s *network.Subsystem, runID core.RunID, logger *internal.Logger) (*models.SIA, error) {
	nodes := s.NodeIndices()
	cm := s.ConnectivityMatrix()

	if len(nodes) == 0 {
		logger.Debug("run %s: empty subsystem", runID)
		return models.NullSIA(s), nil
	}
	if !network.IsStronglyConnected(cm, nodes) {
		logger.Debug("run %s: %s is not strongly connected", runID, s)
		return models.NullSIA(s), nil
	}
	if len(nodes) == 1 {
		node := nodes[0]
		if cm[node][node] == 0 || !e.cfg.SingleMicroNodesWithSelfloopsHavePhi {
			logger.Debug("run %s: single node %d has no phi", runID, node)
			return models.NullSIA(s), nil
		}
	}

	unpartitioned, err := e.CES(ctx, s, nil)
	if err != nil {
		return nil, err
	}
	if len(unpartitioned) == 0 {
		logger.Debug("run %s: empty cause-effect structure", runID)
		return models.NullSIA(s), nil
	}

	if e.cfg.SystemCuts == config.SystemCutsConceptStyle {
		return e.conceptStyleSIA(ctx, s, unpartitioned, logger)
	}

	var cuts []partition.Cut
	if len(nodes) == 1 {
		// Only the self-loop can be cut.
		cuts = []partition.Cut{partition.NewSystemCut(nodes, nodes)}
	} else {
		cuts = partition.SIACuts(nodes, e.cfg.CutOneApproximation)
	}

	job := newIrreducibilityJob(e, s, cuts, unpartitioned, e.evaluateSystemCut, logger)
	result, err := job.Run(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return models.NullSIA(s), nil
	}
	return result.sia(s, unpartitioned), nil
}

// evaluateSystemCut builds the cause-effect structure of s under cut and
// measures its distance from the unpartitioned one. Besides the
// unpartitioned mechanisms, every mechanism the cut splits is recomputed:
// such a mechanism may gain phi once its parts are separated.
func (e *Engine) evaluateSystemCut(ctx context.Context, s *network.Subsystem, cut partition.Cut, unpartitioned models.CES) (cutResult, error) {
	cutSubsystem := s.ApplyCut(cut)
	mechanisms := cutMechanisms(cut, unpartitioned)

	partitioned, err := e.CES(ctx, cutSubsystem, mechanisms)
	if err != nil {
		return cutResult{}, err
	}
	return cutResult{
		phi:          e.CESDistance(unpartitioned, partitioned),
		cut:          cut,
		cutSubsystem: cutSubsystem,
		partitioned:  partitioned,
	}, nil
}

// cutMechanisms returns the unpartitioned mechanisms together with every
// mechanism split by cut, ordered by size and then lexicographically.
func cutMechanisms(cut partition.Cut, unpartitioned models.CES) [][]int {
	seen := make(map[string]bool)
	var out [][]int
	add := func(m []int) {
		k := core.FormatNodes(m)
		if !seen[k] {
			seen[k] = true
			out = append(out, m)
		}
	}
	for _, c := range unpartitioned {
		add(c.Mechanism)
	}
	for _, m := range core.Powerset(cut.Indices(), true) {
		if cut.Splits(m) {
			add(m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return core.LessNodes(out[i], out[j])
	})
	return out
}

// conceptStyleSIA evaluates concept-style cuts in each direction and keeps
// the smaller result. The cause direction wins ties.
func (e *Engine) conceptStyleSIA(ctx context.Context, s *network.Subsystem, unpartitioned models.CES, logger *internal.Logger) (*models.SIA, error) {
	var best *cutResult
	for _, direction := range core.Directions {
		cuts := partition.ConceptStyleCuts(direction, s.NodeIndices())
		job := newIrreducibilityJob(e, s, cuts, unpartitioned, e.evaluateConceptStyleCut, logger)
		result, err := job.Run(ctx)
		if err != nil {
			return nil, err
		}
		if result == nil {
			continue
		}
		logger.Debug("%s concept-style Φ=%g", direction, result.phi)
		if best == nil || result.phi < best.phi {
			best = result
		}
	}
	if best == nil {
		return models.NullSIA(s), nil
	}
	return best.sia(s, unpartitioned), nil
}

// evaluateConceptStyleCut recomputes the unpartitioned mechanisms with one
// side of every concept taken in the cut subsystem.
func (e *Engine) evaluateConceptStyleCut(ctx context.Context, s *network.Subsystem, cut partition.Cut, unpartitioned models.CES) (cutResult, error) {
	kcut, ok := cut.(partition.KCut)
	if !ok {
		return cutResult{}, fmt.Errorf("%w: concept-style evaluation of %s", core.ErrInvalidCut, partition.CutString(cut))
	}
	cutSubsystem := s.ApplyCut(cut)
	causeSystem, effectSystem := cutSubsystem, s
	if kcut.Direction == core.Effect {
		causeSystem, effectSystem = s, cutSubsystem
	}

	partitioned, err := e.CESWith(ctx, s, unpartitioned.Mechanisms(), causeSystem, effectSystem)
	if err != nil {
		return cutResult{}, err
	}
	return cutResult{
		phi:          e.CESDistance(unpartitioned, partitioned),
		cut:          cut,
		cutSubsystem: cutSubsystem,
		partitioned:  partitioned,
	}, nil
}

// cutResult is the outcome of evaluating one cut.
type cutResult struct {
	phi          float64
	cut          partition.Cut
	cutSubsystem *network.Subsystem
	partitioned  models.CES
}

func (r *cutResult) sia(s *network.Subsystem, unpartitioned models.CES) *models.SIA {
	return &models.SIA{
		Phi:            r.phi,
		Cut:            r.cut,
		Subsystem:      s,
		CutSubsystem:   r.cutSubsystem,
		CES:            unpartitioned,
		PartitionedCES: r.partitioned,
	}
}

type cutEvaluator func(ctx context.Context, s *network.Subsystem, cut partition.Cut, unpartitioned models.CES) (cutResult, error)

// JobState tracks an irreducibility search.
type JobState int

const (
	JobPending JobState = iota
	JobEvaluating
	JobDone
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobEvaluating:
		return "evaluating"
	default:
		return "done"
	}
}

// reduction is what one cut result did to the running minimum.
type reduction int

const (
	noImprovement reduction = iota
	betterFound
	zeroFound
)

// ComputeSystemIrreducibility searches a list of cuts for the one with the
// smallest CES distance. Sequential and parallel runs share the same
// evaluation and reduction and return the same cut: a zero ends the
// search, otherwise the strict minimum wins with ties going to the lowest
// cut index.
type ComputeSystemIrreducibility struct {
	engine        *Engine
	subsystem     *network.Subsystem
	cuts          []partition.Cut
	unpartitioned models.CES
	evaluate      cutEvaluator
	logger        *internal.Logger
	state         JobState
}

func newIrreducibilityJob(e *Engine, s *network.Subsystem, cuts []partition.Cut, unpartitioned models.CES, evaluate cutEvaluator, logger *internal.Logger) *ComputeSystemIrreducibility {
	return &ComputeSystemIrreducibility{
		engine:        e,
		subsystem:     s,
		cuts:          cuts,
		unpartitioned: unpartitioned,
		evaluate:      evaluate,
		logger:        logger,
		state:         JobPending,
	}
}

// State reports how far the search has progressed.
func (j *ComputeSystemIrreducibility) State() JobState { return j.state }

// Run dispatches on ParallelCutEvaluation.
func (j *ComputeSystemIrreducibility) Run(ctx context.Context) (*cutResult, error) {
	if j.engine.cfg.ParallelCutEvaluation && len(j.cuts) > 1 {
		return j.RunParallel(ctx)
	}
	return j.RunSequential(ctx)
}

// RunSequential evaluates cuts in order, stopping at the first zero.
func (j *ComputeSystemIrreducibility) RunSequential(ctx context.Context) (*cutResult, error) {
	j.state = JobEvaluating
	defer func() { j.state = JobDone }()

	var best *cutResult
	for _, cut := range j.cuts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := j.evaluate(ctx, j.subsystem, cut, j.unpartitioned)
		if err != nil {
			return nil, err
		}
		var outcome reduction
		best, outcome = j.reduce(best, &r)
		if outcome == zeroFound {
			break
		}
	}
	return best, nil
}

// RunParallel evaluates cuts on the worker pool. Once a cut reaches zero,
// cuts after it are skipped; cuts before it still run so the reduction
// sees the same prefix as a sequential run.
func (j *ComputeSystemIrreducibility) RunParallel(ctx context.Context) (*cutResult, error) {
	j.state = JobEvaluating
	defer func() { j.state = JobDone }()

	results := make([]*cutResult, len(j.cuts))
	var firstZero atomic.Int64
	firstZero.Store(int64(len(j.cuts)))

	err := j.engine.pool.forEach(ctx, len(j.cuts), func(ctx context.Context, i int) error {
		if int64(i) > firstZero.Load() {
			return nil
		}
		r, err := j.evaluate(ctx, j.subsystem, j.cuts[i], j.unpartitioned)
		if err != nil {
			return err
		}
		results[i] = &r
		if r.phi == 0 {
			for {
				cur := firstZero.Load()
				if int64(i) >= cur || firstZero.CompareAndSwap(cur, int64(i)) {
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var best *cutResult
	for _, r := range results {
		if r == nil {
			continue
		}
		var outcome reduction
		best, outcome = j.reduce(best, r)
		if outcome == zeroFound {
			break
		}
	}
	return best, nil
}

func (j *ComputeSystemIrreducibility) reduce(best, r *cutResult) (*cutResult, reduction) {
	switch {
	case r.phi == 0:
		j.logger.Trace("cut %s: Φ=0, stopping", r.cut)
		return r, zeroFound
	case best == nil || r.phi < best.phi:
		j.logger.Trace("cut %s: Φ=%g, better", r.cut, r.phi)
		return r, betterFound
	default:
		j.logger.Trace("cut %s: Φ=%g, no improvement", r.cut, r.phi)
		return best, noImprovement
	}
}
