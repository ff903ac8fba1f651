package compute

import (
	"context"

	"gophi/domain/core"
	"gophi/domain/network"
	"gophi/models"
)

// Concept computes the concept of mechanism in s. Results are memoized when
// CacheConcepts is set.
func (e *Engine) Concept(s *network.Subsystem, mechanism []int) (models.Concept, error) {
	if err := checkNodes(s, "mechanism", mechanism); err != nil {
		return models.Concept{}, err
	}
	return e.concept(s, mechanism), nil
}

func (e *Engine) concept(s *network.Subsystem, mechanism []int) models.Concept {
	if !e.cfg.CacheConcepts {
		return e.conceptWith(s, mechanism, s, s)
	}
	c := e.cache.Concept(e.conceptKey(s, mechanism), func() models.Concept {
		return e.conceptWith(s, mechanism, s, s)
	})
	c.Subsystem = s
	return c
}

// conceptWith computes a concept whose cause is taken in causeSystem and
// whose effect in effectSystem. Concept-style cuts cut only one of them.
func (e *Engine) conceptWith(s *network.Subsystem, mechanism []int, causeSystem, effectSystem *network.Subsystem) models.Concept {
	return models.Concept{
		Mechanism: mechanism,
		Cause:     e.findMICE(causeSystem, core.Cause, mechanism),
		Effect:    e.findMICE(effectSystem, core.Effect, mechanism),
		Subsystem: s,
	}
}

// CES computes the cause-effect structure of s over mechanisms, or over
// every nonempty subset of its nodes when mechanisms is nil. Only concepts
// with positive phi are kept.
func (e *Engine) CES(ctx context.Context, s *network.Subsystem, mechanisms [][]int) (models.CES, error) {
	return e.ces(ctx, s, mechanisms, func(m []int) models.Concept {
		return e.concept(s, m)
	})
}

// CESWith is CES with causes and effects taken in separate subsystems.
func (e *Engine) CESWith(ctx context.Context, s *network.Subsystem, mechanisms [][]int, causeSystem, effectSystem *network.Subsystem) (models.CES, error) {
	return e.ces(ctx, s, mechanisms, func(m []int) models.Concept {
		return e.conceptWith(s, m, causeSystem, effectSystem)
	})
}

func (e *Engine) ces(ctx context.Context, s *network.Subsystem, mechanisms [][]int, concept func([]int) models.Concept) (models.CES, error) {
	if mechanisms == nil {
		mechanisms = core.Powerset(s.NodeIndices(), true)
	}
	for _, m := range mechanisms {
		if err := checkNodes(s, "mechanism", m); err != nil {
			return nil, err
		}
	}

	concepts := make([]models.Concept, len(mechanisms))
	if e.cfg.ParallelConceptEvaluation {
		err := e.pool.forEach(ctx, len(mechanisms), func(ctx context.Context, i int) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			concepts[i] = concept(mechanisms[i])
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		for i, m := range mechanisms {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			concepts[i] = concept(m)
		}
	}

	out := models.CES{}
	for _, c := range concepts {
		if c.Phi() > 0 {
			out = append(out, c)
		}
	}
	out.Sort()
	return out, nil
}

// ConceptualInfo is the distance of s's cause-effect structure from the
// empty structure.
func (e *Engine) ConceptualInfo(ctx context.Context, s *network.Subsystem) (float64, error) {
	ces, err := e.CES(ctx, s, nil)
	if err != nil {
		return 0, err
	}
	return e.CESDistance(ces, models.CES{}), nil
}
