package app

import (
	"context"
	stderrors "errors"
	"fmt"

	"gophi/adapters/excel"
	"gophi/domain/core"
	"gophi/domain/distance"
	"gophi/domain/network"
	"gophi/domain/partition"
	"gophi/internal"
	"gophi/internal/cache"
	"gophi/internal/compute"
	"gophi/internal/config"
	"gophi/internal/errors"
	"gophi/models"
	"gophi/ports"
)

// AnalysisService runs irreducibility analyses of network files and
// built-in example networks
type AnalysisService struct {
	cfg    *config.Config
	cache  *cache.Cache
	engine *compute.Engine
	logger *internal.Logger
}

// AnalysisRequest selects a network, its state and the subsystem to analyze
type AnalysisRequest struct {
	Network string        `json:"network,omitempty"` // example name or file path
	Spec    *network.Spec `json:"spec,omitempty"`    // inline network, overrides Network
	State   []int         `json:"state,omitempty"`
	Nodes   []int         `json:"nodes,omitempty"`
	Measure string        `json:"measure,omitempty"`
}

// ComplexesRequest selects which candidate subsystems to report
type ComplexesRequest struct {
	AnalysisRequest
	All   bool `json:"all,omitempty"`   // every candidate, including reducible ones
	Major bool `json:"major,omitempty"` // only the major complex
}

// FlushResult reports what a cache flush dropped
type FlushResult struct {
	Concepts int `json:"concepts"`
	SIAs     int `json:"sias"`
}

// NewAnalysisService creates an analysis service. store may be nil for a
// memory-only cache.
func NewAnalysisService(cfg *config.Config, store ports.SIAStore, logger *internal.Logger) *AnalysisService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	c := cache.New(store, logger)
	return &AnalysisService{
		cfg:    cfg,
		cache:  c,
		engine: compute.NewEngine(cfg.Phi, c, logger),
		logger: logger.WithComponent("Analysis"),
	}
}

// Config returns the service configuration
func (s *AnalysisService) Config() *config.Config { return s.cfg }

// SIA runs the system irreducibility analysis of the requested subsystem
func (s *AnalysisService) SIA(ctx context.Context, req AnalysisRequest) (*SIAReport, error) {
	e, err := s.engineFor(req)
	if err != nil {
		return nil, err
	}
	spec, sub, err := s.subsystem(req)
	if err != nil {
		return nil, err
	}

	sia, err := e.SIA(ctx, sub)
	if err != nil {
		return nil, domainError(err)
	}
	report := NewSIAReport(spec.Name, sia)
	return &report, nil
}

// CES computes the cause-effect structure of the requested subsystem
func (s *AnalysisService) CES(ctx context.Context, req AnalysisRequest) (*CESReport, error) {
	e, err := s.engineFor(req)
	if err != nil {
		return nil, err
	}
	spec, sub, err := s.subsystem(req)
	if err != nil {
		return nil, err
	}

	ces, err := e.CES(ctx, sub, nil)
	if err != nil {
		return nil, domainError(err)
	}
	info, err := e.ConceptualInfo(ctx, sub)
	if err != nil {
		return nil, domainError(err)
	}
	s.logger.Info("CES of %s: %d concepts", sub, len(ces))

	return &CESReport{
		Network:        spec.Name,
		Nodes:          sub.NodeIndices(),
		State:          sub.State(),
		Concepts:       NewConceptReports(ces, sub.Network().Label),
		SmallPhiSum:    ces.PhiSum(),
		ConceptualInfo: info,
	}, nil
}

// Complexes analyzes the candidate subsystems of the requested network
func (s *AnalysisService) Complexes(ctx context.Context, req ComplexesRequest) (*ComplexesReport, error) {
	e, err := s.engineFor(req.AnalysisRequest)
	if err != nil {
		return nil, err
	}
	spec, err := s.loadSpec(req.AnalysisRequest)
	if err != nil {
		return nil, err
	}
	net, err := spec.Build()
	if err != nil {
		return nil, domainError(err)
	}

	var (
		sias []*models.SIA
		mode string
	)
	switch {
	case req.Major:
		mode = "major"
		var major *models.SIA
		major, err = e.MajorComplex(ctx, net, spec.State)
		sias = []*models.SIA{major}
	case req.All:
		mode = "all"
		sias, err = e.AllComplexes(ctx, net, spec.State)
	default:
		mode = "complexes"
		sias, err = e.Complexes(ctx, net, spec.State)
	}
	if err != nil {
		return nil, domainError(err)
	}
	s.logger.Info("%s of %d-node network: %d subsystems", mode, net.Size(), len(sias))

	report := &ComplexesReport{Network: spec.Name, Mode: mode, Complexes: make([]SIAReport, len(sias))}
	for i, sia := range sias {
		report.Complexes[i] = NewSIAReport(spec.Name, sia)
	}
	return report, nil
}

// Cuts lists the cuts an SIA of the requested subsystem evaluates
func (s *AnalysisService) Cuts(req AnalysisRequest) (*CutsReport, error) {
	spec, sub, err := s.subsystem(req)
	if err != nil {
		return nil, err
	}

	nodes := sub.NodeIndices()
	var cuts []partition.Cut
	if s.cfg.Phi.SystemCuts == config.SystemCutsConceptStyle {
		for _, direction := range core.Directions {
			cuts = append(cuts, partition.ConceptStyleCuts(direction, nodes)...)
		}
	} else {
		cuts = partition.SIACuts(nodes, s.cfg.Phi.CutOneApproximation)
	}

	report := &CutsReport{Network: spec.Name, Nodes: nodes, Style: string(s.cfg.Phi.SystemCuts), Cuts: make([]string, len(cuts))}
	for i, c := range cuts {
		report.Cuts[i] = partition.CutString(c)
	}
	return report, nil
}

// FlushCache drops every memoized concept and SIA, including the store's
func (s *AnalysisService) FlushCache(ctx context.Context) (*FlushResult, error) {
	before := s.cache.Stats()
	if err := s.cache.Flush(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("flushed %d concepts and %d SIAs", before.Concepts, before.SIAs)
	return &FlushResult{Concepts: before.Concepts, SIAs: before.SIAs}, nil
}

// CacheStats reports cache usage
func (s *AnalysisService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// engineFor applies per-request overrides to the service engine
func (s *AnalysisService) engineFor(req AnalysisRequest) (*compute.Engine, error) {
	if req.Measure == "" {
		return s.engine, nil
	}
	m, err := distance.ParseMeasure(req.Measure)
	if err != nil {
		return nil, errors.InvalidInput("unknown measure", err)
	}
	cfg := s.cfg.Phi
	cfg.Measure = m
	return s.engine.WithConfig(cfg), nil
}

func (s *AnalysisService) loadSpec(req AnalysisRequest) (network.Spec, error) {
	var spec network.Spec
	switch {
	case req.Spec != nil:
		spec = *req.Spec
	case req.Network == "":
		return network.Spec{}, errors.InvalidInput("no network given", nil)
	default:
		if _, ok := network.ExampleSpecs[req.Network]; ok {
			spec, _ = network.ExampleSpec(req.Network)
			break
		}
		loaded, err := loadNetworkFile(req.Network)
		if err != nil {
			return network.Spec{}, errors.InvalidInput(fmt.Sprintf("cannot load network %q", req.Network), err)
		}
		spec = loaded
	}
	if req.State != nil {
		spec.State = req.State
	}
	if req.Nodes != nil {
		spec.Nodes = req.Nodes
	}
	return spec, nil
}

// loadNetworkFile reads YAML/JSON specs and spreadsheet TPMs
func loadNetworkFile(path string) (network.Spec, error) {
	if excel.IsSpreadsheet(path) {
		return excel.NewDataReader(path).ReadSpec()
	}
	return network.LoadSpec(path)
}

func (s *AnalysisService) subsystem(req AnalysisRequest) (network.Spec, *network.Subsystem, error) {
	spec, err := s.loadSpec(req)
	if err != nil {
		return spec, nil, err
	}
	net, err := spec.Build()
	if err != nil {
		return spec, nil, domainError(err)
	}
	sub, err := spec.Subsystem(net)
	if err != nil {
		return spec, nil, domainError(err)
	}
	return spec, sub, nil
}

// domainError maps domain failures onto application error codes
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.IsAppError(err):
		return err
	case core.IsStateUnreachableError(err):
		return errors.StateUnreachable(err)
	case core.IsInvalidInputError(err):
		return errors.InvalidInput("invalid network input", err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Wrap(err, "analysis failed")
	}
}
