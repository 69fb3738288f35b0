// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package diana

import (
	"sync"

	luxlog "github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/sse/kv"
	nolog "github.com/luxfi/sse/log"
	"github.com/luxfi/sse/metrics"
	"github.com/luxfi/sse/rcprf"
	"github.com/luxfi/sse/utils"
)

// State is the server's lifecycle state (§4.4).
type State uint8

const (
	Uninitialised State = iota
	Initialised
	Serving
)

// Server is the Diana server (§4.4): it stores nothing but opaque
// update_token -> masked_index pairs, and answers a SearchRequest by
// expanding the RC-PRF cover it is handed into leaf tokens, deriving each
// leaf's update_token, and looking each one up.
type Server struct {
	mu        sync.Mutex
	state     *utils.Atomic[State]
	tokens    *kv.TokenStore
	indexSize int
	log       luxlog.Logger

	searchCount prometheus.Counter
	insertCount prometheus.Counter
}

// NewServer constructs an uninitialised server over tokens, logging to
// logger (pass nil for a no-op logger) and registering its counters with
// reg (pass nil to skip metrics registration).
func NewServer(tokens *kv.TokenStore, indexSize int, logger luxlog.Logger, reg prometheus.Registerer) *Server {
	if logger == nil {
		logger = nolog.NewNoOpLogger()
	}
	s := &Server{
		state:     utils.NewAtomic(Uninitialised),
		tokens:    tokens,
		indexSize: indexSize,
		log:       logger,
		searchCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diana_server_searches_total",
			Help: "Total number of search requests answered.",
		}),
		insertCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diana_server_inserts_total",
			Help: "Total number of elements inserted.",
		}),
	}
	if reg != nil {
		m := metrics.NewMetrics(reg)
		_ = m.Register(s.searchCount)
		_ = m.Register(s.insertCount)
	}
	return s
}

// Setup transitions the server from Uninitialised to Initialised. It
// succeeds only from Uninitialised; calling it again returns
// ErrInvalidState.
func (s *Server) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Get() != Uninitialised {
		return ErrInvalidState
	}
	s.state.Set(Initialised)
	s.log.Info("diana server initialised")
	return nil
}

// Serve transitions an Initialised server into Serving, the state in which
// Search/Insert/BulkInsert are accepted.
func (s *Server) Serve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Get() != Initialised {
		return ErrInvalidState
	}
	s.state.Set(Serving)
	s.log.Info("diana server serving")
	return nil
}

func (s *Server) requireServing() error {
	if s.state.Get() != Serving {
		return ErrInvalidState
	}
	return nil
}

// Insert stores one UpdateRequest.
func (s *Server) Insert(req *UpdateRequest) error {
	if err := s.requireServing(); err != nil {
		return err
	}
	if err := s.tokens.Put(req.UpdateToken[:], req.MaskedIndex); err != nil {
		return err
	}
	s.insertCount.Inc()
	return nil
}

// BulkInsert atomically stores every UpdateRequest in reqs.
func (s *Server) BulkInsert(reqs []*UpdateRequest) error {
	if err := s.requireServing(); err != nil {
		return err
	}
	batch := s.tokens.NewBatch()
	for _, req := range reqs {
		if err := batch.Put(req.UpdateToken[:], req.MaskedIndex); err != nil {
			return err
		}
	}
	if err := batch.Commit(); err != nil {
		return err
	}
	s.insertCount.Add(float64(len(reqs)))
	return nil
}

// Search answers a SearchRequest serially, returning the document indices
// in leaf order. A leaf whose update_token is absent from the TokenMap is
// silently skipped (NotFound is consumed internally, §7): it can only mean
// the corresponding element was never inserted, which cannot happen for a
// well-formed request derived from a client's own counter, but is
// tolerated defensively for partially replayed stores.
func (s *Server) Search(req *SearchRequest) ([]uint64, error) {
	if err := s.requireServing(); err != nil {
		return nil, err
	}
	s.searchCount.Inc()
	if req.Count == 0 {
		return nil, nil
	}

	constrained := &rcprf.Constrained{Roots: req.Roots}
	leaves, err := constrained.ExpandAllLeaves()
	if err != nil {
		return nil, err
	}

	results := make([]uint64, 0, len(leaves))
	for _, leaf := range leaves {
		index, found, err := s.resolveLeaf(leaf)
		if err != nil {
			return nil, err
		}
		if found {
			results = append(results, index)
		}
	}
	return results, nil
}

// SearchParallel answers req the same way as Search, but distributes the
// constrained cover's subtrees across workerCount worker goroutines (§5):
// the returned slice is the full result set, but its order is not
// guaranteed to match leaf order.
func (s *Server) SearchParallel(req *SearchRequest, workerCount int) ([]uint64, error) {
	if err := s.requireServing(); err != nil {
		return nil, err
	}
	s.searchCount.Inc()
	if req.Count == 0 {
		return nil, nil
	}

	constrained := &rcprf.Constrained{Roots: req.Roots}

	var (
		mu      sync.Mutex
		results []uint64
		firstErr error
	)
	err := constrained.ExpandParallel(workerCount, func(leaf rcprf.LeafToken) {
		index, found, err := s.resolveLeaf(leaf)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		if found {
			results = append(results, index)
		}
	})
	if err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (s *Server) resolveLeaf(leaf rcprf.LeafToken) (index uint64, found bool, err error) {
	updateToken, mask, err := deriveUpdateToken(leaf, s.indexSize)
	if err != nil {
		return 0, false, err
	}
	maskedIndex, err := s.tokens.Get(updateToken[:])
	if err != nil {
		if err == kv.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(maskedIndex) != s.indexSize {
		return 0, false, ErrCorruptData
	}
	plain := make([]byte, s.indexSize)
	xorBytes(plain, mask, maskedIndex)
	return decodeIndex(plain), true, nil
}
