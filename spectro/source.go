// Package spectro computes descriptors for the latest spectrometer samples of
// the configured data source.
package spectro

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoanBrand/AlloyCalc/config"
	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/log"
	"github.com/RoanBrand/AlloyCalc/mdb_spectro"
	"github.com/RoanBrand/AlloyCalc/sample"
	"github.com/RoanBrand/AlloyCalc/xml_spectro"
)

var ErrNoDataSource = errors.New("no spectrometer data source configured")

type Source struct {
	dataType   string
	dataSource string
	numResults int
	workers    int

	engine   *descriptor.Engine
	elements sample.ElementSource

	// result cache
	maxAge time.Duration
	cLock  sync.RWMutex
	cAge   time.Time
	cache  []sample.Computed
}

// NewSource returns the source configured in conf. Results are cached for
// maxAge; zero disables the cache.
func NewSource(conf *config.Config, engine *descriptor.Engine, elements sample.ElementSource, maxAge time.Duration) *Source {
	return &Source{
		dataType:   strings.ToLower(conf.DataType),
		dataSource: conf.DataSource,
		numResults: conf.NumberOfResults,
		workers:    conf.Workers,
		engine:     engine,
		elements:   elements,
		maxAge:     maxAge,
	}
}

// Records reads the latest samples, newest first.
func (s *Source) Records() ([]sample.Record, error) {
	var recs []sample.Record
	var err error
	switch s.dataType {
	case "mdb":
		recs, err = mdb_spectro.GetResults(s.dataSource, s.numResults)
	case "xml":
		recs, err = xml_spectro.GetResults(s.dataSource, s.numResults)
	default:
		return nil, ErrNoDataSource
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s results from %s: %w", s.dataType, s.dataSource, err)
	}

	if len(recs) == 0 {
		log.Println("0 results found in", s.dataSource)
	}
	if len(recs) > s.numResults {
		recs = recs[:s.numResults]
	}
	return recs, nil
}

// Results returns the latest samples with their descriptors.
func (s *Source) Results(ctx context.Context) ([]sample.Computed, error) {
	// check if cache recent enough
	s.cLock.RLock()
	if s.fresh() {
		defer s.cLock.RUnlock()
		return s.cache, nil
	}

	// is old, get write lock and perform request
	s.cLock.RUnlock()
	s.cLock.Lock()
	defer s.cLock.Unlock()

	// need to check if result still old, otherwise return new result
	if s.fresh() {
		return s.cache, nil
	}

	recs, err := s.Records()
	if err != nil {
		return nil, err
	}

	res, err := sample.Compute(ctx, s.engine, s.elements, recs, s.workers)
	if err != nil {
		return nil, err
	}

	s.cache = res
	s.cAge = time.Now()
	return res, nil
}

func (s *Source) fresh() bool {
	return s.cache != nil && time.Since(s.cAge) < s.maxAge
}
