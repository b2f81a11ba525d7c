package cache

import (
	"errors"

	"github.com/panbanda/codepulse/pkg/models"
)

// Store is a result cache keyed by string.
type Store interface {
	Get(key string) (models.AnalysisResult, bool)
	Put(key string, result models.AnalysisResult) error
}

// Tiered consults its stores in order and back-fills the faster tiers on
// a hit in a slower one.
type Tiered []Store

// Get returns the first hit.
func (t Tiered) Get(key string) (models.AnalysisResult, bool) {
	for i, s := range t {
		if r, ok := s.Get(key); ok {
			for _, faster := range t[:i] {
				_ = faster.Put(key, r)
			}
			return r, true
		}
	}
	return models.AnalysisResult{}, false
}

// Put writes to every tier.
func (t Tiered) Put(key string, result models.AnalysisResult) error {
	var errs []error
	for _, s := range t {
		if err := s.Put(key, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
