package game

import (
	"context"
	"errors"

	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

// MultiSink records a match in every sink, even when earlier ones fail.
type MultiSink []ResultSink

func (m MultiSink) RecordMatch(ctx context.Context, result domain.MatchResult) error {
	var errs []error
	for _, sink := range m {
		if err := sink.RecordMatch(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
