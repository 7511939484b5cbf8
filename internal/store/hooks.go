package store

import (
	"context"
	"fmt"

	"github.com/pbaille/zhouyi/internal/domain"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/pbaille/zhouyi/internal/sessions"
)

// HistoryHooks records every resolved session, and its interpretation
// once fetched, as a reading in s.
func HistoryHooks(s *Store) sessions.Hooks {
	return sessions.Hooks{
		OnResolved: func(_ context.Context, rec *sessions.Record, r oracle.Result) error {
			reading := domain.ReadingFromResult(rec.ReadingID, rec.ID(), rec.Session.Language, r)
			if err := s.SaveReading(reading); err != nil {
				return fmt.Errorf("record reading %s: %w", rec.ReadingID, err)
			}
			return nil
		},
		OnInterpreted: func(_ context.Context, rec *sessions.Record) error {
			if rec.ReadingID == "" || rec.Interpretation == nil {
				return nil
			}
			return s.UpdateInterpretation(rec.ReadingID, rec.Provider, rec.Interpretation.Reading, rec.Interpretation.Summary)
		},
	}
}
