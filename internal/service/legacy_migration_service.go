package service

import (
	"fmt"
	"regexp"

	"github.com/etiennegwiavander/LinguaFlow2-sub007/internal/repository"
	"github.com/etiennegwiavander/LinguaFlow2-sub007/pkg/logger"

	"go.uber.org/zap"
)

// LegacyMigrationService re-keys completion records created before the
// lesson-prefixed id scheme. It is an explicit operator batch, never part of
// request handling, and it never guesses: a record with more than one
// candidate target is reported and left untouched.
//
// The legacy-id pattern is deployment configuration. Historical id formats
// differ per deployment, so there is no hard-coded heuristic here; run
// scripts/legacy_id_audit.go against real data before configuring one.
type LegacyMigrationService struct {
	CompletionRepo *repository.CompletionRepository
	LessonRepo     *repository.LessonRepository
	legacyPattern  *regexp.Regexp
}

func NewLegacyMigrationService(completionRepo *repository.CompletionRepository, lessonRepo *repository.LessonRepository, legacyPattern string) (*LegacyMigrationService, error) {
	s := &LegacyMigrationService{
		CompletionRepo: completionRepo,
		LessonRepo:     lessonRepo,
	}
	if legacyPattern != "" {
		re, err := regexp.Compile(legacyPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid legacy id pattern %q: %v", legacyPattern, err)
		}
		s.legacyPattern = re
	}
	return s, nil
}

// AmbiguousRecord is a legacy record the migration refused to touch because
// more than one current sub-topic matched its suffix.
type AmbiguousRecord struct {
	RecordID   uint     `json:"recordId"`
	LegacyID   string   `json:"legacyId"`
	Candidates []string `json:"candidates"`
}

type MigrationReport struct {
	Scanned   int               `json:"scanned"`
	Migrated  int               `json:"migrated"`
	Skipped   int               `json:"skipped"`
	Ambiguous []AmbiguousRecord `json:"ambiguous"`
}

// MigrateLegacy scans one learner's completion ledger and re-keys each
// legacy record whose suffix matches exactly one current sub-topic id.
func (s *LegacyMigrationService) MigrateLegacy(learnerID uint) (*MigrationReport, error) {
	if s.legacyPattern == nil {
		return nil, fmt.Errorf("no legacy id pattern configured; audit historical ids first (scripts/legacy_id_audit.go)")
	}

	records, err := s.CompletionRepo.ListByLearner(learnerID)
	if err != nil {
		return nil, err
	}

	report := &MigrationReport{}
	for _, rec := range records {
		report.Scanned++

		if rec.LegacyID != "" || !s.legacyPattern.MatchString(rec.SubTopicID) {
			// Already migrated, or already on the current scheme.
			report.Skipped++
			continue
		}

		candidates, err := s.LessonRepo.FindSubTopicsBySuffix("_" + rec.SubTopicID)
		if err != nil {
			return nil, err
		}

		switch len(candidates) {
		case 0:
			report.Skipped++
		case 1:
			if err := s.CompletionRepo.RekeyLegacy(rec.ID, candidates[0].ID, candidates[0].LessonID); err != nil {
				return nil, err
			}
			report.Migrated++
			logger.Log.Info("legacy completion migrated",
				zap.Uint("recordId", rec.ID),
				zap.String("legacyId", rec.SubTopicID),
				zap.String("newId", candidates[0].ID))
		default:
			ids := make([]string, 0, len(candidates))
			for _, c := range candidates {
				ids = append(ids, c.ID)
			}
			report.Ambiguous = append(report.Ambiguous, AmbiguousRecord{
				RecordID:   rec.ID,
				LegacyID:   rec.SubTopicID,
				Candidates: ids,
			})
		}
	}

	return report, nil
}
