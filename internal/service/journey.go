package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"bookvideolink/internal/domain"
	"bookvideolink/internal/models"

	"github.com/rs/zerolog"
)

// JourneyService is the journey store: per session, per journey named slices of wizard state.
// Every write is saved before it returns so the next request of the same session sees it.
type JourneyService struct {
	repo   domain.SessionRepository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewJourneyService(repo domain.SessionRepository, logger *zerolog.Logger) *JourneyService {
	return &JourneyService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *JourneyService) load(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session")
		return nil, err
	}
	if session == nil {
		session = models.NewSession(sessionID, s.now())
	}
	if session.JourneyData == nil {
		session.JourneyData = make(map[string]*models.JourneySnapshot)
	}
	if session.Flash == nil {
		session.Flash = make(map[string]json.RawMessage)
	}
	return session, nil
}

// Get returns the slice or nil when the journey has none.
func (s *JourneyService) Get(ctx context.Context, sessionID, journeyID, slice string) (models.Slice, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot, ok := session.JourneyData[journeyID]
	if !ok || snapshot == nil {
		return nil, nil
	}
	return snapshot.Slices[slice], nil
}

// Merge applies partial over the slice. Keys with nil values are removed.
func (s *JourneyService) Merge(ctx context.Context, sessionID, journeyID, slice string, partial models.Slice) error {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	snapshot := session.JourneyData[journeyID]
	if snapshot == nil {
		snapshot = &models.JourneySnapshot{Slices: make(map[string]models.Slice)}
		session.JourneyData[journeyID] = snapshot
	}
	if snapshot.Slices == nil {
		snapshot.Slices = make(map[string]models.Slice)
	}
	snapshot.Slices[slice] = snapshot.Slices[slice].Merge(partial)
	snapshot.InstanceUnixEpoch = s.now().UnixMilli()

	pruneJourneys(session, models.MaxJourneysPerSession)

	return s.repo.SaveSession(ctx, session)
}

// Clear drops the slice, and the journey once it holds nothing else.
func (s *JourneyService) Clear(ctx context.Context, sessionID, journeyID, slice string) error {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	snapshot := session.JourneyData[journeyID]
	if snapshot == nil {
		return nil
	}
	delete(snapshot.Slices, slice)
	if len(snapshot.Slices) == 0 {
		delete(session.JourneyData, journeyID)
	}
	return s.repo.SaveSession(ctx, session)
}

// Draft decodes the booking draft of the given type, or returns nil when there is none.
func (s *JourneyService) Draft(ctx context.Context, sessionID, journeyID string, bookingType models.BookingType) (*models.BookingDraft, error) {
	slice, err := s.Get(ctx, sessionID, journeyID, bookingType.JourneySlice())
	if err != nil || slice == nil {
		return nil, err
	}
	var draft models.BookingDraft
	if err := slice.Decode(&draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if draft.BookingType == "" {
		draft.BookingType = bookingType
	}
	return &draft, nil
}

// PutFlash stores a value that survives exactly one TakeFlash.
func (s *JourneyService) PutFlash(ctx context.Context, sessionID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal flash %s: %w", key, err)
	}
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Flash[key] = raw
	return s.repo.SaveSession(ctx, session)
}

// TakeFlash reads and removes a flash value. It reports false when nothing was stored.
func (s *JourneyService) TakeFlash(ctx context.Context, sessionID, key string, out any) (bool, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	raw, ok := session.Flash[key]
	if !ok {
		return false, nil
	}
	delete(session.Flash, key)
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("unmarshal flash %s: %w", key, err)
	}
	return true, nil
}

// ClaimSubmission reports whether this is the first final submission of the journey.
func (s *JourneyService) ClaimSubmission(ctx context.Context, journeyID string) (bool, error) {
	return s.repo.Claim(ctx, submissionKey(journeyID), models.SubmissionClaimWindow)
}

// ReleaseSubmission allows the journey to be submitted again after a failed attempt.
func (s *JourneyService) ReleaseSubmission(ctx context.Context, journeyID string) {
	if err := s.repo.ReleaseClaim(ctx, submissionKey(journeyID)); err != nil {
		s.logger.Warn().Err(err).Str("journey_id", journeyID).Msg("failed to release submission claim")
	}
}

func submissionKey(journeyID string) string {
	return "submission:" + journeyID
}

// pruneJourneys keeps the most recently touched journeys.
func pruneJourneys(session *models.Session, limit int) {
	if len(session.JourneyData) <= limit {
		return
	}
	ids := make([]string, 0, len(session.JourneyData))
	for id := range session.JourneyData {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return epoch(session.JourneyData[ids[i]]) < epoch(session.JourneyData[ids[j]])
	})
	for _, id := range ids[:len(ids)-limit] {
		delete(session.JourneyData, id)
	}
}

func epoch(s *models.JourneySnapshot) int64 {
	if s == nil {
		return 0
	}
	return s.InstanceUnixEpoch
}
