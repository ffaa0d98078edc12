package services

import (
	"fmt"
	"strings"

	"github.com/flashgen/flashgen-api/config"
	"github.com/flashgen/flashgen-api/events"
	"github.com/flashgen/flashgen-api/models"
	"github.com/flashgen/flashgen-api/store"
	"gorm.io/gorm"
)

type ActionType string

const (
	ActionAccept ActionType = "accept"
	ActionEdit   ActionType = "edit"
	ActionReject ActionType = "reject"
)

// MaxBatchSize bounds one review batch.
const MaxBatchSize = 100

// ActionItem is one requested state transition for a candidate.
// Edit requires both edited fields; their absence fails the whole batch.
type ActionItem struct {
	CandidateID string     `json:"candidateId"`
	Action      ActionType `json:"action"`
	EditedFront *string    `json:"editedFront,omitempty"`
	EditedBack  *string    `json:"editedBack,omitempty"`
}

// ItemResult reports the outcome of a single action so callers can
// reconcile per candidate instead of guessing from the aggregate lists.
type ItemResult struct {
	CandidateID string     `json:"candidateId"`
	Action      ActionType `json:"action"`
	Applied     bool       `json:"applied"`
}

type ActionResult struct {
	Accepted []string     `json:"accepted"`
	Edited   []string     `json:"edited"`
	Rejected []string     `json:"rejected"`
	Items    []ItemResult `json:"items"`
}

// ActionProcessor applies review batches. All mutations of one batch run in
// a single transaction: either every action lands or none does.
type ActionProcessor struct {
	db     *gorm.DB
	policy config.CounterPolicy
	audit  events.Recorder
}

func NewActionProcessor(db *gorm.DB, policy config.CounterPolicy, audit events.Recorder) *ActionProcessor {
	return &ActionProcessor{db: db, policy: policy, audit: audit}
}

// ProcessActions validates and applies a batch of accept/edit/reject
// actions against one session's candidates. Validation and ownership checks
// complete before any write; a failure mutates nothing.
func (p *ActionProcessor) ProcessActions(userID uint, sessionPublicID string, items []ActionItem) (*ActionResult, error) {
	if err := validateBatch(items); err != nil {
		return nil, err
	}

	sessions := store.NewSessionStore(p.db)
	session, err := sessions.GetByPublicID(userID, sessionPublicID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", ErrStorage, err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionPublicID)
	}

	publicIDs := make([]string, 0, len(items))
	for _, it := range items {
		publicIDs = append(publicIDs, it.CandidateID)
	}

	candidates := store.NewCandidateStore(p.db)
	cards, err := candidates.ListBySessionAndPublicIDs(userID, session.ID, publicIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load candidates: %v", ErrStorage, err)
	}
	if len(cards) != len(items) {
		return nil, fmt.Errorf("%w: candidates %s", ErrNotFound, strings.Join(missingIDs(publicIDs, cards), ", "))
	}

	byPublicID := make(map[string]*models.Flashcard, len(cards))
	for i := range cards {
		byPublicID[cards[i].PublicID] = &cards[i]
	}

	var acceptIDs, rejectIDs []uint
	result := &ActionResult{
		Accepted: []string{},
		Edited:   []string{},
		Rejected: []string{},
	}
	type editOp struct {
		id          uint
		front, back string
	}
	var edits []editOp

	for _, it := range items {
		card := byPublicID[it.CandidateID]
		switch it.Action {
		case ActionAccept:
			acceptIDs = append(acceptIDs, card.ID)
			result.Accepted = append(result.Accepted, it.CandidateID)
		case ActionEdit:
			edits = append(edits, editOp{id: card.ID, front: *it.EditedFront, back: *it.EditedBack})
			result.Edited = append(result.Edited, it.CandidateID)
		case ActionReject:
			rejectIDs = append(rejectIDs, card.ID)
			result.Rejected = append(result.Rejected, it.CandidateID)
		}
		result.Items = append(result.Items, ItemResult{CandidateID: it.CandidateID, Action: it.Action, Applied: true})
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		txCandidates := store.NewCandidateStore(tx)
		if err := txCandidates.Graduate(userID, acceptIDs); err != nil {
			return err
		}
		for _, e := range edits {
			if err := txCandidates.GraduateEdited(userID, e.id, e.front, e.back); err != nil {
				return err
			}
		}
		if err := txCandidates.Reject(userID, rejectIDs); err != nil {
			return err
		}
		return store.NewSessionStore(tx).ApplyAcceptCounts(session.ID, len(result.Accepted), len(result.Edited), p.policy)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: apply actions: %v", ErrStorage, err)
	}

	p.audit.Record(userID, events.KindActionsProcessed,
		fmt.Sprintf("session=%s accepted=%d edited=%d rejected=%d",
			sessionPublicID, len(result.Accepted), len(result.Edited), len(result.Rejected)))

	return result, nil
}

func validateBatch(items []ActionItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: actions are required", ErrValidation)
	}
	if len(items) > MaxBatchSize {
		return fmt.Errorf("%w: at most %d actions per batch", ErrValidation, MaxBatchSize)
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.CandidateID == "" {
			return fmt.Errorf("%w: candidateId is required", ErrValidation)
		}
		if seen[it.CandidateID] {
			return fmt.Errorf("%w: duplicate candidate %s", ErrValidation, it.CandidateID)
		}
		seen[it.CandidateID] = true

		switch it.Action {
		case ActionAccept, ActionReject:
		case ActionEdit:
			if it.EditedFront == nil || it.EditedBack == nil {
				return fmt.Errorf("%w: edit of %s requires editedFront and editedBack", ErrValidation, it.CandidateID)
			}
			if strings.TrimSpace(*it.EditedFront) == "" || strings.TrimSpace(*it.EditedBack) == "" {
				return fmt.Errorf("%w: edit of %s requires non-empty front and back", ErrValidation, it.CandidateID)
			}
			if len([]rune(*it.EditedFront)) > models.MaxFrontLen || len([]rune(*it.EditedBack)) > models.MaxBackLen {
				return fmt.Errorf("%w: edit of %s exceeds length limits", ErrValidation, it.CandidateID)
			}
		default:
			return fmt.Errorf("%w: unknown action %q", ErrValidation, it.Action)
		}
	}
	return nil
}

func missingIDs(requested []string, found []models.Flashcard) []string {
	present := make(map[string]bool, len(found))
	for _, c := range found {
		present[c.PublicID] = true
	}
	var missing []string
	for _, id := range requested {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
