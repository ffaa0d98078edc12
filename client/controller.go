package client

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// MaxSelection caps the combined size of both selection sets.
const MaxSelection = 100

var (
	ErrSelectionFull    = errors.New("selection limit reached")
	ErrActionInFlight   = errors.New("action already in flight for candidate")
	ErrUnknownCandidate = errors.New("unknown candidate")
)

type listKind int

const (
	listNew listKind = iota
	listPending
)

// candidateState is the per-candidate view state. A candidate leaves the
// display while an action is in flight and returns to visible if the action
// fails; only server confirmation moves it to removed.
type candidateState int

const (
	stateVisible candidateState = iota
	statePendingAction
	stateRemoved
)

type entry struct {
	card  Candidate
	list  listKind
	state candidateState
}

// Notifier surfaces non-blocking user notifications.
type Notifier interface {
	Success(message string)
	Error(message string)
	Warn(message string)
}

// LogNotifier is the default Notifier.
type LogNotifier struct{}

func (LogNotifier) Success(message string) { log.Printf("success: %s", message) }
func (LogNotifier) Error(message string)   { log.Printf("error: %s", message) }
func (LogNotifier) Warn(message string)    { log.Printf("warning: %s", message) }

// Controller holds the review view state: the "new" list (candidates of the
// active generation session), the "pending" list (candidates from other
// sessions), two disjoint selection sets and the optimistic-update logic
// around the server's action endpoint. Candidates are tracked in a map
// keyed by id with explicit states; display order lives in separate slices,
// so a failed action restores a candidate to its exact prior position.
type Controller struct {
	api    API
	store  SessionStore
	notify Notifier

	sessionID string

	entries      map[string]*entry
	newOrder     []string
	pendingOrder []string

	newSel     map[string]struct{}
	pendingSel map[string]struct{}
}

func NewController(api API, store SessionStore, notify Notifier) *Controller {
	if notify == nil {
		notify = LogNotifier{}
	}
	c := &Controller{api: api, store: store, notify: notify}
	c.reset()
	return c
}

func (c *Controller) reset() {
	c.sessionID = ""
	c.entries = make(map[string]*entry)
	c.newOrder = nil
	c.pendingOrder = nil
	c.newSel = make(map[string]struct{})
	c.pendingSel = make(map[string]struct{})
}

// Load restores view state after a reload: the stored session id (if any)
// repopulates the "new" list, everything else pending lands in "pending".
// A stored id whose session reads back empty is stale and gets discarded.
func (c *Controller) Load(ctx context.Context) error {
	c.reset()

	stored, err := c.store.Load()
	if err != nil {
		log.Printf("session store unreadable, starting clean: %v", err)
		stored = ""
	}
	if stored != "" {
		cards, err := c.api.SessionCandidates(ctx, stored)
		if err != nil {
			return err
		}
		if len(cards) == 0 {
			if err := c.store.Clear(); err != nil {
				log.Printf("failed to clear stale session id: %v", err)
			}
		} else {
			c.sessionID = stored
			c.setNewList(cards)
		}
	}

	return c.refreshPending(ctx)
}

// Generate runs one generation round and shows the result as the new list.
func (c *Controller) Generate(ctx context.Context, inputText, model string) error {
	resp, err := c.api.Generate(ctx, inputText, model)
	if err != nil {
		c.notify.Error("generation failed: " + err.Error())
		return err
	}

	c.reset()
	c.sessionID = resp.SessionID
	if err := c.store.Save(resp.SessionID); err != nil {
		log.Printf("failed to persist session id: %v", err)
	}
	c.setNewList(resp.Candidates)
	c.notify.Success(fmt.Sprintf("%d candidates generated", len(resp.Candidates)))

	return c.refreshPending(ctx)
}

func (c *Controller) setNewList(cards []Candidate) {
	for _, card := range cards {
		c.entries[card.ID] = &entry{card: card, list: listNew, state: stateVisible}
		c.newOrder = append(c.newOrder, card.ID)
	}
}

// refreshPending replaces the pending list with server truth. In-flight
// candidates keep their state; selections of vanished rows are dropped.
func (c *Controller) refreshPending(ctx context.Context) error {
	cards, err := c.api.OtherPending(ctx, c.sessionID)
	if err != nil {
		return err
	}

	prior := make(map[string]candidateState, len(c.pendingOrder))
	for _, id := range c.pendingOrder {
		if e, ok := c.entries[id]; ok {
			prior[id] = e.state
			delete(c.entries, id)
		}
	}

	c.pendingOrder = nil
	for _, card := range cards {
		state := stateVisible
		if s, ok := prior[card.ID]; ok && s == statePendingAction {
			state = statePendingAction
		}
		c.entries[card.ID] = &entry{card: card, list: listPending, state: state}
		c.pendingOrder = append(c.pendingOrder, card.ID)
	}

	for id := range c.pendingSel {
		if e, ok := c.entries[id]; !ok || e.state != stateVisible {
			delete(c.pendingSel, id)
		}
	}
	return nil
}

// SessionID returns the active generation session id, if any.
func (c *Controller) SessionID() string { return c.sessionID }

// NewCandidates returns the visible candidates of the active session in
// their original order.
func (c *Controller) NewCandidates() []Candidate {
	return c.visible(c.newOrder)
}

// PendingCandidates returns the visible candidates from other sessions.
func (c *Controller) PendingCandidates() []Candidate {
	return c.visible(c.pendingOrder)
}

func (c *Controller) visible(order []string) []Candidate {
	cards := make([]Candidate, 0, len(order))
	for _, id := range order {
		if e, ok := c.entries[id]; ok && e.state == stateVisible {
			cards = append(cards, e.card)
		}
	}
	return cards
}

// SelectionCount is the combined size of both selection sets.
func (c *Controller) SelectionCount() int {
	return len(c.newSel) + len(c.pendingSel)
}

// Selected reports whether a candidate is in either selection set.
func (c *Controller) Selected(id string) bool {
	if _, ok := c.newSel[id]; ok {
		return true
	}
	_, ok := c.pendingSel[id]
	return ok
}

// Select adds a visible candidate to its list's selection set. Beyond
// MaxSelection the set stays unchanged and the attempt is rejected.
func (c *Controller) Select(id string) error {
	e, ok := c.entries[id]
	if !ok || e.state != stateVisible {
		return ErrUnknownCandidate
	}
	set := c.selectionFor(e.list)
	if _, already := set[id]; already {
		return nil
	}
	if c.SelectionCount() >= MaxSelection {
		c.notify.Warn(fmt.Sprintf("selection is limited to %d candidates", MaxSelection))
		return ErrSelectionFull
	}
	set[id] = struct{}{}
	return nil
}

// Deselect removes a candidate from both selection sets.
func (c *Controller) Deselect(id string) {
	delete(c.newSel, id)
	delete(c.pendingSel, id)
}

// SelectAllNew selects every visible new candidate, truncating to the
// remaining selection capacity. Returns how many were added.
func (c *Controller) SelectAllNew() int {
	return c.selectAll(c.newOrder, c.newSel)
}

// SelectAllPending selects every visible pending candidate up to capacity.
func (c *Controller) SelectAllPending() int {
	return c.selectAll(c.pendingOrder, c.pendingSel)
}

func (c *Controller) selectAll(order []string, set map[string]struct{}) int {
	added := 0
	truncated := false
	for _, id := range order {
		e, ok := c.entries[id]
		if !ok || e.state != stateVisible {
			continue
		}
		if _, already := set[id]; already {
			continue
		}
		if c.SelectionCount() >= MaxSelection {
			truncated = true
			break
		}
		set[id] = struct{}{}
		added++
	}
	if truncated {
		c.notify.Warn(fmt.Sprintf("selected the first %d of the limit of %d candidates", added, MaxSelection))
	}
	return added
}

func (c *Controller) selectionFor(kind listKind) map[string]struct{} {
	if kind == listNew {
		return c.newSel
	}
	return c.pendingSel
}

// Accept graduates one candidate unchanged.
func (c *Controller) Accept(ctx context.Context, id string) error {
	return c.apply(ctx, []ActionItem{{CandidateID: id, Action: "accept"}})
}

// Edit graduates one candidate with replacement text.
func (c *Controller) Edit(ctx context.Context, id, front, back string) error {
	return c.apply(ctx, []ActionItem{{CandidateID: id, Action: "edit", EditedFront: &front, EditedBack: &back}})
}

// Reject soft-deletes one candidate.
func (c *Controller) Reject(ctx context.Context, id string) error {
	return c.apply(ctx, []ActionItem{{CandidateID: id, Action: "reject"}})
}

// ApplySelected runs one action (accept or reject) over both selection
// sets. Edits are inherently per-candidate and not available in bulk.
func (c *Controller) ApplySelected(ctx context.Context, action string) error {
	items := make([]ActionItem, 0, c.SelectionCount())
	for _, order := range [][]string{c.newOrder, c.pendingOrder} {
		for _, id := range order {
			if c.Selected(id) {
				items = append(items, ActionItem{CandidateID: id, Action: action})
			}
		}
	}
	return c.apply(ctx, items)
}

// apply is the optimistic-update core. Affected candidates leave the
// display and both selection sets before the server call; confirmation
// moves them to removed, failure returns them to visible at their original
// position. The pending list refetches afterwards either way so partial
// server effects reconcile against server truth.
func (c *Controller) apply(ctx context.Context, items []ActionItem) error {
	if len(items) == 0 {
		return nil
	}

	for _, it := range items {
		e, ok := c.entries[it.CandidateID]
		if !ok || e.state == stateRemoved {
			return ErrUnknownCandidate
		}
		if e.state == statePendingAction {
			return ErrActionInFlight
		}
	}

	// Group per target session; pending candidates carry their own session.
	groups := make(map[string][]ActionItem)
	for _, it := range items {
		e := c.entries[it.CandidateID]
		e.state = statePendingAction
		c.Deselect(it.CandidateID)

		sessionID := e.card.SessionID
		if sessionID == "" {
			sessionID = c.sessionID
		}
		groups[sessionID] = append(groups[sessionID], it)
	}

	processed := 0
	var firstErr error
	for sessionID, group := range groups {
		result, err := c.api.ProcessActions(ctx, sessionID, group)
		if err != nil {
			for _, it := range group {
				c.entries[it.CandidateID].state = stateVisible
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		processed += len(result.Accepted) + len(result.Edited) + len(result.Rejected)
		for _, it := range group {
			c.entries[it.CandidateID].state = stateRemoved
		}
	}

	if err := c.refreshPending(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if processed > 0 {
		c.notify.Success(fmt.Sprintf("%d candidate(s) processed", processed))
	}
	if firstErr != nil {
		c.notify.Error("review action failed: " + firstErr.Error())
		return firstErr
	}
	return nil
}
