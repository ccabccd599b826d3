// Package state holds the shared design state for a run: structured outputs
// per role per iteration, the coordinator's decisions, and the mailbox system
// agents use to talk to each other. All mutators are safe for concurrent use;
// every engineering role writes from its own goroutine inside an iteration.
package state

import (
	"sort"
	"sync"
	"time"

	"avion/internal/config"
)

// StoredMessage is a delivered mailbox entry.
type StoredMessage struct {
	FromAgent string    `json:"from_agent"`
	ToAgent   string    `json:"to_agent"`
	Content   string    `json:"content"`
	Iteration int       `json:"iteration"`
	At        time.Time `json:"at"`
}

// DesignState accumulates everything produced during a design run.
type DesignState struct {
	mu sync.Mutex

	requirements string

	outputs     map[config.Role]map[int]RoleOutput
	coordinator map[int]*CoordinatorDecision
	mailboxes   map[config.Role][]StoredMessage

	currentIteration int
	lastUpdate       map[config.Role]int

	projectComplete bool
}

// NewDesignState creates the state for one run. Mailboxes exist for the
// coordinator and every engineering role; last-update trackers start at -1,
// before the first iteration.
func NewDesignState(requirements string, roles []config.Role) *DesignState {
	s := &DesignState{
		requirements: requirements,
		outputs:      make(map[config.Role]map[int]RoleOutput),
		coordinator:  make(map[int]*CoordinatorDecision),
		mailboxes:    make(map[config.Role][]StoredMessage),
		lastUpdate:   make(map[config.Role]int),
	}
	s.mailboxes[config.RoleCoordinator] = nil
	for _, role := range roles {
		s.outputs[role] = make(map[int]RoleOutput)
		s.mailboxes[role] = nil
		s.lastUpdate[role] = -1
	}
	return s
}

// Requirements returns the user requirements for this run.
func (s *DesignState) Requirements() string {
	return s.requirements
}

// CurrentIteration returns the iteration agents are working in.
func (s *DesignState) CurrentIteration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIteration
}

// AdvanceIteration moves the run to the next iteration.
func (s *DesignState) AdvanceIteration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentIteration++
}

// Complete reports whether the coordinator declared the project finished.
func (s *DesignState) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectComplete
}

// RecordOutput stores a role's output for an iteration. It returns true when
// the output changed the design: first outputs always count, later ones only
// when their engineering fields differ from the previous output.
func (s *DesignState) RecordOutput(role config.Role, iteration int, output RoleOutput) bool {
	output.SetIteration(iteration)

	s.mu.Lock()
	defer s.mu.Unlock()

	byIter, ok := s.outputs[role]
	if !ok {
		byIter = make(map[int]RoleOutput)
		s.outputs[role] = byIter
	}

	updated := true
	if prev, found := latestBefore(byIter, iteration); found {
		updated = !CoreEquals(prev, output)
	}

	byIter[iteration] = output
	if updated {
		s.lastUpdate[role] = iteration
	}
	return updated
}

// HasOutput reports whether a role produced output in the given iteration.
func (s *DesignState) HasOutput(role config.Role, iteration int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.outputs[role][iteration]
	return ok
}

// LatestOutput returns a role's most recent output across all iterations.
func (s *DesignState) LatestOutput(role config.Role) (RoleOutput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return latest(s.outputs[role])
}

// OutputCount returns how many iterations produced output for a role.
func (s *DesignState) OutputCount(role config.Role) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outputs[role])
}

// LatestOutputs returns the most recent output of every role that has one.
func (s *DesignState) LatestOutputs() map[config.Role]RoleOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[config.Role]RoleOutput, len(s.outputs))
	for role, byIter := range s.outputs {
		if out, ok := latest(byIter); ok {
			result[role] = out
		}
	}
	return result
}

// RecordCoordinator stores the coordinator's decision for an iteration and
// updates the completion flag.
func (s *DesignState) RecordCoordinator(iteration int, decision *CoordinatorDecision) {
	decision.Iteration = iteration

	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinator[iteration] = decision
	s.projectComplete = decision.ProjectComplete
}

// CoordinatorAt returns the coordinator decision for an iteration.
func (s *DesignState) CoordinatorAt(iteration int) (*CoordinatorDecision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.coordinator[iteration]
	return d, ok
}

// LatestCoordinator returns the most recent coordinator decision.
func (s *DesignState) LatestCoordinator() (*CoordinatorDecision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := -1
	for iteration := range s.coordinator {
		if iteration > best {
			best = iteration
		}
	}
	if best < 0 {
		return nil, false
	}
	return s.coordinator[best], true
}

// TaskFor resolves a role's task: the current iteration's assignment when one
// exists, otherwise the most recent iteration that assigned this role a task.
func (s *DesignState) TaskFor(role config.Role) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task, ok := taskIn(s.coordinator[s.currentIteration], role); ok {
		return task, true
	}

	iterations := make([]int, 0, len(s.coordinator))
	for iteration := range s.coordinator {
		iterations = append(iterations, iteration)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(iterations)))
	for _, iteration := range iterations {
		if task, ok := taskIn(s.coordinator[iteration], role); ok {
			return task, true
		}
	}
	return "", false
}

// Deliver appends a message to the recipient's mailbox. The recipient must
// have a mailbox; unknown recipients are reported to the caller.
func (s *DesignState) Deliver(from, to config.Role, content string, iteration int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mailboxes[to]; !ok {
		return false
	}
	s.mailboxes[to] = append(s.mailboxes[to], StoredMessage{
		FromAgent: string(from),
		ToAgent:   string(to),
		Content:   content,
		Iteration: iteration,
		At:        time.Now(),
	})
	return true
}

// MessagesFor returns the messages delivered to a role in one iteration.
func (s *DesignState) MessagesFor(role config.Role, iteration int) []StoredMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []StoredMessage
	for _, msg := range s.mailboxes[role] {
		if msg.Iteration == iteration {
			result = append(result, msg)
		}
	}
	return result
}

// SentBy returns the messages a role sent in one iteration, across all
// mailboxes.
func (s *DesignState) SentBy(role config.Role, iteration int) []StoredMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []StoredMessage
	for owner, box := range s.mailboxes {
		if owner == role {
			continue
		}
		for _, msg := range box {
			if msg.Iteration == iteration && msg.FromAgent == string(role) {
				result = append(result, msg)
			}
		}
	}
	return result
}

// TotalMessages counts every delivered message across all mailboxes.
func (s *DesignState) TotalMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, mailbox := range s.mailboxes {
		total += len(mailbox)
	}
	return total
}

// MarkUpdated records an update for a role in the stability tracker without
// storing an output. The coordinator uses this to reset stability when it
// decides to continue a stable run.
func (s *DesignState) MarkUpdated(role config.Role, iteration int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate[role] = iteration
}

// LastUpdate returns the last iteration a role updated its design, or -1.
func (s *DesignState) LastUpdate(role config.Role) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if iteration, ok := s.lastUpdate[role]; ok {
		return iteration
	}
	return -1
}

// Stable reports whether no tracked role has updated for threshold
// iterations. Early iterations are never stable.
func (s *DesignState) Stable(threshold int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentIteration < threshold {
		return false
	}
	for _, last := range s.lastUpdate {
		if s.currentIteration-last < threshold {
			return false
		}
	}
	return true
}

func latest(byIter map[int]RoleOutput) (RoleOutput, bool) {
	best := -1
	for iteration := range byIter {
		if iteration > best {
			best = iteration
		}
	}
	if best < 0 {
		return nil, false
	}
	return byIter[best], true
}

func latestBefore(byIter map[int]RoleOutput, iteration int) (RoleOutput, bool) {
	best := -1
	for i := range byIter {
		if i < iteration && i > best {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}
	return byIter[best], true
}

func taskIn(decision *CoordinatorDecision, role config.Role) (string, bool) {
	if decision == nil {
		return "", false
	}
	for _, task := range decision.AgentTasks {
		if task.AgentName == string(role) {
			return task.TaskDescription, true
		}
	}
	return "", false
}
