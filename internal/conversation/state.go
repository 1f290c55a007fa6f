// Package conversation tracks what each user is expected to send next.
//
// A user's session moves between states through Transition. Manager runs a
// handler with the user's session loaded and locked, so two messages from
// the same user are never processed at the same time.
package conversation

import (
	"errors"
	"fmt"
	"time"

	"github.com/edgard/plexybot/internal/knowledge"
)

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is what the bot expects from the user next.
type State string

const (
	Idle                       State = "idle"
	AwaitingGeneralQuestion    State = "awaiting_general_question"
	AwaitingVitaminQuery       State = "awaiting_vitamin_query"
	AwaitingPlantImage         State = "awaiting_plant_image"
	AwaitingPlantName          State = "awaiting_plant_name"
	AwaitingProblemDescription State = "awaiting_problem_description"
	AwaitingFeedback           State = "awaiting_feedback"
)

// Awaiting reports whether the state expects a reply.
func (s State) Awaiting() bool {
	return s != Idle && s != ""
}

// Event moves a session between states.
type Event int

const (
	StartGeneralQuestion Event = iota
	StartVitaminQuery
	StartPlantImage
	StartPlantSearch
	StartProblem
	StartFeedback
	ReplyConsumed
	Cancel
)

func (e Event) String() string {
	switch e {
	case StartGeneralQuestion:
		return "start_general_question"
	case StartVitaminQuery:
		return "start_vitamin_query"
	case StartPlantImage:
		return "start_plant_image"
	case StartPlantSearch:
		return "start_plant_search"
	case StartProblem:
		return "start_problem"
	case StartFeedback:
		return "start_feedback"
	case ReplyConsumed:
		return "reply_consumed"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var startTargets = map[Event]State{
	StartGeneralQuestion: AwaitingGeneralQuestion,
	StartVitaminQuery:    AwaitingVitaminQuery,
	StartPlantImage:      AwaitingPlantImage,
	StartPlantSearch:     AwaitingPlantName,
	StartProblem:         AwaitingProblemDescription,
	StartFeedback:        AwaitingFeedback,
}

// Transition returns the state that follows s on ev.
//
// A start event is accepted from every state: picking another menu entry
// abandons the pending question. ReplyConsumed is only valid while a reply
// is awaited. Cancel always returns to Idle.
func Transition(s State, ev Event) (State, error) {
	if s == "" {
		s = Idle
	}
	if target, ok := startTargets[ev]; ok {
		return target, nil
	}
	switch ev {
	case Cancel:
		return Idle, nil
	case ReplyConsumed:
		if s.Awaiting() {
			return Idle, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s)
}

// Session is the persisted per-user conversation state.
type Session struct {
	UserID int64 `json:"user_id"`
	State  State `json:"state"`
	// Problem is set while a problem description is awaited.
	Problem knowledge.ProblemKind `json:"problem,omitempty"`
	// LastPlant is the plant the user last looked at; plant action buttons
	// without a name refer to it.
	LastPlant string    `json:"last_plant,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns an idle session for userID.
func NewSession(userID int64) *Session {
	return &Session{UserID: userID, State: Idle}
}

// Apply moves the session on ev. The problem kind is only used by StartProblem.
func (s *Session) Apply(ev Event, problem knowledge.ProblemKind) error {
	next, err := Transition(s.State, ev)
	if err != nil {
		return err
	}
	s.State = next
	s.Problem = ""
	if next == AwaitingProblemDescription {
		s.Problem = problem
		if s.Problem == "" {
			s.Problem = knowledge.ProblemGeneral
		}
	}
	return nil
}
