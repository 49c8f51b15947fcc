package domain

// TransitionPlan is the outcome of applying an action to a state.
type TransitionPlan struct {
	From WorkflowState
	// AuditTo is the state recorded in the audit trail. For escalations this is
	// StateEscalated even though the workflow rests in StateUnderReview.
	AuditTo WorkflowState
	// Rest is the state persisted on the workflow row.
	Rest WorkflowState
	// ChangesState is false for decisions that are recorded without moving the workflow.
	ChangesState     bool
	RaisesEscalation bool
	ClearsReviewer   bool
	RequiresToken    bool
}

type transitionKey struct {
	from   WorkflowState
	action Action
}

var transitionTable = map[transitionKey]TransitionPlan{
	{StatePendingReview, ActionAssignReviewer}: {AuditTo: StateUnderReview, Rest: StateUnderReview, ChangesState: true},

	{StateUnderReview, ActionApprove}:     {AuditTo: StatePendingAuthorization, Rest: StatePendingAuthorization, ChangesState: true},
	{StateUnderReview, ActionReject}:      {AuditTo: StateRejected, Rest: StateRejected, ChangesState: true},
	{StateUnderReview, ActionEscalate}:    {AuditTo: StateEscalated, Rest: StateUnderReview, ChangesState: true, RaisesEscalation: true, ClearsReviewer: true},
	{StateUnderReview, ActionRequestInfo}: {AuditTo: StateUnderReview, Rest: StateUnderReview},

	{StatePendingAuthorization, ActionConfirm}:  {AuditTo: StateApproved, Rest: StateApproved, ChangesState: true, RequiresToken: true},
	{StatePendingAuthorization, ActionCancel}:   {AuditTo: StateUnderReview, Rest: StateUnderReview, ChangesState: true},
	{StatePendingAuthorization, ActionEscalate}: {AuditTo: StateEscalated, Rest: StateUnderReview, ChangesState: true, RaisesEscalation: true, ClearsReviewer: true},
}

// PlanTransition looks up what action does from state. ok is false for any
// pair the state machine does not admit, including every action from a terminal state.
func PlanTransition(from WorkflowState, action Action) (TransitionPlan, bool) {
	plan, ok := transitionTable[transitionKey{from: from, action: action}]
	if !ok {
		return TransitionPlan{}, false
	}
	plan.From = from
	return plan, true
}

// AllowedActions lists the actions admitted from state.
func AllowedActions(from WorkflowState) []Action {
	var out []Action
	for _, a := range append([]Action{ActionAssignReviewer}, DecisionActions...) {
		if _, ok := transitionTable[transitionKey{from: from, action: a}]; ok {
			out = append(out, a)
		}
	}
	return out
}

// StatesAdmitting lists the states from which action is admitted.
func StatesAdmitting(action Action) []WorkflowState {
	var out []WorkflowState
	for _, from := range []WorkflowState{StatePendingReview, StateUnderReview, StatePendingAuthorization, StateEscalated, StateApproved, StateRejected} {
		if _, ok := transitionTable[transitionKey{from: from, action: action}]; ok {
			out = append(out, from)
		}
	}
	return out
}

// Transition is everything the store writes atomically for one decision.
// The workflow write is conditional on ExpectedVersion.
type Transition struct {
	ExpectedVersion int64
	Workflow        ApprovalWorkflow // state after the decision; Version is ExpectedVersion+1
	Decision        ApprovalDecision
	Audit           *AuditEntry           // nil when the decision does not change state
	TokenUse        *ConfirmationTokenUse // non-nil only for confirm
}
