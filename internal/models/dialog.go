// internal/models/dialog.go
package models

type InvocationSource string

const (
	InvocationDialogCodeHook      InvocationSource = "DialogCodeHook"
	InvocationFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

type DialogActionType string

const (
	DialogActionClose      DialogActionType = "Close"
	DialogActionDelegate   DialogActionType = "Delegate"
	DialogActionElicitSlot DialogActionType = "ElicitSlot"
)

const (
	IntentStateFulfilled = "Fulfilled"
	ContentTypePlainText = "PlainText"
)

type DialogAction struct {
	Type         DialogActionType `json:"type"`
	SlotToElicit string           `json:"slotToElicit,omitempty"`
}

type Intent struct {
	Name              string `json:"name"`
	Slots             Slots  `json:"slots,omitempty"`
	State             string `json:"state,omitempty"`
	ConfirmationState string `json:"confirmationState,omitempty"`
}

type SessionState struct {
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
	Intent            Intent            `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

// HookEvent is the code hook invocation sent by the dialog engine.
type HookEvent struct {
	SessionID        string           `json:"sessionId,omitempty"`
	InputTranscript  string           `json:"inputTranscript,omitempty"`
	InvocationSource InvocationSource `json:"invocationSource"`
	SessionState     SessionState     `json:"sessionState"`
}

// Email returns the user email carried in the session attributes.
func (e *HookEvent) Email() string {
	if e.SessionState.SessionAttributes == nil {
		return ""
	}
	return e.SessionState.SessionAttributes[SessionAttributeEmail]
}

func (e *HookEvent) Slots() Slots {
	return e.SessionState.Intent.Slots
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// HookResponse is the dialog action returned to the engine.
type HookResponse struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages,omitempty"`
}

// ActionType is a shortcut for the response's dialog action type.
func (r *HookResponse) ActionType() DialogActionType {
	if r == nil || r.SessionState.DialogAction == nil {
		return ""
	}
	return r.SessionState.DialogAction.Type
}

// Text returns the first message content, empty when there is none.
func (r *HookResponse) Text() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].Content
}
