// internal/workers/dialog/dialog-hook/models.go
package dialoghook

const TaskType = "dialog-hook"

const (
	MsgGreeting           = "Hi there, how can I help you today?"
	MsgWelcomeBackFmt     = "Welcome back! Last time you looked for %s. Want to do that again or try something new?"
	MsgThankYou           = "You're welcome!"
	MsgRequestReceivedFmt = "I have received your request for %s food and will notify you at %s shortly."
	MsgStartOver          = "I'm sorry, I missed some of that information. Could we start over?"
	MsgNoPreviousSearch   = "I couldn't find a previous search for you. Please start a new search by telling me what cuisine you'd like."
	MsgRepeatRequestFmt   = "Perfect! I've put in a request for %s food in %s for %s people. I will email you at %s shortly!"
)
