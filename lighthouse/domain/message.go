package domain

// MessageKind tells the dispatcher which branch a decoded payload takes.
type MessageKind int

const (
	InvalidMessage MessageKind = iota
	FanOutMessage
	TargetMessage
)

func (k MessageKind) String() string {
	switch k {
	case FanOutMessage:
		return "fan_out"
	case TargetMessage:
		return "target"
	default:
		return "invalid"
	}
}

// FanOutKeyword is the payload that republishes every configured target.
const FanOutKeyword = "all"

// Target is a single audited site.
type Target struct {
	ID         string
	URL        string
	FormFactor string
}

// Message is the classification of one decoded payload. Target is set only
// for TargetMessage.
type Message struct {
	Kind   MessageKind
	Target *Target
}

// Classify matches the payload against the fan-out keyword and then against
// target ids. Matching is exact, no trimming or prefix matching.
func Classify(payload string, targets []Target) Message {
	if payload == FanOutKeyword {
		return Message{Kind: FanOutMessage}
	}

	for i := range targets {
		if targets[i].ID == payload {
			t := targets[i]
			return Message{Kind: TargetMessage, Target: &t}
		}
	}

	return Message{Kind: InvalidMessage}
}

// Outcome is the result of one invocation that did not fail downstream.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeLoggedError
)

func (o Outcome) String() string {
	if o == OutcomeLoggedError {
		return "logged_error"
	}

	return "ok"
}
