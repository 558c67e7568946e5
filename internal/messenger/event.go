// Package messenger holds the Messenger platform boundary: inbound webhook
// payload types, outbound send instructions, and the Graph API client.
// The dialogue core never talks to the network itself; it consumes
// normalized events and emits instructions for this package to deliver.
package messenger

// Action identifiers carried by quick replies and postbacks.
// The set is closed; any other value is treated as a client-side anomaly
// and ignored.
const (
	ActionLangEN        = "LANG_EN"
	ActionLangKA        = "LANG_KA"
	ActionLodging       = "ROOM_RESERVATION"
	ActionDining        = "RESTAURANT_RESERVATION"
	ActionWellness      = "SPA_RESERVATION"
	ActionGoBack        = "GO_BACK"
	ActionMoreQuestions = "MORE_QUESTIONS"
	ActionStartAgain    = "START_AGAIN"

	// ActionGetStarted is the postback sent by the platform's Get Started button.
	ActionGetStarted = "GET_STARTED"
)

// Payload is the raw webhook body delivered by the platform.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one page entry in a webhook payload.
type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is a single messaging event within an entry.
// Exactly one of Message, Postback, Delivery, or Read is typically set.
type MessagingEvent struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"`
	Message   *Message    `json:"message,omitempty"`
	Postback  *Postback   `json:"postback,omitempty"`
	Delivery  *Receipt    `json:"delivery,omitempty"`
	Read      *Receipt    `json:"read,omitempty"`
}

// Participant identifies a conversation party by page-scoped id.
type Participant struct {
	ID string `json:"id"`
}

// Message is an inbound message, possibly carrying a quick-reply selection.
type Message struct {
	MID        string          `json:"mid"`
	Text       string          `json:"text"`
	IsEcho     bool            `json:"is_echo,omitempty"`
	QuickReply *QuickReplyData `json:"quick_reply,omitempty"`
}

// QuickReplyData carries the action identifier of a tapped quick reply.
type QuickReplyData struct {
	Payload string `json:"payload"`
}

// Postback carries the action identifier of a tapped persistent button.
type Postback struct {
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload"`
}

// Receipt is a delivery or read receipt. The dispatcher ignores these.
type Receipt struct {
	Watermark int64 `json:"watermark"`
}

// Event is the normalized inbound event the dispatcher consumes.
type Event struct {
	SenderID string
	Text     string // free-text message body, if any
	Action   string // quick-reply action identifier, if any
	Postback string // postback action identifier, if any
}

// Normalize flattens a raw messaging event into a dispatcher event.
func (m MessagingEvent) Normalize() Event {
	ev := Event{SenderID: m.Sender.ID}

	if m.Postback != nil {
		ev.Postback = m.Postback.Payload
	}

	if m.Message != nil && !m.Message.IsEcho {
		if m.Message.QuickReply != nil {
			ev.Action = m.Message.QuickReply.Payload
		} else {
			ev.Text = m.Message.Text
		}
	}

	return ev
}

// IsEmpty reports whether the event carries nothing actionable
// (e.g. a delivery receipt, a read receipt, or an echo).
func (e Event) IsEmpty() bool {
	return e.Text == "" && e.Action == "" && e.Postback == ""
}

// Type names the event kind for logging and metrics.
func (e Event) Type() string {
	switch {
	case e.Postback != "":
		return "postback"
	case e.Action != "":
		return "quick_reply"
	case e.Text != "":
		return "message"
	default:
		return "receipt"
	}
}
