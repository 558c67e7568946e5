package messenger

// QuickReply is one selectable option attached to an outbound message.
type QuickReply struct {
	Label  string // localized display label
	Action string // action identifier from the closed set
}

// Instruction is a single outbound message: text, optionally followed by
// 2-4 quick-reply options. Instructions in a reply are delivered in order.
type Instruction struct {
	Text         string
	QuickReplies []QuickReply
}

// Kind names the instruction shape for metrics.
func (i Instruction) Kind() string {
	if len(i.QuickReplies) > 0 {
		return "quick_reply"
	}
	return "text"
}

// Wire types for the Graph API send endpoint.

type sendRequest struct {
	Recipient Participant `json:"recipient"`
	Message   sendMessage `json:"message"`
}

type sendMessage struct {
	Text         string          `json:"text"`
	QuickReplies []wireQuickReply `json:"quick_replies,omitempty"`
}

type wireQuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

func (i Instruction) toWire(recipientID string) sendRequest {
	req := sendRequest{
		Recipient: Participant{ID: recipientID},
		Message:   sendMessage{Text: i.Text},
	}
	for _, qr := range i.QuickReplies {
		req.Message.QuickReplies = append(req.Message.QuickReplies, wireQuickReply{
			ContentType: "text",
			Title:       qr.Label,
			Payload:     qr.Action,
		})
	}
	return req
}
