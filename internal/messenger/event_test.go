package messenger

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  MessagingEvent
		want Event
	}{
		{
			name: "free text message",
			raw: MessagingEvent{
				Sender:  Participant{ID: "user-1"},
				Message: &Message{MID: "m1", Text: "hello"},
			},
			want: Event{SenderID: "user-1", Text: "hello"},
		},
		{
			name: "quick reply selection",
			raw: MessagingEvent{
				Sender: Participant{ID: "user-1"},
				Message: &Message{
					MID:        "m2",
					Text:       "Room reservation",
					QuickReply: &QuickReplyData{Payload: ActionLodging},
				},
			},
			want: Event{SenderID: "user-1", Action: ActionLodging},
		},
		{
			name: "postback",
			raw: MessagingEvent{
				Sender:   Participant{ID: "user-1"},
				Postback: &Postback{Title: "Get Started", Payload: ActionGetStarted},
			},
			want: Event{SenderID: "user-1", Postback: ActionGetStarted},
		},
		{
			name: "echo is dropped",
			raw: MessagingEvent{
				Sender:  Participant{ID: "page-1"},
				Message: &Message{MID: "m3", Text: "our own reply", IsEcho: true},
			},
			want: Event{SenderID: "page-1"},
		},
		{
			name: "delivery receipt",
			raw: MessagingEvent{
				Sender:   Participant{ID: "user-1"},
				Delivery: &Receipt{Watermark: 123},
			},
			want: Event{SenderID: "user-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.raw.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEventType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"postback wins", Event{Postback: ActionGetStarted, Text: "x"}, "postback"},
		{"quick reply", Event{Action: ActionLodging}, "quick_reply"},
		{"message", Event{Text: "hi"}, "message"},
		{"receipt", Event{}, "receipt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ev.Type(); got != tt.want {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventIsEmpty(t *testing.T) {
	t.Parallel()

	if !(Event{SenderID: "user-1"}).IsEmpty() {
		t.Error("receipt-only event should be empty")
	}
	if (Event{SenderID: "user-1", Text: "hi"}).IsEmpty() {
		t.Error("text event should not be empty")
	}
}

func TestInstructionKind(t *testing.T) {
	t.Parallel()

	if got := (Instruction{Text: "hi"}).Kind(); got != "text" {
		t.Errorf("Kind() = %q, want text", got)
	}
	withOptions := Instruction{Text: "hi", QuickReplies: []QuickReply{{Label: "A", Action: "A"}}}
	if got := withOptions.Kind(); got != "quick_reply" {
		t.Errorf("Kind() = %q, want quick_reply", got)
	}
}
