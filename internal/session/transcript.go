package session

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one transcript entry. Messages are never mutated once appended.
type Message struct {
	Sender Sender
	Text   string
	At     time.Time
	// Failed marks bot replies that report a request error.
	Failed bool
}

// Transcript is the append-only conversation log.
type Transcript struct {
	messages []Message
}

// Append adds m to the end of the log.
func (t *Transcript) Append(m Message) {
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the log in arrival order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}
