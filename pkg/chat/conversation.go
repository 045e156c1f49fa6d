package chat

import (
	"strconv"
	"sync"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
)

// Role is the author of a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one chat bubble
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// local messages are shown to the user but never sent to the model
	local bool
}

// Conversation is the ordered chat history of one session
type Conversation struct {
	mu       sync.Mutex
	messages []Message
	now      func() time.Time
}

// NewConversation starts a history with the welcome message
func NewConversation() *Conversation {
	c := &Conversation{now: time.Now}
	c.messages = []Message{{
		ID:        "welcome",
		Role:      RoleModel,
		Text:      catalog.ChatPrefix + catalog.WelcomeMessage,
		Timestamp: c.now(),
		local:     true,
	}}
	return c
}

// Messages returns a copy of the history, oldest first
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) append(role Role, text string, local bool) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.now()
	m := Message{
		ID:        strconv.FormatInt(ts.UnixNano(), 10) + "-" + strconv.Itoa(len(c.messages)),
		Role:      role,
		Text:      text,
		Timestamp: ts,
		local:     local,
	}
	c.messages = append(c.messages, m)
	return m
}

// exchange returns the last n messages that were part of the model dialogue
func (c *Conversation) exchange(n int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Message
	for _, m := range c.messages {
		if !m.local {
			out = append(out, m)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
