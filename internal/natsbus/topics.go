package natsbus

import (
	"time"

	"github.com/google/uuid"
)

// Event topics. The web feed forwards everything under "events.".
const (
	TopicEventsAll          = "events.>"
	TopicEventsHTTPRequest  = "events.http.request"
	TopicEventsCrewTemplate = "events.crew.template"
	TopicEventsSpaceStatus  = "events.space.status"
)

// Event is the envelope published on every events topic.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload"`
}

func NewEvent(typ string, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    typ,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}
