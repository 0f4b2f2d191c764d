// Package queue defines message payloads exchanged over the message broker.
package queue

// MailRequestedEvent is published whenever the auth core asks for a
// templated mail to be delivered. It carries everything a downstream
// delivery worker needs to render and send the message without querying
// the primary database.
type MailRequestedEvent struct {
	Subject     string            `json:"subject"`
	From        string            `json:"from"`
	To          []string          `json:"to"`
	Template    string            `json:"template"`
	Vars        map[string]string `json:"vars"`
	RequestedAt string            `json:"requested_at"` // RFC3339 UTC
}

// MailQueueName is the durable queue mail events travel through.
const MailQueueName = "mail.send"
