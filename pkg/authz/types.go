package authz

import "strings"

// Request is one enforcement question: may Subject perform Action.
type Request struct {
	Subject string
	Action  string
}

func NewRequest(subject, action string) Request {
	return Request{
		Subject: strings.TrimSpace(subject),
		Action:  NormalizeAction(action),
	}
}

// NormalizeAction lowercases and trims action names so table entries and callers agree.
func NormalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
