package model

// Notification is a message for the notification sink
type Notification struct {
	Title  string
	Body   string
	Fields map[string]string
}
