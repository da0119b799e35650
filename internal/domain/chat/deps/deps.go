package deps

// Reporter receives status updates while chats are fetched
type Reporter interface {
	Status(message string)
}
