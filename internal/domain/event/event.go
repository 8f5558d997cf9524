package event

const TopicUserCreated = "user.created"

// UserCreated is emitted once per successful registration. Field names are
// part of the wire contract; consumers must tolerate redelivery.
type UserCreated struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
