package entity

import "github.com/google/uuid"

// Caller is the identity a request acts as. A nil User means anonymous.
type Caller struct {
	User *User
}

func Anonymous() Caller {
	return Caller{}
}

func CallerFor(user *User) Caller {
	return Caller{User: user}
}

func (c Caller) IsAuthenticated() bool {
	return c.User != nil
}

func (c Caller) UserId() uuid.UUID {
	if c.User == nil {
		return uuid.Nil
	}
	return c.User.Id
}
