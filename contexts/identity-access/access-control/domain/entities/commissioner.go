package entities

import "time"

// Commissioner is a role grant keyed by address. The administrator always
// holds a commissioner grant as well.
type Commissioner struct {
	Address string
	AddedBy string
	AddedAt time.Time
}
