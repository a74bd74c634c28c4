// Package types contains common result types used across the application
package types

// EventCount pairs an event with the number of times it was run.
type EventCount struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// EventRunNumber pairs an event with the edition index of one of its runs.
type EventRunNumber struct {
	Event     string `json:"event"`
	RunNumber int    `json:"run_number"`
}
