package game

import "time"

type timeScheduler struct{}

func NewScheduler() Scheduler {
	return timeScheduler{}
}

func (timeScheduler) AfterFunc(d time.Duration, fire func()) {
	time.AfterFunc(d, fire)
}
