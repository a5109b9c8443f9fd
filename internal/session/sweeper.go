package session

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts standard 5-field cron expressions
// (minute hour day-of-month month day-of-week).
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether schedule is a usable cron expression.
func ValidateSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return nil
	}
	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid session sweep schedule %q: %w", schedule, err)
	}
	return nil
}

// StartSweeper expires idle sessions on the given cron schedule, e.g.
// "*/5 * * * *" for every five minutes. It returns nil when schedule is empty
// or the store never expires sessions. Callers stop the returned cron.
func StartSweeper(store *Store, schedule string) (*cron.Cron, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Session sweep disabled (session_sweep_schedule not set)")
		return nil, nil
	}
	if store.TTL() <= 0 {
		log.Println("Session sweep disabled (sessions never expire)")
		return nil, nil
	}
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	c := cron.New(cron.WithParser(scheduleParser))
	if _, err := c.AddFunc(schedule, func() {
		if n := store.Sweep(time.Now()); n > 0 {
			log.Printf("Expired %d idle session(s), %d active", n, store.Count())
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}

	c.Start()
	log.Printf("Session sweep scheduled (cron: %s, ttl: %s)", schedule, store.TTL())
	return c, nil
}
