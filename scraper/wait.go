package scraper

import "time"

// waitUntil polls cond every interval until it returns true or the timeout
// elapses. It is the single suspension primitive for every bounded wait in
// the harvester; cond is always checked at least once.
func waitUntil(timeout, interval time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
