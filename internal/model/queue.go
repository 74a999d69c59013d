package model

import (
	"slices"
	"sync"
	"time"
)

type queueEntry struct {
	player   Player
	joinedAt time.Time
}

// Queue holds players waiting to be paired, oldest first.
type Queue struct {
	mu      sync.Mutex
	entries []queueEntry
	now     func() time.Time
}

func NewQueue() *Queue {
	return &Queue{now: time.Now}
}

func (q *Queue) indexOf(playerID string) int {
	return slices.IndexFunc(q.entries, func(e queueEntry) bool { return e.player.ID == playerID })
}

// AddPlayer appends player, or returns ErrInQueue if it is already waiting.
func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexOf(player.ID) >= 0 {
		return ErrInQueue
	}
	q.entries = append(q.entries, queueEntry{player: player, joinedAt: q.now()})
	return nil
}

// RemovePlayer drops playerID from the queue and reports whether it was queued.
func (q *Queue) RemovePlayer(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(playerID)
	if i < 0 {
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	return true
}

// GetNextPair pops the two players who have waited longest. wait is how long
// the older of the two was queued.
func (q *Queue) GetNextPair() (first, second Player, wait time.Duration, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) < 2 {
		return Player{}, Player{}, 0, false
	}
	a, b := q.entries[0], q.entries[1]
	q.entries = slices.Delete(q.entries, 0, 2)
	return a.player, b.player, q.now().Sub(a.joinedAt), true
}

func (q *Queue) Contains(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexOf(playerID) >= 0
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
