package app

import "time"

// TickMsg triggers a snapshot refresh.
type TickMsg time.Time

// EvictMsg triggers device eviction.
type EvictMsg time.Time
