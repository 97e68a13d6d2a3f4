package observability

import (
	"os"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// StatsSnapshot aggregates the counters exposed by the read-only
// stats endpoint.
type StatsSnapshot struct {
	ActiveSessionCount  int64   `json:"activeSessionCount"`
	ActiveIdentityCount int64   `json:"activeIdentityCount"`
	RoomCount           int64   `json:"roomCount"`
	CommandsProcessed   uint64  `json:"commandsProcessed"`
	EventsDelivered     uint64  `json:"eventsDelivered"`
	RSSBytes            uint64  `json:"rssBytes"`
	CPUPercent          float64 `json:"cpuPercent"`
}

// Stats holds the core's gauges and counters. The dispatcher writes the
// gauges after every processed command; the stats HTTP endpoint reads a
// snapshot from any goroutine.
type Stats struct {
	sessions   atomic.Int64
	identities atomic.Int64
	rooms      atomic.Int64
	commands   atomic.Uint64
	delivered  atomic.Uint64
	proc       *process.Process
}

func NewStats() *Stats {
	// Best effort: self stats are omitted when the process handle is
	// unavailable (some containers restrict /proc access).
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		p = nil
	}
	return &Stats{proc: p}
}

func (s *Stats) SetGauges(sessions, identities, rooms int) {
	s.sessions.Store(int64(sessions))
	s.identities.Store(int64(identities))
	s.rooms.Store(int64(rooms))
}

func (s *Stats) IncrCommands() {
	s.commands.Add(1)
}

func (s *Stats) AddDelivered(n uint64) {
	s.delivered.Add(n)
}

func (s *Stats) Snapshot() StatsSnapshot {
	snapshot := StatsSnapshot{
		ActiveSessionCount:  s.sessions.Load(),
		ActiveIdentityCount: s.identities.Load(),
		RoomCount:           s.rooms.Load(),
		CommandsProcessed:   s.commands.Load(),
		EventsDelivered:     s.delivered.Load(),
	}
	if s.proc != nil {
		if memInfo, err := s.proc.MemoryInfo(); err == nil {
			snapshot.RSSBytes = memInfo.RSS
		}
		if cpuPercent, err := s.proc.CPUPercent(); err == nil {
			snapshot.CPUPercent = cpuPercent
		}
	}
	return snapshot
}
