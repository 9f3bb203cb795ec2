package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ConsoleManager owns one Console per admin subject. Consoles are created on
// first use and swept once they have been idle past the configured TTL.
type ConsoleManager struct {
	api       AdminAPI
	snapshots StatsSnapshots
	log       zerolog.Logger

	mu       sync.Mutex
	consoles map[string]*Console
}

func NewConsoleManager(api AdminAPI, snapshots StatsSnapshots, log zerolog.Logger) *ConsoleManager {
	return &ConsoleManager{
		api:       api,
		snapshots: snapshots,
		log:       log,
		consoles:  make(map[string]*Console),
	}
}

func (m *ConsoleManager) Get(subjectID string) *Console {
	m.mu.Lock()
	defer m.mu.Unlock()

	console, ok := m.consoles[subjectID]
	if !ok {
		console = NewConsole(m.api, m.snapshots, m.log.With().Str("subject", subjectID).Logger())
		m.consoles[subjectID] = console
	}
	return console
}

// Drop discards a subject's console, used at logout.
func (m *ConsoleManager) Drop(subjectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.consoles, subjectID)
}

// Sweep removes consoles idle longer than maxIdle and returns how many were
// dropped. Executing consoles are left alone.
func (m *ConsoleManager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for subject, console := range m.consoles {
		if console.Executing() {
			continue
		}
		if console.idleSince().Before(cutoff) {
			delete(m.consoles, subject)
			dropped++
		}
	}
	return dropped
}

func (m *ConsoleManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.consoles)
}
