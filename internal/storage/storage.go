package storage

import (
	"strings"
	"sync"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StoredAlert is an alert annotated with its history identity.
type StoredAlert struct {
	ID string `json:"id"`
	model.Alert
}

// RuleInfo describes one registered rule for the status API.
type RuleInfo struct {
	Name        string `json:"name"`
	Class       string `json:"class"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Subscriber receives live alerts, optionally filtered by severity.
type Subscriber struct {
	ID       string
	Channel  chan StoredAlert
	Severity string
}

// Storage keeps a bounded in-memory alert history and fans new alerts out to
// live subscribers. It implements the notifier contract, so the engine feeds
// it like any other delivery channel.
type Storage struct {
	mu        sync.RWMutex
	alerts    []StoredAlert
	rules     []RuleInfo
	maxAlerts int
	logger    *logrus.Logger

	subsMu sync.RWMutex
	subs   map[*Subscriber]bool
}

func NewStorage(logger *logrus.Logger) *Storage {
	return &Storage{
		alerts:    make([]StoredAlert, 0),
		maxAlerts: 10000,
		logger:    logger,
		subs:      make(map[*Subscriber]bool),
	}
}

func (s *Storage) Name() string {
	return "storage"
}

// SendAlert implements the notifier contract - records the alert and notifies
// subscribers.
func (s *Storage) SendAlert(alert model.Alert) error {
	stored := StoredAlert{
		ID:    uuid.NewString(),
		Alert: alert,
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.alerts = append(s.alerts, stored)
	if len(s.alerts) > s.maxAlerts {
		s.alerts = s.alerts[len(s.alerts)-s.maxAlerts:]
	}
	s.mu.Unlock()

	s.notifySubscribers(stored)
	return nil
}

// Alerts returns up to limit alerts, latest first, optionally filtered.
func (s *Storage) Alerts(limit int, severity, search string) []StoredAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	result := make([]StoredAlert, 0)
	for i := len(s.alerts) - 1; i >= 0 && len(result) < limit; i-- {
		alert := s.alerts[i]
		if severity != "" && string(alert.Severity) != severity {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(alert.Message), strings.ToLower(search)) {
			continue
		}
		result = append(result, alert)
	}
	return result
}

// Alert returns a single alert by its history ID.
func (s *Storage) Alert(id string) (StoredAlert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.alerts) - 1; i >= 0; i-- {
		if s.alerts[i].ID == id {
			return s.alerts[i], true
		}
	}
	return StoredAlert{}, false
}

// Count returns the number of alerts currently held.
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

func (s *Storage) SetRules(rules []RuleInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
}

func (s *Storage) Rules() []RuleInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]RuleInfo, len(s.rules))
	copy(rules, s.rules)
	return rules
}

func (s *Storage) Subscribe(sub *Subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs[sub] = true
}

func (s *Storage) Unsubscribe(sub *Subscriber) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.subs[sub] {
		delete(s.subs, sub)
		close(sub.Channel)
	}
}

func (s *Storage) notifySubscribers(alert StoredAlert) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for sub := range s.subs {
		if sub.Severity != "" && string(alert.Severity) != sub.Severity {
			continue
		}
		select {
		case sub.Channel <- alert:
		default:
			s.logger.Debugf("Alert subscriber %s is full, dropping alert", sub.ID)
		}
	}
}
