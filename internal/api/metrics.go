package api

import "sync"

type serverMetrics struct {
	mu            sync.RWMutex
	totalRequests int64
	activeReqs    int64

	processed          int64
	valid              int64
	invalid            int64
	recognitionFailure int64
	analyzed           int64
}

type metricsSnapshot struct {
	TotalRequests       int64 `json:"totalRequests"`
	ActiveRequests      int64 `json:"activeRequests"`
	Processed           int64 `json:"processed"`
	Valid               int64 `json:"valid"`
	Invalid             int64 `json:"invalid"`
	RecognitionFailures int64 `json:"recognitionFailures"`
	Analyzed            int64 `json:"analyzed"`
}

func (m *serverMetrics) incActive() {
	m.mu.Lock()
	m.activeReqs++
	m.totalRequests++
	m.mu.Unlock()
}

func (m *serverMetrics) decActive() {
	m.mu.Lock()
	m.activeReqs--
	m.mu.Unlock()
}

func (m *serverMetrics) recordProcessed(valid bool) {
	m.mu.Lock()
	m.processed++
	if valid {
		m.valid++
	} else {
		m.invalid++
	}
	m.mu.Unlock()
}

func (m *serverMetrics) recordRecognitionFailure() {
	m.mu.Lock()
	m.recognitionFailure++
	m.mu.Unlock()
}

func (m *serverMetrics) recordAnalyzed() {
	m.mu.Lock()
	m.analyzed++
	m.mu.Unlock()
}

func (m *serverMetrics) get() (total, active int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalRequests, m.activeReqs
}

func (m *serverMetrics) snapshot() metricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return metricsSnapshot{
		TotalRequests:       m.totalRequests,
		ActiveRequests:      m.activeReqs,
		Processed:           m.processed,
		Valid:               m.valid,
		Invalid:             m.invalid,
		RecognitionFailures: m.recognitionFailure,
		Analyzed:            m.analyzed,
	}
}
