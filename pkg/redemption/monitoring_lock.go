package redemption

import (
	"sync"
)

type monitoringLock struct {
	locks map[string]bool
	mutex sync.Mutex
}

func newMonitoringLock() *monitoringLock {
	return &monitoringLock{
		locks: make(map[string]bool),
	}
}

func (ml *monitoringLock) tryLock(requestID string) bool {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	if ml.locks[requestID] {
		return false
	}

	ml.locks[requestID] = true

	return true
}

func (ml *monitoringLock) release(requestID string) {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	delete(ml.locks, requestID)
}

func (ml *monitoringLock) count() int {
	ml.mutex.Lock()
	defer ml.mutex.Unlock()

	return len(ml.locks)
}
