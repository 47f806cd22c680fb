package infrastructure

import (
	"sync"

	"github.com/gofrs/flock"
)

var processLocks sync.Map // absolute path -> *sync.Mutex

// fileLock serializes writers of one backing file: goroutines through a process
// wide mutex, processes through an advisory lock on a sibling ".lock" file.
type fileLock struct {
	mu    *sync.Mutex
	flock *flock.Flock
}

func newFileLock(path string) *fileLock {
	mu, _ := processLocks.LoadOrStore(path, &sync.Mutex{})
	return &fileLock{
		mu:    mu.(*sync.Mutex),
		flock: flock.New(path + ".lock"),
	}
}

func (l *fileLock) lock() error {
	l.mu.Lock()
	if err := l.flock.Lock(); err != nil {
		l.mu.Unlock()
		return err
	}
	return nil
}

func (l *fileLock) unlock() error {
	defer l.mu.Unlock()
	return l.flock.Unlock()
}
