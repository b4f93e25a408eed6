package db

import (
	"database/sql"
	"sync"
)

type writeJob struct {
	fn   func(db *sql.DB) (interface{}, error)
	done chan writeResult
}

type writeResult struct {
	value interface{}
	err   error
}

// DBQueue funnels all writes through a single goroutine. Concurrent writers
// on one sqlite connection contend for the file lock; serializing them keeps
// SQLITE_BUSY out of the picture. Reads go straight to DB().
type DBQueue struct {
	db   *sql.DB
	jobs chan writeJob

	closeOnce sync.Once
	stopped   chan struct{}
}

func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		db:      db,
		jobs:    make(chan writeJob, 64),
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

// NewDBQueueForTest behaves identically; it exists so test setup reads as
// intent rather than plumbing.
func NewDBQueueForTest(db *sql.DB) *DBQueue {
	return NewDBQueue(db)
}

func (q *DBQueue) run() {
	defer close(q.stopped)
	for job := range q.jobs {
		value, err := job.fn(q.db)
		job.done <- writeResult{value: value, err: err}
	}
}

// DB exposes the underlying handle for read queries.
func (q *DBQueue) DB() *sql.DB {
	return q.db
}

// Execute runs fn on the queue goroutine and waits for its result.
func (q *DBQueue) Execute(fn func(db *sql.DB) (interface{}, error)) (interface{}, error) {
	job := writeJob{fn: fn, done: make(chan writeResult, 1)}
	q.jobs <- job
	result := <-job.done
	return result.value, result.err
}

// Close drains pending writes and stops the queue goroutine. Execute must
// not be called after Close.
func (q *DBQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.jobs)
		<-q.stopped
	})
}
