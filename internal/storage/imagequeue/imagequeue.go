// Package imagequeue deletes listing images from the bucket in the
// background so a listing delete does not wait on object storage.
package imagequeue

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Deleter removes objects by key. *s3.S3Client satisfies it.
type Deleter interface {
	DeleteObjects(ctx context.Context, keys []string) error
}

const (
	batchSize  = 100
	flushEvery = 250 * time.Millisecond
	deleteTO   = 10 * time.Second
)

type Queue struct {
	del  Deleter
	log  logrus.FieldLogger
	ch   chan string
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Start spins up workers reading from a buffer of buf keys.
// Suggested: buf=10000, workers=2
func Start(del Deleter, buf, workers int, log logrus.FieldLogger) *Queue {
	if workers < 1 {
		workers = 1
	}
	q := &Queue{
		del:  del,
		log:  log,
		ch:   make(chan string, buf),
		done: make(chan struct{}),
	}
	for range workers {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue queues keys without blocking and returns how many were accepted.
// Keys that do not fit are dropped; the objects stay in the bucket.
func (q *Queue) Enqueue(keys ...string) int {
	n := 0
	for _, k := range keys {
		if k == "" {
			continue
		}
		select {
		case <-q.done:
			return n
		default:
		}
		select {
		case q.ch <- k:
			n++
		default:
			return n
		}
	}
	return n
}

// Shutdown stops the workers after they have flushed what is queued.
func (q *Queue) Shutdown() {
	q.once.Do(func() { close(q.done) })
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	tk := time.NewTicker(flushEvery)
	defer tk.Stop()

	batch := make([]string, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), deleteTO)
		if err := q.del.DeleteObjects(ctx, batch); err != nil {
			q.log.WithError(err).WithField("objects", len(batch)).Warn("image purge failed")
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-q.done:
			for {
				select {
				case k := <-q.ch:
					batch = append(batch, k)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case k := <-q.ch:
			batch = append(batch, k)
			if len(batch) >= batchSize {
				flush()
			}
		case <-tk.C:
			flush()
		}
	}
}
