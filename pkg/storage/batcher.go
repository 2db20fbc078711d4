// pkg/storage/batcher.go
package storage

import (
	"log"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	batchSize     = 100
	batchInterval = 250 * time.Millisecond
)

// Batcher coalesces history records into one bbolt transaction per batch.
// Put never blocks on disk; Close flushes whatever is pending.
type Batcher struct {
	h    *History
	ch   chan Record
	done chan struct{}
	once sync.Once
}

func NewBatcher(h *History) *Batcher {
	b := &Batcher{h: h, ch: make(chan Record, 1024), done: make(chan struct{})}
	go b.loop()
	return b
}

func (b *Batcher) Put(r Record) { b.ch <- r }

// Close stops the loop after flushing queued records. Put must not be
// called after Close.
func (b *Batcher) Close() {
	b.once.Do(func() {
		close(b.ch)
		<-b.done
	})
}

func (b *Batcher) loop() {
	defer close(b.done)
	buf := make([]Record, 0, batchSize)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		err := b.h.db.Update(func(tx *bolt.Tx) error {
			bk := tx.Bucket([]byte(historyBucket))
			for _, r := range buf {
				if _, err := putRecord(bk, r); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("[history] flush of %d records failed: %v", len(buf), err)
		}
		buf = buf[:0]
	}
	ticker := time.NewTicker(batchInterval)
	defer ticker.Stop()
	for {
		select {
		case r, ok := <-b.ch:
			if !ok {
				flush()
				return
			}
			buf = append(buf, r)
			if len(buf) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
