// Package scan implements a periodic poll-bucket helper: a set of tags
// grouped by poll rate, each group read with one CIP_MultiRequest round
// trip per tick (spec.md §2, §9). It is adapted from the teacher's
// plcman.PLCWorker poll loop (manager.go), trimmed from a multi-PLC,
// multi-protocol worker pool down to one ticker per bucket against a
// single session.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/renej-github/etherip/logging"
	"github.com/renej-github/etherip/session"
)

// Bucket polls a fixed set of tags at a fixed interval against one
// Session, delivering each round's results on Results.
type Bucket struct {
	Name     string
	Tags     []string
	Interval time.Duration

	sess    *session.Session
	results chan []session.TagResult

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBucket creates a poll bucket for tags, read every interval via
// sess. interval is clamped to a 50ms floor so a misconfigured bucket
// can't busy-loop the controller.
func NewBucket(name string, sess *session.Session, tags []string, interval time.Duration) *Bucket {
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bucket{
		Name:     name,
		Tags:     tags,
		Interval: interval,
		sess:     sess,
		results:  make(chan []session.TagResult, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Results returns the channel each poll round's tag results are sent
// on. It is buffered by one round; a slow consumer causes the next
// round's results to be dropped rather than blocking the poll loop.
func (b *Bucket) Results() <-chan []session.TagResult { return b.results }

// Start begins the poll loop in a background goroutine.
func (b *Bucket) Start() {
	b.wg.Add(1)
	go b.loop()
}

// Stop halts the poll loop and waits for it to exit.
func (b *Bucket) Stop() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bucket) loop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.poll()
		}
	}
}

func (b *Bucket) poll() {
	results, err := b.sess.ReadMany(b.Tags)
	if err != nil {
		logging.Error("scan", b.Name, err)
		return
	}
	select {
	case b.results <- results:
	default:
	}
}

// Scanner owns a set of named buckets sharing one Session.
type Scanner struct {
	sess    *session.Session
	buckets map[string]*Bucket
	mu      sync.Mutex
}

// NewScanner creates a Scanner bound to sess.
func NewScanner(sess *session.Session) *Scanner {
	return &Scanner{sess: sess, buckets: make(map[string]*Bucket)}
}

// AddBucket creates, starts and registers a new poll bucket.
func (s *Scanner) AddBucket(name string, tags []string, interval time.Duration) *Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := NewBucket(name, s.sess, tags, interval)
	s.buckets[name] = b
	b.Start()
	return b
}

// Bucket returns a previously added bucket by name.
func (s *Scanner) Bucket(name string) (*Bucket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[name]
	return b, ok
}

// Stop halts every bucket and waits for them to exit.
func (s *Scanner) Stop() {
	s.mu.Lock()
	buckets := make([]*Bucket, 0, len(s.buckets))
	for _, b := range s.buckets {
		buckets = append(buckets, b)
	}
	s.mu.Unlock()

	for _, b := range buckets {
		b.Stop()
	}
}
