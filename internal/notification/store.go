package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/garrettladley/fixit/internal/xslog"
)

// Store owns the deduplicated, newest-first notification collection.
// Every id ever admitted stays in the seen set for the lifetime of the Store.
type Store struct {
	mu      sync.Mutex
	records []Record
	index   map[ID]int
	seen    map[ID]struct{}
	unread  int

	replayMu  sync.Mutex
	persister Persister
	outbox    Outbox
	onIngest  func(Record)
	onChange  func()
	logger    *slog.Logger
}

type StoreOption func(*Store)

func WithOutbox(o Outbox) StoreOption {
	return func(s *Store) { s.outbox = o }
}

// WithSound registers a hook called once per newly ingested record.
func WithSound(fn func(Record)) StoreOption {
	return func(s *Store) { s.onIngest = fn }
}

// WithOnChange registers a hook called after every mutation that changed state.
func WithOnChange(fn func()) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

func NewStore(persister Persister, opts ...StoreOption) *Store {
	s := &Store{
		index:     make(map[ID]int),
		seen:      make(map[ID]struct{}),
		persister: persister,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate admits a REST snapshot. Duplicate ids within the input keep their
// first occurrence; ids already seen are skipped. Admitted records are placed
// after anything ingested so far. Returns the number of admitted records.
func (s *Store) Hydrate(records []Record) int {
	s.mu.Lock()
	admitted := 0
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, ok := s.seen[r.ID]; ok {
			continue
		}
		s.seen[r.ID] = struct{}{}
		s.records = append(s.records, r)
		admitted++
	}
	s.reindex()
	s.unread = s.countUnread()
	s.mu.Unlock()

	if admitted > 0 {
		s.changed()
	}
	return admitted
}

// Ingest admits a single realtime record. It reports false when the id was
// already seen, in which case nothing changes.
func (s *Store) Ingest(r Record) bool {
	if r.ID == "" {
		return false
	}

	s.mu.Lock()
	if _, ok := s.seen[r.ID]; ok {
		s.mu.Unlock()
		return false
	}
	s.seen[r.ID] = struct{}{}
	s.records = append([]Record{r}, s.records...)
	s.reindex()
	if !r.IsRead {
		s.unread++
	}
	s.mu.Unlock()

	if s.onIngest != nil {
		s.onIngest(r)
	}
	s.changed()
	return true
}

// MarkRead flips an unread record to read and persists the change.
// The local change is kept when persisting fails; the failed call is
// queued in the outbox when one is configured.
func (s *Store) MarkRead(ctx context.Context, id ID) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok || s.records[i].IsRead {
		s.mu.Unlock()
		return nil
	}
	s.records[i].IsRead = true
	s.unread = max(s.unread-1, 0)
	s.mu.Unlock()

	s.changed()

	if err := s.persister.MarkRead(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to persist read state",
			xslog.Error(err),
			xslog.NotificationID(id.String()),
		)
		s.enqueue(ctx, OpMarkRead, id)
		return fmt.Errorf("%w: mark read %s: %w", ErrPersist, id, err)
	}
	return nil
}

// MarkAllRead marks every record read and persists the bulk change.
// The local change is unconditional.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	var marked []ID
	for i := range s.records {
		if !s.records[i].IsRead {
			s.records[i].IsRead = true
			marked = append(marked, s.records[i].ID)
		}
	}
	s.unread = 0
	s.mu.Unlock()

	if len(marked) > 0 {
		s.changed()
	}

	if err := s.persister.MarkAllRead(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to persist read-all state",
			xslog.Error(err),
			xslog.Count(len(marked)),
		)
		// queue only the records this call marked; anything ingested before
		// the replay stays unread on the server
		for _, id := range marked {
			s.enqueue(ctx, OpMarkRead, id)
		}
		return fmt.Errorf("%w: mark all read: %w", ErrPersist, err)
	}
	return nil
}

// Reconcile replays queued persist calls in order. It stops at the first
// failure and returns the number of replayed calls.
func (s *Store) Reconcile(ctx context.Context) (int, error) {
	if s.outbox == nil {
		return 0, nil
	}

	s.replayMu.Lock()
	defer s.replayMu.Unlock()

	ops, err := s.outbox.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending operations: %w", err)
	}

	replayed := 0
	for _, op := range ops {
		var perr error
		switch op.Kind {
		case OpMarkRead:
			perr = s.persister.MarkRead(ctx, op.NotificationID)
		default:
			s.logger.WarnContext(ctx, "dropping unknown outbox operation", xslog.Op(string(op.Kind)))
		}
		if perr != nil {
			return replayed, fmt.Errorf("%w: replay %s: %w", ErrPersist, op.Kind, perr)
		}
		if err := s.outbox.Remove(ctx, op.Seq); err != nil {
			return replayed, fmt.Errorf("failed to remove replayed operation: %w", err)
		}
		replayed++
	}

	if replayed > 0 {
		s.logger.InfoContext(ctx, "replayed queued read state", xslog.Count(replayed))
	}
	return replayed, nil
}

// Records returns a copy of the collection, newest first.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) Get(id ID) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

func (s *Store) enqueue(ctx context.Context, kind OpKind, id ID) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Enqueue(ctx, kind, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to queue read state",
			xslog.Error(err),
			xslog.Op(string(kind)),
		)
	}
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// must hold s.mu
func (s *Store) reindex() {
	clear(s.index)
	for i, r := range s.records {
		s.index[r.ID] = i
	}
}

// must hold s.mu
func (s *Store) countUnread() int {
	n := 0
	for _, r := range s.records {
		if !r.IsRead {
			n++
		}
	}
	return n
}
