// Package snowflake mints unique, roughly time-sortable 64-bit ids composed
// of a millisecond timestamp, a generator (node) id and a per-millisecond
// sequence counter. Callers assign each concurrently-running generator a
// distinct id; no coordination or persistence is involved.
package snowflake

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Generator mints ids for a single generator identity. It is safe for
// concurrent use; every mint serializes on an internal mutex. The Config is
// read-only and may be shared across generators.
type Generator struct {
	cfg         Config
	generatorID int64
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics

	mu sync.Mutex
	// lastTimestamp is the masked millisecond bucket of the previous
	// clock-based id, -1 when none has been minted yet.
	lastTimestamp    int64
	sequence         int64
	explicitSequence int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithConfig sets the bit layout and epoch. Defaults to DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(g *Generator) { g.cfg = cfg }
}

// WithClock overrides the wall-clock source, for tests that need a frozen or
// scripted clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// New creates a Generator minting ids as generatorID, which must fit in the
// config's generator-id field.
func New(generatorID int64, opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg:           DefaultConfig(),
		generatorID:   generatorID,
		now:           time.Now,
		lastTimestamp: -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default().With("component", "snowflake")
	}
	if generatorID < 0 || generatorID > g.cfg.generatorIDMask {
		return nil, fmt.Errorf("%w: %d is not in [0, %d]",
			ErrGeneratorIDOutOfRange, generatorID, g.cfg.generatorIDMask)
	}
	return g, nil
}

// NewID mints an id from the current wall clock. Ids minted by the same
// generator within the same millisecond differ in sequence; once a
// millisecond's sequence space is exhausted the call waits, lock held, for
// the clock to reach the next millisecond.
func (g *Generator) NewID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts, err := g.maskedMillis(g.now())
	if err != nil {
		return 0, err
	}

	if ts == g.lastTimestamp {
		if g.sequence < g.cfg.sequenceMask {
			g.sequence++
		} else {
			ts = g.nextMillis(ts)
			g.sequence = 0
			g.lastTimestamp = ts
		}
	} else {
		g.sequence = 0
		g.lastTimestamp = ts
	}

	g.metrics.minted(sourceClock)
	return g.pack(ts, g.sequence), nil
}

// NewIDAt mints an id for an explicit timestamp instead of the wall clock.
// Explicit ids draw from their own sequence counter, which increments and
// wraps on every call regardless of whether the timestamp repeats, and the
// call never blocks. Repeating one timestamp past a full sequence wrap
// yields duplicate ids; spacing those out is the caller's responsibility.
func (g *Generator) NewIDAt(t time.Time) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts, err := g.maskedMillis(t)
	if err != nil {
		return 0, err
	}
	seq := g.explicitSequence
	g.explicitSequence = (g.explicitSequence + 1) & g.cfg.sequenceMask

	g.metrics.minted(sourceExplicit)
	return g.pack(ts, seq), nil
}

// DecodeTimestamp returns the point in time encoded in id, at millisecond
// resolution relative to the config's epoch.
func (g *Generator) DecodeTimestamp(id int64) time.Time {
	ms := (id >> g.cfg.timestampShift) & g.cfg.timestampMask
	return g.cfg.epoch.Add(time.Duration(ms) * time.Millisecond)
}

// DecodeGeneratorID returns the generator identity encoded in id.
func (g *Generator) DecodeGeneratorID(id int64) int64 {
	return (id >> g.cfg.generatorIDShift) & g.cfg.generatorIDMask
}

// DecodeSequence returns the sequence counter encoded in id.
func (g *Generator) DecodeSequence(id int64) int64 {
	return id & g.cfg.sequenceMask
}

// maskedMillis converts t to milliseconds since the epoch, masked to the
// timestamp field's width. Values past the field's range alias modulo
// 2^TimestampBits; see Config.WraparoundDate.
func (g *Generator) maskedMillis(t time.Time) (int64, error) {
	elapsed := t.Sub(g.cfg.epoch).Milliseconds()
	if elapsed < 0 {
		return 0, fmt.Errorf("%w: %s is before %s",
			ErrTimestampBeforeEpoch, t.UTC().Format(time.RFC3339Nano), g.cfg.epoch.Format(time.RFC3339))
	}
	return elapsed & g.cfg.timestampMask, nil
}

// nextMillis spins until the clock yields a masked millisecond strictly
// after last. It runs with the generator lock held, so every caller on this
// generator stalls until the clock advances.
func (g *Generator) nextMillis(last int64) int64 {
	g.metrics.exhausted()
	g.logger.Debug("sequence space exhausted, waiting for next millisecond", "bucket", last)
	for {
		ts := g.now().Sub(g.cfg.epoch).Milliseconds() & g.cfg.timestampMask
		if ts > last {
			return ts
		}
		time.Sleep(time.Millisecond / 8)
	}
}

func (g *Generator) pack(ts, seq int64) int64 {
	tsPart := (ts & g.cfg.timestampMask) << g.cfg.timestampShift
	genPart := (g.generatorID & g.cfg.generatorIDMask) << g.cfg.generatorIDShift
	seqPart := seq & g.cfg.sequenceMask
	return tsPart | genPart | seqPart
}
