package recorder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/godruoyi/go-snowflake"
	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/routineman"
	"github.com/sgostarter/libtemporal/carrier"
	"github.com/sgostarter/libtemporal/codec"
	"github.com/sgostarter/libtemporal/span"
	"github.com/sgostarter/libtemporal/temporal"
	"github.com/sgostarter/libtemporal/watchdog"
	"github.com/spf13/cast"
)

// Recorder keeps one temporal value per stream key and feeds it with readings.
// Each stream has a single writer lock; readers get immutable snapshots.
type Recorder[V any] struct {
	logger l.Wrapper

	cfg     Config
	c       carrier.Carrier[V]
	interp  carrier.Interp
	storage Storage
	metrics *Metrics

	routineMan routineman.RoutineMan
	watchDog   watchdog.WatchDog

	streamsLock sync.RWMutex
	streams     map[string]*stream[V]

	snapshots *cache.Cache
}

type stream[V any] struct {
	id      string
	lock    sync.RWMutex
	temp    temporal.Temporal[V]
	version uint64
	saved   uint64
}

type grower interface {
	Grow(n int)
}

func NewRecorder[V any](c carrier.Carrier[V], cfg Config, storage Storage, metrics *Metrics,
	logger l.Wrapper) *Recorder[V] {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "Recorder"))

	if c == nil || storage == nil {
		logger.Fatal("no dependency objects")
	}

	cfg.fix()

	interp, err := parseInterp(c, cfg.Interp)
	if err != nil {
		logger.WithFields(l.ErrorField(err)).Fatal("invalid interpolation")
	}

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	impl := &Recorder[V]{
		logger:     logger,
		cfg:        cfg,
		c:          c,
		interp:     interp,
		storage:    storage,
		metrics:    metrics,
		routineMan: routineman.NewRoutineMan(context.Background(), logger),
		watchDog:   watchdog.NewFakeWatchDog(),
		streams:    make(map[string]*stream[V]),
		snapshots:  cache.New(cfg.SnapshotTTL, cfg.SnapshotTTL*2),
	}

	impl.init()

	return impl
}

func (impl *Recorder[V]) init() {
	keys, err := impl.storage.Keys(context.Background())
	if err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("list stored streams failed")
	}

	for _, key := range keys {
		if err = impl.Load(context.Background(), key); err != nil {
			impl.logger.WithFields(l.ErrorField(err), l.StringField("stream", key)).Error("load stream failed")
		}
	}

	if impl.cfg.FlushInterval > 0 {
		impl.routineMan.StartRoutine(impl.flushRoutine, "flushRoutine")
	}
}

func (impl *Recorder[V]) TriggerStop() {
	impl.routineMan.TriggerStop()
}

func (impl *Recorder[V]) Wait() {
	impl.routineMan.Wait()
}

// Watch reports streams that go silent to wd. It must be called before the
// first append.
func (impl *Recorder[V]) Watch(wd watchdog.WatchDog) {
	if wd == nil {
		wd = watchdog.NewFakeWatchDog()
	}

	impl.watchDog = wd
}

func (impl *Recorder[V]) Interp() carrier.Interp {
	return impl.interp
}

// NewStreamID returns a fresh, time ordered stream key.
func (impl *Recorder[V]) NewStreamID() string {
	return strconv.FormatUint(snowflake.ID(), 36)
}

func (impl *Recorder[V]) getStream(key string, create bool) *stream[V] {
	impl.streamsLock.RLock()
	s, ok := impl.streams[key]
	impl.streamsLock.RUnlock()

	if ok || !create {
		return s
	}

	impl.streamsLock.Lock()
	defer impl.streamsLock.Unlock()

	if s, ok = impl.streams[key]; !ok {
		s = &stream[V]{id: impl.NewStreamID()}
		impl.streams[key] = s
	}

	return s
}

func (impl *Recorder[V]) Keys() []string {
	impl.streamsLock.RLock()

	keys := make([]string, 0, len(impl.streams))

	for key, s := range impl.streams {
		s.lock.RLock()
		if s.temp != nil {
			keys = append(keys, key)
		}
		s.lock.RUnlock()
	}

	impl.streamsLock.RUnlock()

	sort.Strings(keys)

	return keys
}

func (impl *Recorder[V]) Append(key string, v V, at time.Time) error {
	return impl.AppendInstant(key, temporal.Instant[V]{Value: v, T: span.FromTime(at)})
}

// AppendAny coerces a loosely typed reading. at may be anything cast.ToTimeE
// understands, such as a time.Time, unix seconds or an RFC 3339 string.
func (impl *Recorder[V]) AppendAny(key string, x any, at any) error {
	t, err := cast.ToTimeE(at)
	if err != nil {
		impl.metrics.Rejected.WithLabelValues(key, "time").Inc()

		return fmt.Errorf("%w: %v", carrier.ErrCoerce, err)
	}

	v, err := impl.c.Coerce(x)
	if err != nil {
		impl.metrics.Rejected.WithLabelValues(key, "value").Inc()

		return err
	}

	return impl.Append(key, v, t)
}

func (impl *Recorder[V]) AppendInstant(key string, inst temporal.Instant[V]) (err error) {
	s := impl.getStream(key, true)

	s.lock.Lock()
	defer s.lock.Unlock()

	var temp temporal.Temporal[V]

	if s.temp == nil {
		temp, err = temporal.NewTInstantInterp(impl.c, inst.Value, inst.T, impl.interp)
	} else {
		temp, err = temporal.AppendInstant(s.temp, inst, impl.cfg.gap())
	}

	if err != nil {
		impl.metrics.Rejected.WithLabelValues(key, rejectReason(err)).Inc()
		impl.logger.WithFields(l.StringField("stream", key), l.ErrorField(err)).Warn("append rejected")

		return
	}

	if s.temp != nil && s.temp.Subtype() == temporal.SubtypeInstant {
		if g, ok := temp.(grower); ok {
			g.Grow(impl.cfg.InitialCapacity)
		}
	}

	s.temp = temp

	impl.trim(s)

	s.version++

	impl.watchDog.Touch(key)
	impl.metrics.Appends.WithLabelValues(key).Inc()
	impl.metrics.observe(key, numComponents(s.temp), s.temp.NumInstants())

	return
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, temporal.ErrUnsortedInput):
		return "unsorted"
	case errors.Is(err, temporal.ErrConflictingOverlap):
		return "conflict"
	default:
		return "invalid"
	}
}

func numComponents[V any](temp temporal.Temporal[V]) int {
	if ss, ok := temp.(*temporal.TSequenceSet[V]); ok {
		return ss.NumSequences()
	}

	return 1
}

// trim drops readings older than the retention window. It waits until half a
// window has piled up so that appends do not copy the stream every time.
func (impl *Recorder[V]) trim(s *stream[V]) {
	retention := impl.cfg.Retention
	if retention <= 0 {
		return
	}

	end := s.temp.EndInstant().T
	cutoff := end.Add(-retention)

	if s.temp.StartInstant().T.Add(retention/2) >= cutoff {
		return
	}

	kept, err := temporal.AtPeriod(s.temp, span.Period{Lower: cutoff, Upper: end, LowerInc: true, UpperInc: true})
	if err != nil || kept == nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("trim stream failed")

		return
	}

	if g, ok := kept.(grower); ok {
		g.Grow(impl.cfg.InitialCapacity)
	}

	s.temp = kept
}

// Snapshot returns the current value of the stream. Snapshots are shared between
// readers of the same version and must not be modified.
func (impl *Recorder[V]) Snapshot(key string) (temporal.Temporal[V], error) {
	s := impl.getStream(key, false)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoStream, key)
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.temp == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoStream, key)
	}

	cacheKey := s.id + "@" + strconv.FormatUint(s.version, 10)

	if i, ok := impl.snapshots.Get(cacheKey); ok {
		if temp, ok := i.(temporal.Temporal[V]); ok {
			return temp, nil
		}
	}

	temp := s.temp.Clone()
	impl.snapshots.Set(cacheKey, temp, cache.DefaultExpiration)

	return temp, nil
}

// Window restricts the stream to p.
func (impl *Recorder[V]) Window(key string, p span.Period) (temporal.Temporal[V], error) {
	temp, err := impl.Snapshot(key)
	if err != nil {
		return nil, err
	}

	return temporal.AtPeriod(temp, p)
}

func (impl *Recorder[V]) ValueAt(key string, at time.Time) (v V, ok bool, err error) {
	temp, err := impl.Snapshot(key)
	if err != nil {
		return
	}

	v, ok = temp.ValueAt(span.FromTime(at))

	return
}

//
//
//

func (impl *Recorder[V]) flushRoutine(ctx context.Context, _ func() bool) {
	logger := impl.logger.WithFields(l.StringField(l.RoutineKey, "flushRoutine"))

	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case <-time.After(impl.cfg.FlushInterval):
			if err := impl.Flush(ctx); err != nil {
				logger.WithFields(l.ErrorField(err)).Error("flush failed")
			}
		}
	}

	if err := impl.Flush(context.Background()); err != nil {
		logger.WithFields(l.ErrorField(err)).Error("final flush failed")
	}
}

// Flush saves every stream changed since its last save.
func (impl *Recorder[V]) Flush(ctx context.Context) error {
	var errs []error

	for _, key := range impl.Keys() {
		if err := impl.flushStream(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (impl *Recorder[V]) flushStream(ctx context.Context, key string) (err error) {
	s := impl.getStream(key, false)
	if s == nil {
		return
	}

	s.lock.RLock()

	if s.temp == nil || s.version == s.saved {
		s.lock.RUnlock()

		return
	}

	d := codec.Encode(s.temp, impl.cfg.variant())
	version := s.version

	s.lock.RUnlock()

	start := time.Now()

	err = impl.storage.Save(ctx, key, d)

	impl.metrics.FlushDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		impl.metrics.Flushes.WithLabelValues("error").Inc()

		return
	}

	impl.metrics.Flushes.WithLabelValues("ok").Inc()

	s.lock.Lock()
	if s.saved < version {
		s.saved = version
	}
	s.lock.Unlock()

	return
}

// Load replaces the stream with its stored value.
func (impl *Recorder[V]) Load(ctx context.Context, key string) error {
	d, err := impl.storage.Load(ctx, key)
	if err != nil {
		return err
	}

	temp, err := codec.Decode(impl.c, d)
	if err != nil {
		return err
	}

	if temp.Interp() != impl.interp {
		return fmt.Errorf("%w: stored %s, configured %s", temporal.ErrInvalidInterp, temp.Interp(), impl.interp)
	}

	if g, ok := temp.(grower); ok {
		g.Grow(impl.cfg.InitialCapacity)
	}

	s := impl.getStream(key, true)

	s.lock.Lock()
	s.temp = temp
	s.version++
	s.saved = s.version
	s.lock.Unlock()

	impl.metrics.observe(key, numComponents(temp), temp.NumInstants())

	return nil
}

// Remove drops the stream from storage and then from memory. The stream stays
// in memory when the storage removal fails.
func (impl *Recorder[V]) Remove(ctx context.Context, key string) error {
	if err := impl.storage.Remove(ctx, key); err != nil {
		return err
	}

	impl.streamsLock.Lock()
	delete(impl.streams, key)
	impl.streamsLock.Unlock()

	impl.metrics.forget(key)
	impl.watchDog.Forget(key)

	return nil
}
