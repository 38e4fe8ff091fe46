package watchdog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/routineman"
)

// WatchDog reports streams that stopped receiving readings.
type WatchDog interface {
	Touch(key string)
	Forget(key string)

	Start()
	Stop()
	Started() bool

	TriggerStop()
	Wait()
}

type INotify interface {
	NotifyTimeout(key string, silence time.Duration)
}

type NotifyFunc func(key string, silence time.Duration)

func (f NotifyFunc) NotifyTimeout(key string, silence time.Duration) {
	f(key, silence)
}

type Config struct {
	CheckInterval time.Duration

	CheckMaxDuration time.Duration
	CheckFailCount   int
}

func NewWatchDog(cfg Config, notify INotify, logger l.Wrapper) WatchDog {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "watchDogImpl"))

	if notify == nil {
		logger.Fatal("no dependency objects")
	}

	impl := &watchDogImpl{
		logger:     logger,
		cfg:        cfg,
		notify:     notify,
		routineMan: routineman.NewRoutineMan(context.Background(), logger),
		streams:    make(map[string]*streamState),
	}

	impl.init()

	return impl
}

type streamState struct {
	lastTouchAt time.Time
	failCount   int
}

type watchDogImpl struct {
	logger     l.Wrapper
	cfg        Config
	notify     INotify
	routineMan routineman.RoutineMan

	lock    sync.Mutex
	started bool
	streams map[string]*streamState
}

func (impl *watchDogImpl) Touch(key string) {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	st, ok := impl.streams[key]
	if !ok {
		st = &streamState{}
		impl.streams[key] = st
	}

	st.lastTouchAt = time.Now()
	st.failCount = 0
}

func (impl *watchDogImpl) Forget(key string) {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	delete(impl.streams, key)
}

func (impl *watchDogImpl) Start() {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.started = true

	now := time.Now()

	for _, st := range impl.streams {
		st.lastTouchAt = now
		st.failCount = 0
	}
}

func (impl *watchDogImpl) Stop() {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	impl.started = false
}

func (impl *watchDogImpl) Started() bool {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	return impl.started
}

func (impl *watchDogImpl) TriggerStop() {
	impl.routineMan.TriggerStop()
}

func (impl *watchDogImpl) Wait() {
	impl.routineMan.Wait()
}

func (impl *watchDogImpl) init() {
	if impl.cfg.CheckInterval <= 0 {
		impl.cfg.CheckInterval = time.Second * 20
	}

	if impl.cfg.CheckMaxDuration <= 0 {
		impl.cfg.CheckMaxDuration = time.Minute
	}

	if impl.cfg.CheckFailCount <= 0 {
		impl.cfg.CheckFailCount = 1
	}

	impl.routineMan.StartRoutine(impl.mainRoutine, "mainRoutine")
}

type timeout struct {
	key     string
	silence time.Duration
}

// check returns the streams silent for CheckFailCount checks in a row and
// rearms them.
func (impl *watchDogImpl) check(now time.Time) (timeouts []timeout) {
	impl.lock.Lock()
	defer impl.lock.Unlock()

	if !impl.started {
		return
	}

	for key, st := range impl.streams {
		silence := now.Sub(st.lastTouchAt)
		if silence < impl.cfg.CheckMaxDuration {
			st.failCount = 0

			continue
		}

		st.failCount++

		if st.failCount >= impl.cfg.CheckFailCount {
			timeouts = append(timeouts, timeout{key: key, silence: silence})

			st.failCount = 0
			st.lastTouchAt = now
		}
	}

	sort.Slice(timeouts, func(i, j int) bool {
		return timeouts[i].key < timeouts[j].key
	})

	return
}

func (impl *watchDogImpl) mainRoutine(ctx context.Context, _ func() bool) {
	logger := impl.logger.WithFields(l.StringField(l.RoutineKey, "mainRoutine"))

	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case <-time.After(impl.cfg.CheckInterval):
			for _, to := range impl.check(time.Now()) {
				logger.WithFields(l.StringField("stream", to.key), l.StringField("silence", to.silence.String())).
					Warn("stream silent")
				impl.notify.NotifyTimeout(to.key, to.silence)
			}
		}
	}
}
