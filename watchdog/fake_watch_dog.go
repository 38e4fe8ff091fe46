package watchdog

func NewFakeWatchDog() WatchDog {
	return &fakeWatchDogImpl{}
}

type fakeWatchDogImpl struct {
}

func (impl *fakeWatchDogImpl) Touch(_ string) {

}

func (impl *fakeWatchDogImpl) Forget(_ string) {

}

func (impl *fakeWatchDogImpl) Start() {

}

func (impl *fakeWatchDogImpl) Stop() {

}

func (impl *fakeWatchDogImpl) Started() bool {
	return false
}

func (impl *fakeWatchDogImpl) TriggerStop() {

}

func (impl *fakeWatchDogImpl) Wait() {

}
