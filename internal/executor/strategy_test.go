package executor

import (
	"context"
	"sync"
	"testing"

	dockerevents "github.com/docker/docker/api/types/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/stevedore/internal/domain"
	"github.com/quayside/stevedore/internal/events"
	"github.com/quayside/stevedore/internal/invoker"
)

type fakeSource struct {
	mu   sync.Mutex
	refs []string
	msgs chan dockerevents.Message
	errs chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		msgs: make(chan dockerevents.Message),
		errs: make(chan error),
	}
}

func (f *fakeSource) Events(ctx context.Context, containerRef string) (<-chan dockerevents.Message, <-chan error) {
	f.mu.Lock()
	f.refs = append(f.refs, containerRef)
	f.mu.Unlock()
	return f.msgs, f.errs
}

func (f *fakeSource) subscribedRefs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refs...)
}

// hookInvoker runs a callback when the start invocation arrives, before
// delegating. This pins the daemon notification inside the attached-start
// window, where it races the synchronous remove.
type hookInvoker struct {
	inner   *fakeInvoker
	onStart func()
}

func (h *hookInvoker) Invoke(ctx context.Context, argv []string, env map[string]string) (invoker.Result, error) {
	if dockerVerb(argv) == "start" && h.onStart != nil {
		h.onStart()
	}
	return h.inner.Invoke(ctx, argv, env)
}

type fakeLookup struct {
	exists bool
	err    error
}

func (f fakeLookup) ContainerExists(context.Context, string) (bool, error) {
	return f.exists, f.err
}

func newStepStrategy(inv invoker.Invoker, subscriber LifecycleSubscriber, lookup ContainerLookup) *StepStrategy {
	return &StepStrategy{
		Argv:       &invoker.ArgvBuilder{HelperPath: "/usr/local/bin/stevedore-helper", DockerPath: "docker"},
		Inv:        inv,
		Subscriber: subscriber,
		Lookup:     lookup,
	}
}

func stepPlan() domain.LaunchPlan {
	return domain.LaunchPlan{
		Image:             "myrepo/worker:1.2",
		DaemonURL:         "unix:///var/run/docker.sock",
		LocalMounts:       domain.BuildMounts([]string{"/d1", "/d2"}),
		LogMounts:         domain.BuildMounts([]string{"/logs"}),
		ScriptInContainer: "/work/container_1_0001/launch_container.sh",
	}
}

func TestStepStrategy_RemoveOnceAcrossEventAndSyncPaths(t *testing.T) {
	source := newFakeSource()
	inner := &fakeInvoker{results: map[string]invoker.Result{
		"create": {ExitCode: 0, Output: "deadbeefcafe\n"},
	}}
	inv := &hookInvoker{
		inner: inner,
		onStart: func() {
			// Delivered while the start call is in flight; the unbuffered send
			// guarantees the watcher has received it before start returns.
			source.msgs <- dockerevents.Message{Action: dockerevents.ActionDie}
		},
	}

	strategy := newStepStrategy(inv, events.NewReconciler(source), nil)
	res, err := strategy.Launch(context.Background(), launchRequest("myrepo/worker:1.2"), stepPlan())

	require.NoError(t, err)
	assert.Equal(t, domain.ExitSuccess, res.ExitCode)

	removes := 0
	for _, verb := range inner.verbs() {
		if verb == "rm" {
			removes++
		}
	}
	assert.Equal(t, 1, removes, "remove must run exactly once despite two triggers")
}

func TestStepStrategy_SubscribesWithDaemonAssignedID(t *testing.T) {
	source := newFakeSource()
	inner := &fakeInvoker{results: map[string]invoker.Result{
		"create": {ExitCode: 0, Output: "deadbeefcafe\n"},
	}}

	strategy := newStepStrategy(inner, events.NewReconciler(source), nil)
	_, err := strategy.Launch(context.Background(), launchRequest("myrepo/worker:1.2"), stepPlan())

	require.NoError(t, err)
	assert.Equal(t, []string{"deadbeefcafe"}, source.subscribedRefs())
}

func TestStepStrategy_FallsBackToContainerIDWhenCreateOutputEmpty(t *testing.T) {
	source := newFakeSource()
	inner := &fakeInvoker{results: map[string]invoker.Result{
		"create": {ExitCode: 0, Output: "\n"},
	}}

	strategy := newStepStrategy(inner, events.NewReconciler(source), nil)
	_, err := strategy.Launch(context.Background(), launchRequest("myrepo/worker:1.2"), stepPlan())

	require.NoError(t, err)
	assert.Equal(t, []string{"container_1_0001"}, source.subscribedRefs())
}

func TestStepStrategy_SkipsRemoveWhenContainerGone(t *testing.T) {
	inner := &fakeInvoker{results: map[string]invoker.Result{
		"create": {ExitCode: 0, Output: "deadbeefcafe\n"},
	}}

	strategy := newStepStrategy(inner, nil, fakeLookup{exists: false})
	res, err := strategy.Launch(context.Background(), launchRequest("myrepo/worker:1.2"), stepPlan())

	require.NoError(t, err)
	assert.Equal(t, domain.ExitSuccess, res.ExitCode)
	assert.Equal(t, []string{"create", "start"}, inner.verbs())
}

func TestStepStrategy_RemovesWhenLookupFails(t *testing.T) {
	inner := &fakeInvoker{results: map[string]invoker.Result{
		"create": {ExitCode: 0, Output: "deadbeefcafe\n"},
	}}

	strategy := newStepStrategy(inner, nil, fakeLookup{err: context.DeadlineExceeded})
	_, err := strategy.Launch(context.Background(), launchRequest("myrepo/worker:1.2"), stepPlan())

	require.NoError(t, err)
	assert.Equal(t, []string{"create", "start", "rm"}, inner.verbs())
}
