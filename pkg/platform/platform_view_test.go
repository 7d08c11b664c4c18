package platform

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

// --- Test helpers ---

// testBridge captures native method invocations for assertions.
type testBridge struct {
	mu    sync.Mutex
	calls []testBridgeCall

	// respond, when set, supplies the response for an invocation.
	respond func(channel, method string, args any) (any, error)
}

type testBridgeCall struct {
	channel string
	method  string
	args    any // JSON-decoded
}

func (b *testBridge) InvokeMethod(channel, method string, argsData []byte) ([]byte, error) {
	var args any
	if len(argsData) > 0 {
		json.Unmarshal(argsData, &args)
	}
	b.mu.Lock()
	b.calls = append(b.calls, testBridgeCall{channel: channel, method: method, args: args})
	respond := b.respond
	b.mu.Unlock()

	if respond != nil {
		result, err := respond(channel, method, args)
		if err != nil {
			return nil, err
		}
		return DefaultCodec.Encode(result)
	}
	return DefaultCodec.Encode(nil)
}

func (b *testBridge) StartEventStream(string) error { return nil }
func (b *testBridge) StopEventStream(string) error  { return nil }

// callsFor returns the captured calls matching the given method.
func (b *testBridge) callsFor(method string) []testBridgeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var result []testBridgeCall
	for _, c := range b.calls {
		if c.method == method {
			result = append(result, c)
		}
	}
	return result
}

func (b *testBridge) reset() {
	b.mu.Lock()
	b.calls = b.calls[:0]
	b.mu.Unlock()
}

func setupTestBridge(t *testing.T) *testBridge {
	t.Helper()
	bridge := &testBridge{}
	SetupTestBridge(t.Cleanup)
	SetNativeBridge(bridge)
	return bridge
}

// sendViewEvent simulates a native per-view event arriving on the platform
// view event channel.
func sendViewEvent(t *testing.T, args map[string]any) {
	t.Helper()
	data, err := DefaultCodec.Encode(args)
	if err != nil {
		t.Fatalf("encode event: %v", err)
	}
	if err := HandleEvent("motion/platform_views/events", data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

// sinkView is a minimal PlatformView recording routed events.
type sinkView struct {
	id     int64
	events []sinkEvent
}

type sinkEvent struct {
	method string
	args   map[string]any
}

func (v *sinkView) ViewID() int64                      { return v.id }
func (v *sinkView) ViewType() string                   { return "test" }
func (v *sinkView) Create(params map[string]any) error { return nil }
func (v *sinkView) Dispose()                           {}
func (v *sinkView) SetFrame(Frame)                     {}
func (v *sinkView) SetVisible(bool)                    {}

func (v *sinkView) OnViewEvent(method string, args map[string]any) {
	v.events = append(v.events, sinkEvent{method: method, args: args})
}

// registerTestView inserts a view directly into the global registry.
func registerTestView(t *testing.T, view PlatformView) {
	t.Helper()
	r := GetPlatformViewRegistry()
	r.mu.Lock()
	r.views[view.ViewID()] = view
	r.mu.Unlock()
	t.Cleanup(func() {
		r.mu.Lock()
		delete(r.views, view.ViewID())
		r.mu.Unlock()
	})
}

// --- Tests ---

func TestRegistryCreateAndDispose(t *testing.T) {
	bridge := setupTestBridge(t)
	r := GetPlatformViewRegistry()

	view, err := r.Create("motion_view", map[string]any{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.ViewID() == 0 {
		t.Error("expected non-zero view ID")
	}
	if got := r.GetView(view.ViewID()); got != view {
		t.Error("GetView should return the created view")
	}

	creates := bridge.callsFor("create")
	if len(creates) != 1 {
		t.Fatalf("create calls: got %d, want 1", len(creates))
	}
	if creates[0].channel != "motion/platform_views" {
		t.Errorf("create channel: got %q, want %q", creates[0].channel, "motion/platform_views")
	}
	args := creates[0].args.(map[string]any)
	if args["viewType"] != "motion_view" {
		t.Errorf("create viewType: got %v, want motion_view", args["viewType"])
	}

	r.Dispose(view.ViewID())
	if r.GetView(view.ViewID()) != nil {
		t.Error("view should be unregistered after Dispose")
	}
	if len(bridge.callsFor("dispose")) != 1 {
		t.Error("expected one dispose call to native")
	}
}

func TestRegistryCreateUnknownType(t *testing.T) {
	setupTestBridge(t)

	_, err := GetPlatformViewRegistry().Create("no_such_view", nil)
	if !errors.Is(err, ErrViewTypeNotFound) {
		t.Errorf("expected ErrViewTypeNotFound, got %v", err)
	}
}

func TestRegistryRoutesViewEvents(t *testing.T) {
	setupTestBridge(t)

	view := &sinkView{id: 7}
	registerTestView(t, view)

	sendViewEvent(t, map[string]any{
		"viewId":   7,
		"method":   "onProgressUpdate",
		"progress": 0.5,
	})

	if len(view.events) != 1 {
		t.Fatalf("routed events: got %d, want 1", len(view.events))
	}
	if view.events[0].method != "onProgressUpdate" {
		t.Errorf("routed method: got %q, want onProgressUpdate", view.events[0].method)
	}
	if p, _ := toFloat64(view.events[0].args["progress"]); p != 0.5 {
		t.Errorf("routed progress: got %v, want 0.5", p)
	}
}

func TestRegistryDropsEventsForUnknownView(t *testing.T) {
	setupTestBridge(t)

	view := &sinkView{id: 8}
	registerTestView(t, view)

	// Addressed to a view that does not exist; must not panic and must not
	// reach the registered view.
	sendViewEvent(t, map[string]any{
		"viewId": 999,
		"method": "onProgressUpdate",
	})

	if len(view.events) != 0 {
		t.Errorf("expected no routed events, got %d", len(view.events))
	}
}

func TestRegistryRoutingSurvivesReset(t *testing.T) {
	setupTestBridge(t)

	// ResetForTest clears subscriptions and replays the builtin router
	// registration; routing must still work afterwards.
	ResetForTest()
	SetNativeBridge(&testBridge{})
	RegisterDispatch(func(cb func()) { cb() })

	view := &sinkView{id: 3}
	registerTestView(t, view)

	sendViewEvent(t, map[string]any{
		"viewId": 3,
		"method": "onStateChanged",
		"state":  0,
	})

	if len(view.events) != 1 {
		t.Fatalf("routed events after reset: got %d, want 1", len(view.events))
	}
}

func TestInvokeViewMethodDoesNotMutateArgs(t *testing.T) {
	setupTestBridge(t)

	args := map[string]any{"progress": 0.25}
	if _, err := GetPlatformViewRegistry().InvokeViewMethod(12, "setProgress", args); err != nil {
		t.Fatalf("InvokeViewMethod: %v", err)
	}

	if len(args) != 1 {
		t.Errorf("caller args mutated: %v", args)
	}
}

func TestInvokeViewMethodAddsRoutingFields(t *testing.T) {
	bridge := setupTestBridge(t)

	if _, err := GetPlatformViewRegistry().InvokeViewMethod(12, "flush", nil); err != nil {
		t.Fatalf("InvokeViewMethod: %v", err)
	}

	calls := bridge.callsFor("invokeViewMethod")
	if len(calls) != 1 {
		t.Fatalf("invokeViewMethod calls: got %d, want 1", len(calls))
	}
	sent := calls[0].args.(map[string]any)
	if id, _ := toInt64(sent["viewId"]); id != 12 {
		t.Errorf("viewId: got %v, want 12", sent["viewId"])
	}
	if sent["method"] != "flush" {
		t.Errorf("method: got %v, want flush", sent["method"])
	}
}

func TestBasePlatformViewGeometryAndVisibility(t *testing.T) {
	bridge := setupTestBridge(t)

	view := newMotionView(5)
	view.SetFrame(Frame{X: 10, Y: 20, Width: 320, Height: 240})
	view.SetVisible(false)

	geo := bridge.callsFor("setGeometry")
	if len(geo) != 1 {
		t.Fatalf("setGeometry calls: got %d, want 1", len(geo))
	}
	sent := geo[0].args.(map[string]any)
	if sent["width"].(float64) != 320 || sent["height"].(float64) != 240 {
		t.Errorf("geometry size: got %vx%v, want 320x240", sent["width"], sent["height"])
	}

	vis := bridge.callsFor("setVisible")
	if len(vis) != 1 {
		t.Fatalf("setVisible calls: got %d, want 1", len(vis))
	}
	if vis[0].args.(map[string]any)["visible"] != false {
		t.Error("visible flag should be false")
	}
}
