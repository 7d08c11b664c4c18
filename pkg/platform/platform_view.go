package platform

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/motion/pkg/errors"
)

// Frame describes a platform view's position and size in logical pixels.
type Frame struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// PlatformView represents a native view embedded in a host application.
type PlatformView interface {
	// ViewID returns the unique identifier for this view.
	ViewID() int64

	// ViewType returns the type identifier for this view (e.g., "motion_view").
	ViewType() string

	// Create initializes the native view with given parameters.
	Create(params map[string]any) error

	// Dispose cleans up the native view.
	Dispose()

	// SetFrame updates the view position and size in logical pixels.
	SetFrame(frame Frame)

	// SetVisible shows or hides the native view.
	SetVisible(visible bool)
}

// viewEventSink is implemented by platform views that receive per-view events
// from the native side. The registry routes events by viewId.
type viewEventSink interface {
	OnViewEvent(method string, args map[string]any)
}

// PlatformViewFactory creates platform views of a specific type.
type PlatformViewFactory interface {
	// Create creates a new platform view instance.
	Create(viewID int64, params map[string]any) (PlatformView, error)

	// ViewType returns the view type this factory creates.
	ViewType() string
}

// PlatformViewRegistry manages platform view types and instances.
type PlatformViewRegistry struct {
	factories map[string]PlatformViewFactory
	views     map[int64]PlatformView
	nextID    atomic.Int64
	mu        sync.RWMutex
	channel   *MethodChannel
	events    *EventChannel
}

var platformViewRegistry *PlatformViewRegistry

// GetPlatformViewRegistry returns the global platform view registry.
func GetPlatformViewRegistry() *PlatformViewRegistry {
	if platformViewRegistry == nil {
		platformViewRegistry = newPlatformViewRegistry()
	}
	return platformViewRegistry
}

func newPlatformViewRegistry() *PlatformViewRegistry {
	r := &PlatformViewRegistry{
		factories: make(map[string]PlatformViewFactory),
		views:     make(map[int64]PlatformView),
		channel:   NewMethodChannel("motion/platform_views"),
		events:    NewEventChannel("motion/platform_views/events"),
	}

	// Handle incoming calls from native
	r.channel.SetHandler(r.handleMethodCall)

	// Route per-view events (state changes, progress updates) to views.
	r.listenForViewEvents()
	registerBuiltinInit(r.listenForViewEvents)

	return r
}

// listenForViewEvents subscribes the registry to the per-view event stream.
// Called at construction and replayed by ResetForTest.
func (r *PlatformViewRegistry) listenForViewEvents() {
	r.events.Listen(EventHandler{
		OnEvent: r.routeViewEvent,
	})
}

// routeViewEvent delivers a native event to the view identified by the
// payload's viewId field. Views that do not implement viewEventSink, and
// events for unknown views (e.g., already disposed), are dropped silently.
func (r *PlatformViewRegistry) routeViewEvent(data any) {
	defer errors.Recover("platform.routeViewEvent")

	payload := parseMap(data)
	if payload == nil {
		errors.Report(&errors.MotionError{
			Op:      "platform.routeViewEvent",
			Kind:    errors.KindParsing,
			Channel: r.events.Name(),
			Err:     &errors.ParseError{Channel: r.events.Name(), DataType: "view event map", Got: data},
		})
		return
	}

	viewID, ok := toInt64(payload["viewId"])
	if !ok {
		errors.Report(&errors.MotionError{
			Op:      "platform.routeViewEvent",
			Kind:    errors.KindParsing,
			Channel: r.events.Name(),
			Err:     &errors.ParseError{Channel: r.events.Name(), DataType: "viewId", Got: payload["viewId"]},
		})
		return
	}
	method := parseString(payload["method"])

	view := r.GetView(viewID)
	if view == nil {
		return
	}
	if sink, ok := view.(viewEventSink); ok {
		sink.OnViewEvent(method, payload)
	}
}

// RegisterFactory registers a factory for a platform view type.
func (r *PlatformViewRegistry) RegisterFactory(factory PlatformViewFactory) {
	r.mu.Lock()
	r.factories[factory.ViewType()] = factory
	r.mu.Unlock()
}

// Create creates a new platform view of the given type.
func (r *PlatformViewRegistry) Create(viewType string, params map[string]any) (PlatformView, error) {
	r.mu.RLock()
	factory, ok := r.factories[viewType]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrViewTypeNotFound
	}

	viewID := r.nextID.Add(1)

	view, err := factory.Create(viewID, params)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.views[viewID] = view
	r.mu.Unlock()

	// Notify native to create the view
	_, err = r.channel.Invoke("create", map[string]any{
		"viewId":   viewID,
		"viewType": viewType,
		"params":   params,
	})
	if err != nil {
		r.mu.Lock()
		delete(r.views, viewID)
		r.mu.Unlock()
		return nil, err
	}

	return view, nil
}

// Dispose destroys a platform view.
func (r *PlatformViewRegistry) Dispose(viewID int64) {
	r.mu.Lock()
	view, ok := r.views[viewID]
	if ok {
		delete(r.views, viewID)
	}
	r.mu.Unlock()

	if ok {
		view.Dispose()
		// Notify native to destroy the view
		r.channel.Invoke("dispose", map[string]any{
			"viewId": viewID,
		})
	}
}

// GetView returns a platform view by ID.
func (r *PlatformViewRegistry) GetView(viewID int64) PlatformView {
	r.mu.RLock()
	view := r.views[viewID]
	r.mu.RUnlock()
	return view
}

// UpdateViewGeometry notifies native of a view's position and size change.
func (r *PlatformViewRegistry) UpdateViewGeometry(viewID int64, frame Frame) error {
	_, err := r.channel.Invoke("setGeometry", map[string]any{
		"viewId": viewID,
		"x":      frame.X,
		"y":      frame.Y,
		"width":  frame.Width,
		"height": frame.Height,
	})
	return err
}

// SetViewVisible notifies native to show or hide a view.
func (r *PlatformViewRegistry) SetViewVisible(viewID int64, visible bool) error {
	_, err := r.channel.Invoke("setVisible", map[string]any{
		"viewId":  viewID,
		"visible": visible,
	})
	return err
}

// InvokeViewMethod invokes a method on a specific platform view.
func (r *PlatformViewRegistry) InvokeViewMethod(viewID int64, method string, args map[string]any) (any, error) {
	// Clone the args map to avoid mutating the caller's map
	size := 2
	if args != nil {
		size += len(args)
	}
	invokeArgs := make(map[string]any, size)
	for k, v := range args { // safe: range over nil map is no-op
		invokeArgs[k] = v
	}
	invokeArgs["viewId"] = viewID
	invokeArgs["method"] = method
	return r.channel.Invoke("invokeViewMethod", invokeArgs)
}

// handleMethodCall processes incoming method calls from native code.
func (r *PlatformViewRegistry) handleMethodCall(method string, args any) (any, error) {
	switch method {
	case "onViewCreated":
		// Native has finished creating the view
		return nil, nil

	case "onViewDisposed":
		// Native has finished disposing the view
		return nil, nil

	default:
		_ = args
		return nil, ErrMethodNotFound
	}
}

// basePlatformView provides common implementation for platform views.
type basePlatformView struct {
	viewID   int64
	viewType string
	frame    Frame
	visible  bool
}

func (v *basePlatformView) ViewID() int64 {
	return v.viewID
}

func (v *basePlatformView) ViewType() string {
	return v.viewType
}

func (v *basePlatformView) SetFrame(frame Frame) {
	v.frame = frame
	GetPlatformViewRegistry().UpdateViewGeometry(v.viewID, v.frame)
}

func (v *basePlatformView) SetVisible(visible bool) {
	v.visible = visible
	GetPlatformViewRegistry().SetViewVisible(v.viewID, visible)
}
