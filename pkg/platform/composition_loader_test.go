package platform

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestLoadComposition(t *testing.T) {
	bridge := setupTestBridge(t)
	bridge.respond = func(channel, method string, args any) (any, error) {
		if channel != "motion/compositions" {
			t.Errorf("channel: got %q, want motion/compositions", channel)
		}
		if method != "loadPath" {
			t.Errorf("method: got %q, want loadPath", method)
		}
		return map[string]any{
			"compositionId": 7,
			"durationUs":    2_500_000,
			"width":         640,
			"height":        360,
			"frameRate":     24.0,
		}, nil
	}

	comp, err := LoadComposition("assets/intro.motion")
	if err != nil {
		t.Fatalf("LoadComposition: %v", err)
	}
	if comp.Handle() != 7 {
		t.Errorf("handle: got %d, want 7", comp.Handle())
	}
	if comp.Duration() != 2500*time.Millisecond {
		t.Errorf("duration: got %v, want 2.5s", comp.Duration())
	}
	if comp.Width() != 640 || comp.Height() != 360 {
		t.Errorf("size: got %dx%d, want 640x360", comp.Width(), comp.Height())
	}
	if comp.FrameRate() != 24.0 {
		t.Errorf("frame rate: got %v, want 24", comp.FrameRate())
	}

	calls := bridge.callsFor("loadPath")
	if len(calls) != 1 {
		t.Fatalf("loadPath calls: got %d, want 1", len(calls))
	}
	if path := calls[0].args.(map[string]any)["path"]; path != "assets/intro.motion" {
		t.Errorf("path: got %v, want assets/intro.motion", path)
	}
}

func TestLoadCompositionEmptyPath(t *testing.T) {
	setupTestBridge(t)

	if _, err := LoadComposition(""); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestLoadCompositionData(t *testing.T) {
	content := []byte{0x4d, 0x4f, 0x54, 0x4e, 0x01}
	bridge := setupTestBridge(t)
	bridge.respond = func(channel, method string, args any) (any, error) {
		if method != "loadData" {
			t.Errorf("method: got %q, want loadData", method)
		}
		return map[string]any{"compositionId": 11}, nil
	}

	comp, err := LoadCompositionData(content)
	if err != nil {
		t.Fatalf("LoadCompositionData: %v", err)
	}
	if comp.Handle() != 11 {
		t.Errorf("handle: got %d, want 11", comp.Handle())
	}

	calls := bridge.callsFor("loadData")
	if len(calls) != 1 {
		t.Fatalf("loadData calls: got %d, want 1", len(calls))
	}
	sent := parseString(calls[0].args.(map[string]any)["data"])
	decoded, err := base64.StdEncoding.DecodeString(sent)
	if err != nil {
		t.Fatalf("decode sent data: %v", err)
	}
	if string(decoded) != string(content) {
		t.Errorf("sent data: got %v, want %v", decoded, content)
	}
}

func TestLoadCompositionDataEmpty(t *testing.T) {
	setupTestBridge(t)

	if _, err := LoadCompositionData(nil); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestLoadCompositionMalformedResponse(t *testing.T) {
	bridge := setupTestBridge(t)
	bridge.respond = func(channel, method string, args any) (any, error) {
		// Missing compositionId.
		return map[string]any{"durationUs": 1000}, nil
	}

	if _, err := LoadComposition("broken.motion"); err == nil {
		t.Error("expected parse error for response without compositionId")
	}
}

func TestLoadCompositionBridgeUnavailable(t *testing.T) {
	SetupTestBridge(t.Cleanup)
	SetNativeBridge(nil)

	if _, err := LoadComposition("x.motion"); !errors.Is(err, ErrPlatformUnavailable) {
		t.Errorf("expected ErrPlatformUnavailable, got %v", err)
	}
}
