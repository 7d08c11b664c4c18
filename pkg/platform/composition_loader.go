package platform

import (
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/motion"
)

const compositionChannelName = "motion/compositions"

var (
	compositionChannel     *MethodChannel
	compositionChannelOnce sync.Once
)

func compositionService() *MethodChannel {
	compositionChannelOnce.Do(func() {
		compositionChannel = NewMethodChannel(compositionChannelName)
	})
	return compositionChannel
}

// LoadComposition asks the native engine to decode a motion file from disk
// and returns an opaque reference to it. The engine owns the decoded content;
// the returned composition stays valid until the engine evicts it.
func LoadComposition(path string) (*motion.Composition, error) {
	if path == "" {
		return nil, fmt.Errorf("load composition: %w: empty path", ErrInvalidArguments)
	}
	result, err := compositionService().Invoke("loadPath", map[string]any{
		"path": path,
	})
	if err != nil {
		return nil, fmt.Errorf("load composition %q: %w", path, err)
	}
	return compositionFromPayload(result)
}

// LoadCompositionData decodes in-memory motion content. The bytes are handed
// to the engine base64-encoded; the engine keeps its own copy.
func LoadCompositionData(data []byte) (*motion.Composition, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("load composition data: %w: empty data", ErrInvalidArguments)
	}
	result, err := compositionService().Invoke("loadData", map[string]any{
		"data": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, fmt.Errorf("load composition data: %w", err)
	}
	return compositionFromPayload(result)
}

// compositionFromPayload converts a load response into a composition.
// Expected shape: {compositionId, durationUs, width, height, frameRate}.
func compositionFromPayload(result any) (*motion.Composition, error) {
	payload := parseMap(result)
	if payload == nil {
		return nil, &errors.ParseError{Channel: compositionChannelName, DataType: "composition map", Got: result}
	}
	id, ok := toInt64(payload["compositionId"])
	if !ok || id == 0 {
		return nil, &errors.ParseError{Channel: compositionChannelName, DataType: "compositionId", Got: payload["compositionId"]}
	}
	durationUs, _ := toInt64(payload["durationUs"])
	width, _ := toInt(payload["width"])
	height, _ := toInt(payload["height"])
	frameRate, _ := toFloat64(payload["frameRate"])

	comp := motion.NewComposition(
		id,
		time.Duration(durationUs)*time.Microsecond,
		width,
		height,
		frameRate,
	)
	return comp, nil
}
