package motion_test

import (
	"fmt"
	"log"

	"github.com/go-drift/motion/pkg/motion"
	"github.com/go-drift/motion/pkg/platform"
)

// This example shows the basic lifecycle of an animation view.
func ExampleView() {
	view := motion.NewView(platform.NewMotionPlayer)

	// Declared properties can be set before the native controller exists;
	// Attach replays them into the controller in one pass.
	comp, err := platform.LoadComposition("assets/intro.motion")
	if err != nil {
		log.Fatal(err)
	}
	view.SetComposition(comp)
	view.SetRepeatCount(0) // loop forever

	if err := view.Attach(); err != nil {
		log.Fatal(err)
	}
	defer view.Detach()

	view.SetPlaying(true)
}

// This example shows how to observe playback lifecycle and progress.
func ExampleView_listener() {
	view := motion.NewView(platform.NewMotionPlayer)

	// The view holds listeners weakly: keep a strong reference for as long
	// as notifications should keep arriving.
	listener := &motion.ViewListener{
		OnStart: func() { fmt.Println("playback started") },
		OnEnd:   func() { fmt.Println("playback finished") },
		OnUpdate: func(progress float64) {
			fmt.Printf("progress %.0f%%\n", progress*100)
		},
	}
	view.AddListener(listener)

	if err := view.Attach(); err != nil {
		log.Fatal(err)
	}
	view.SetPlaying(true)

	// ... later ...
	view.RemoveListener(listener)
	view.Detach()
}

// This example shows rendering a single fixed frame without playing.
func ExampleView_scrubbing() {
	view := motion.NewView(platform.NewMotionPlayer)

	comp, err := platform.LoadComposition("assets/chart.motion")
	if err != nil {
		log.Fatal(err)
	}
	view.SetComposition(comp)
	view.SetProgress(0.5) // halfway frame

	// Attaching a paused view pushes the declared state and flushes once,
	// so the chosen frame appears without starting playback.
	if err := view.Attach(); err != nil {
		log.Fatal(err)
	}
	defer view.Detach()
}

// This example shows hit-testing the composition under a tap.
func ExampleView_hitTest() {
	view := motion.NewView(platform.NewMotionPlayer)
	if err := view.Attach(); err != nil {
		log.Fatal(err)
	}
	defer view.Detach()

	for _, layer := range view.LayersAt(120, 80) {
		fmt.Printf("%s (%s)\n", layer.Name, layer.Type)
	}
}
