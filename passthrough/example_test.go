// SPDX-License-Identifier: EPL-2.0

package passthrough_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ik5/audpass/audio"
	"github.com/ik5/audpass/device"
	"github.com/ik5/audpass/internal/audiotest"
	"github.com/ik5/audpass/passthrough"
)

func ExampleSupervisor() {
	backend := audiotest.NewBackend()
	backend.SetEndpoints(device.RoleCapture, device.Endpoint{
		Name:   "Microphone (USB)",
		Active: true,
		Format: audio.VariantPCM16.Format(44100, 1),
	})
	backend.SetEndpoints(device.RoleRender, device.Endpoint{
		Name:   "Speakers",
		Active: true,
		Format: audio.VariantFloat32.Format(48000, 2),
	})

	cfg := passthrough.DefaultConfig()
	cfg.Status = os.Stdout
	sup := passthrough.NewSupervisor(backend, "USB", "Speakers", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- sup.Run(ctx) }()

	for sup.Session() == nil {
		time.Sleep(time.Millisecond)
	}
	cancel()
	fmt.Println(<-done, sup.State())
	// Output:
	// Recording from Microphone (USB) (44100/16) to Speakers (48000/32)
	// <nil> exited
}
