package playback

import "github.com/llehouerou/wavedeck/internal/mount"

const slotName = "playback"

// Default returns the process-wide coordinator, building it with build on
// first use. Later calls ignore build.
func Default(build func() (*Coordinator, error)) (*Coordinator, error) {
	return mount.Get(mount.Global(), slotName, build)
}
