package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/profilevault/internal/storage"
)

// Compact rewrites the bundle to reclaim the space left behind by
// replaced enrollments.
func Compact(ctx context.Context, bundlePath string) {
	if err := ctx.Err(); err != nil {
		HandleError(err)
	}

	bundle, err := storage.Open(bundlePath)
	if err != nil {
		HandleError(err)
	}
	defer bundle.Close()

	initialized, err := bundle.IsInitialized()
	if err != nil {
		HandleError(err)
	}
	if !initialized {
		HandleError(fmt.Errorf("bundle %s is not initialized", bundlePath))
	}

	if err := bundle.Compact(); err != nil {
		HandleError(err)
	}

	fmt.Println("bundle compacted")
}
