// Command demctl resolves bounding boxes and downloads DEM rasters from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// version is overridden at build time via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
