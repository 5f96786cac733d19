//go:build ffmpeg_embedded

package ffmpeg

import (
	"embed"
	"io/fs"
)

//go:embed assets
var bundledAssets embed.FS

func init() {
	sub, err := fs.Sub(bundledAssets, "assets")
	if err == nil {
		bundle = sub
	}
}
