package postcraft

import (
	"fmt"
	"time"
)

const placeholderImageBase = "https://picsum.photos/seed"

type imageKey struct {
	platform Platform
	postType PostType
}

// imageShapes lists the image-bearing post types and their fixed dimensions.
var imageShapes = map[imageKey]struct{ width, height int }{
	{LinkedIn, LinkedInImage}:  {1200, 628},
	{Instagram, InstagramPost}: {1080, 1080},
}

// DecideImage returns the placeholder image for (p, t), or nil for text-only post types.
// The seed is derived from now so consecutive generations do not share a cached image.
func DecideImage(p Platform, t PostType, now time.Time) *ImageSpec {
	shape, ok := imageShapes[imageKey{p, t}]
	if !ok {
		return nil
	}
	return &ImageSpec{
		URL:    fmt.Sprintf("%s/%d/%d/%d", placeholderImageBase, now.UnixMilli(), shape.width, shape.height),
		Width:  shape.width,
		Height: shape.height,
	}
}
