package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errNotImage = errors.New("response is not an image")

// failureCaption is the text shown in place of an image that could not be loaded.
func failureCaption(img *Image) string {
	label := img.Alt
	if label == "" {
		label = path.Base(strings.SplitN(img.Src, "?", 2)[0])
	}
	if label == "" || label == "." || label == "/" {
		return "[image unavailable]"
	}
	return "[image unavailable: " + label + "]"
}

// loadImages fetches every pending image with bounded concurrency. Each
// goroutine owns one node, so results land at their original index.
func (p *Projector) loadImages(ctx context.Context, res *Result) {
	if p.images == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(p.opts.ImageConcurrency)
	for i := range res.Nodes {
		n := &res.Nodes[i]
		if n.Image == nil || n.Image.State != ImagePending {
			continue
		}
		g.Go(func() error {
			if err := p.loadImage(ctx, n.Image); err != nil {
				p.logger.Debug("image load failed", zap.String("url", n.Image.URL), zap.Error(err))
				n.Image.State = ImageFailed
				n.Text = failureCaption(n.Image)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, n := range res.Nodes {
		if n.Image == nil {
			continue
		}
		switch n.Image.State {
		case ImageLoaded:
			res.ImagesLoaded++
		case ImageFailed:
			res.ImagesFailed++
		}
	}
}

func (p *Projector) loadImage(ctx context.Context, img *Image) error {
	data, err := p.images.FetchImage(ctx, img.URL)
	if err != nil {
		return err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return fmt.Errorf("%w: %s", errNotImage, mt.String())
	}
	img.MIME = mt.String()

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		// SVG, WebP and friends: the bytes are an image, we just cannot draw it.
		img.State = ImageLoaded
		return nil
	}
	if err != nil {
		return fmt.Errorf("decoding %s: %w", img.MIME, err)
	}

	b := decoded.Bounds()
	img.Width, img.Height = b.Dx(), b.Dy()
	img.Thumbnail = thumbnail(decoded, p.opts.ThumbnailWidth)
	img.State = ImageLoaded
	return nil
}

// thumbnail scales src down to width pixels, keeping its aspect ratio.
// Images already narrower are returned as is.
func thumbnail(src image.Image, width int) image.Image {
	if width <= 0 {
		return nil
	}
	if src.Bounds().Dx() <= width {
		return src
	}
	return resize.Resize(uint(width), 0, src, resize.Bilinear)
}
