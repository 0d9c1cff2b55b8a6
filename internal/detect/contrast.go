package detect

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ContrastDetector finds content regions with Sobel edge detection and
// morphology. It is a CPU-only heuristic: no model download, always
// available, and deliberately over-eager (a false region only shrinks
// the area removal may touch).
type ContrastDetector struct {
	MinBlockArea  int     // Minimum area in pixels²
	EdgeThreshold float64 // Gradient magnitude threshold
	Confidence    float64 // Confidence assigned to heuristic detections
	MaxDetectSide int     // Pages larger than this are downscaled first

	ProtectedLabels map[string]bool
}

// NewContrastDetector creates a detector with default settings.
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:    500,  // ~22x22 pixels minimum
		EdgeThreshold:   30.0, // Moderate sensitivity
		Confidence:      0.7,
		MaxDetectSide:   1600,
		ProtectedLabels: CopyLabels(nil),
	}
}

// IsAvailable always reports true: the heuristic needs no model.
func (d *ContrastDetector) IsAvailable() bool { return true }

// Detect finds protected regions. Large pages are downscaled before edge
// detection and the boxes scaled back into page space.
func (d *ContrastDetector) Detect(img image.Image) ([]ProtectedRegion, error) {
	work, scale := d.downscale(img)

	gray := toGrayscale(work)
	edges := sobelEdges(gray, d.EdgeThreshold)
	dilated := dilateGray(edges, 5, 2)
	boxes := findComponents(dilated)

	regions := []ProtectedRegion{}
	for _, rect := range boxes {
		if rect.Dx()*rect.Dy() < d.MinBlockArea {
			continue
		}
		full := scaleRect(rect, scale)
		label := classifyBlock(full)
		if !d.ProtectedLabels[label] {
			continue
		}
		regions = append(regions, ProtectedRegion{
			Bbox:       full,
			Label:      label,
			Confidence: d.Confidence,
		})
	}
	return regions, nil
}

// downscale shrinks the image so its longest side fits MaxDetectSide.
// Returns the working image and the factor mapping work space back to
// page space (1.0 when no scaling happened).
func (d *ContrastDetector) downscale(img image.Image) (image.Image, float64) {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() > side {
		side = b.Dy()
	}
	if d.MaxDetectSide <= 0 || side <= d.MaxDetectSide {
		return img, 1.0
	}
	scale := float64(side) / float64(d.MaxDetectSide)
	dw := int(float64(b.Dx()) / scale)
	dh := int(float64(b.Dy()) / scale)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, scale
}

func scaleRect(r image.Rectangle, scale float64) image.Rectangle {
	if scale == 1.0 {
		return r
	}
	return image.Rect(
		int(float64(r.Min.X)*scale),
		int(float64(r.Min.Y)*scale),
		int(math.Ceil(float64(r.Max.X)*scale)),
		int(math.Ceil(float64(r.Max.Y)*scale)),
	)
}

// classifyBlock assigns a coarse label from the box shape. Wide shallow
// blocks read as text lines, everything else as a figure-like block;
// both are protected by default.
func classifyBlock(r image.Rectangle) string {
	w, h := r.Dx(), r.Dy()
	if h == 0 {
		return "plain_text"
	}
	aspect := float64(w) / float64(h)
	if aspect >= 2.5 {
		return "plain_text"
	}
	return "figure_caption"
}

// toGrayscale converts an image to grayscale.
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// sobelEdges applies the Sobel operator and thresholds the gradient
// magnitude into a binary edge map.
func sobelEdges(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	gx := [3][3]int{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	gy := [3][3]int{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(gx[ky+1][kx+1])
					sumY += pixel * float64(gy[ky+1][kx+1])
				}
			}
			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return edges
}

// dilateGray grows white areas to connect nearby edges into blocks.
func dilateGray(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	copy(result.Pix, img.Pix)

	half := kernelSize / 2
	for iter := 0; iter < iterations; iter++ {
		temp := image.NewGray(bounds)
		for y := bounds.Min.Y + half; y < bounds.Max.Y-half; y++ {
			for x := bounds.Min.X + half; x < bounds.Max.X-half; x++ {
				maxVal := uint8(0)
				for ky := -half; ky <= half; ky++ {
					for kx := -half; kx <= half; kx++ {
						if v := result.GrayAt(x+kx, y+ky).Y; v > maxVal {
							maxVal = v
						}
					}
				}
				temp.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}
		result = temp
	}
	return result
}

// findComponents returns the bounding rectangles of connected white
// regions, found by iterative flood fill.
func findComponents(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([][]bool, bounds.Dy())
	for i := range visited {
		visited[i] = make([]bool, bounds.Dx())
	}

	boxes := []image.Rectangle{}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 128 && !visited[y-bounds.Min.Y][x-bounds.Min.X] {
				boxes = append(boxes, floodFill(img, visited, x, y))
			}
		}
	}
	return boxes
}

func floodFill(img *image.Gray, visited [][]bool, startX, startY int) image.Rectangle {
	bounds := img.Bounds()
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y
		if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		if visited[y-bounds.Min.Y][x-bounds.Min.X] || img.GrayAt(x, y).Y <= 128 {
			continue
		}
		visited[y-bounds.Min.Y][x-bounds.Min.X] = true

		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}

		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
