package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/vecmath"
)

// Viewport maps a world-space rectangle onto a canvas with a uniform scale,
// so shapes are not stretched. World Y points up, canvas Y points down.
type Viewport struct {
	MinX, MinY, MaxX, MaxY float64
}

// FitViewport returns a viewport covering every point plus a margin, given
// as a fraction of the larger extent.
func FitViewport(points []vecmath.Vec2, margin float64) Viewport {
	if len(points) == 0 {
		return Viewport{-1, -1, 1, 1}
	}
	v := Viewport{points[0].X, points[0].Y, points[0].X, points[0].Y}
	for _, p := range points[1:] {
		v.Include(p)
	}
	span := math.Max(v.MaxX-v.MinX, v.MaxY-v.MinY)
	if span == 0 {
		span = 1
	}
	pad := span * margin
	v.MinX -= pad
	v.MinY -= pad
	v.MaxX += pad
	v.MaxY += pad
	return v
}

// Include grows the viewport to contain p.
func (v *Viewport) Include(p vecmath.Vec2) {
	v.MinX = math.Min(v.MinX, p.X)
	v.MinY = math.Min(v.MinY, p.Y)
	v.MaxX = math.Max(v.MaxX, p.X)
	v.MaxY = math.Max(v.MaxY, p.Y)
}

// Project converts world coordinates to canvas sub-pixels. The content is
// centred on whichever axis has room to spare.
func (v Viewport) Project(p vecmath.Vec2, c *Canvas) (int, int) {
	pw, ph := float64(c.PixelWidth()-1), float64(c.PixelHeight()-1)
	w, h := v.MaxX-v.MinX, v.MaxY-v.MinY
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	scale := math.Min(pw/w, ph/h)
	offX := (pw - w*scale) / 2
	offY := (ph - h*scale) / 2
	x := offX + (p.X-v.MinX)*scale
	y := offY + (v.MaxY-p.Y)*scale
	return int(math.Round(x)), int(math.Round(y))
}

// Camera is an orthographic view of the unit sphere. Yaw turns about the
// world Y axis, Pitch tilts about X.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Pitch: 0.4, Zoom: 1}
}

func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = mgl64.Clamp(c.Pitch+dPitch, -math.Pi/2, math.Pi/2)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(4, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.25, c.Zoom/1.2) }

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Project returns the canvas sub-pixel for p and its depth toward the
// viewer. Positive depth is the visible hemisphere.
func (c *Camera) Project(p mgl64.Vec3, cv *Canvas) (x, y int, depth float64) {
	r := c.rotation().Mul3x1(p)
	pw, ph := float64(cv.PixelWidth()), float64(cv.PixelHeight())
	radius := 0.45 * math.Min(pw, ph) * c.Zoom
	x = int(math.Round(pw/2 + r.X()*radius))
	y = int(math.Round(ph/2 - r.Y()*radius))
	return x, y, r.Z()
}

// DrawOutline traces the silhouette of the unit sphere.
func (c *Camera) DrawOutline(cv *Canvas, segments int) {
	pw, ph := float64(cv.PixelWidth()), float64(cv.PixelHeight())
	radius := 0.45 * math.Min(pw, ph) * c.Zoom
	px, py := -1, -1
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		x := int(math.Round(pw/2 + math.Cos(a)*radius))
		y := int(math.Round(ph/2 - math.Sin(a)*radius))
		if i > 0 {
			cv.DrawLine(px, py, x, y)
		}
		px, py = x, y
	}
}
