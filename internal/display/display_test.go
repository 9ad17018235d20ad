package display

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/resistive_touch/internal/touch"
)

type frame struct {
	dc   gpio.Level
	data []byte
}

type recorder struct {
	dc     gpio.Level
	frames []frame
}

func (r *recorder) Out(l gpio.Level) error {
	r.dc = l
	return nil
}

func (r *recorder) Tx(w, _ []byte) error {
	r.frames = append(r.frames, frame{dc: r.dc, data: append([]byte(nil), w...)})
	return nil
}

// commands returns the command bytes sent, in order.
func (r *recorder) commands() []byte {
	var out []byte
	for _, f := range r.frames {
		if f.dc == gpio.Low {
			out = append(out, f.data...)
		}
	}
	return out
}

func (r *recorder) dataBytes() int {
	n := 0
	for _, f := range r.frames {
		if f.dc == gpio.High {
			n += len(f.data)
		}
	}
	return n
}

func newTestPanel() (*ST7789, *recorder) {
	rec := &recorder{}
	d := newST7789(rec, rec, nil, nil, 240, 320)
	d.sleep = func(time.Duration) {}
	return d, rec
}

func TestRGB565(t *testing.T) {
	assert.Equal(t, Red, RGB565(255, 0, 0))
	assert.Equal(t, Green, RGB565(0, 255, 0))
	assert.Equal(t, Blue, RGB565(0, 0, 255))
	assert.Equal(t, White, FromColor(color.White))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, colorOf(White))
	assert.Equal(t, Yellow, FromColor(colorOf(Yellow)))
}

func TestSetWindow(t *testing.T) {
	d, rec := newTestPanel()
	require.NoError(t, d.SetWindow(10, 300, 239, 319))

	require.Len(t, rec.frames, 5)
	assert.Equal(t, []byte{cmdCASET}, rec.frames[0].data)
	assert.Equal(t, []byte{0, 10, 0, 239}, rec.frames[1].data)
	assert.Equal(t, []byte{cmdRASET}, rec.frames[2].data)
	assert.Equal(t, []byte{0x01, 0x2C, 0x01, 0x3F}, rec.frames[3].data)
	assert.Equal(t, []byte{cmdRAMWR}, rec.frames[4].data)
}

func TestFillRect(t *testing.T) {
	t.Run("whole screen in chunks", func(t *testing.T) {
		d, rec := newTestPanel()
		require.NoError(t, d.FillScreen(Red))
		assert.Equal(t, 4+4+240*320*2, rec.dataBytes())
		last := rec.frames[len(rec.frames)-1]
		assert.LessOrEqual(t, len(last.data), maxChunk)
		assert.Equal(t, []byte{0xF8, 0x00}, last.data[:2])
	})

	t.Run("clipped at the edge", func(t *testing.T) {
		d, rec := newTestPanel()
		require.NoError(t, d.FillRect(-2, 318, 5, 5, Green))
		assert.Equal(t, []byte{0, 0, 0, 2}, rec.frames[1].data)
		assert.Equal(t, 4+4+3*2*2, rec.dataBytes())
	})

	t.Run("fully outside", func(t *testing.T) {
		d, rec := newTestPanel()
		require.NoError(t, d.FillRect(240, 0, 10, 10, Green))
		assert.Empty(t, rec.frames)
	})
}

func TestStreamPixels(t *testing.T) {
	d, rec := newTestPanel()
	px := make([]Color, maxChunk) // two chunks worth of bytes
	px[0] = 0x1234
	require.NoError(t, d.StreamPixels(px))
	require.Len(t, rec.frames, 2)
	assert.Equal(t, []byte{0x12, 0x34}, rec.frames[0].data[:2])
	assert.Equal(t, gpio.High, rec.frames[1].dc)
}

func TestRotation(t *testing.T) {
	d, rec := newTestPanel()
	require.NoError(t, d.SetRotation(1))
	assert.Equal(t, image.Rect(0, 0, 320, 240), d.Bounds())
	assert.Equal(t, byte(madctlMY|madctlMV), rec.frames[1].data[0])

	require.NoError(t, d.SetRotation(3))
	assert.Equal(t, image.Rect(0, 0, 320, 240), d.Bounds())
	require.NoError(t, d.SetRotation(0))
	assert.Equal(t, image.Rect(0, 0, 240, 320), d.Bounds())
}

func TestInitSequence(t *testing.T) {
	rst := &recorder{}
	rec := &recorder{}
	d := newST7789(rec, rec, rst, nil, 240, 320)
	var slept time.Duration
	d.sleep = func(x time.Duration) { slept += x }

	require.NoError(t, d.Init(0))
	assert.Equal(t, gpio.High, rst.dc)
	cmds := rec.commands()
	assert.Equal(t, []byte{cmdSWRESET, cmdSLPOUT, cmdCOLMOD}, cmds[:3])
	assert.Contains(t, string(cmds), string([]byte{cmdMADCTL, cmdINVOFF, cmdNORON, cmdDISPON}))
	assert.Equal(t, 355*time.Millisecond, slept)
}

func TestDrawImage(t *testing.T) {
	d, rec := newTestPanel()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})

	require.NoError(t, d.DrawImage(238, 318, img))
	px := rec.frames[len(rec.frames)-1].data
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x00, 0x1F}, px)
}

type fakeSurface struct {
	rects  []image.Rectangle
	colors []Color
	images int
}

func (f *fakeSurface) Bounds() image.Rectangle { return image.Rect(0, 0, 240, 320) }

func (f *fakeSurface) FillRect(x, y, w, h int, c Color) error {
	f.rects = append(f.rects, image.Rect(x, y, x+w, y+h))
	f.colors = append(f.colors, c)
	return nil
}

func (f *fakeSurface) DrawImage(int, int, image.Image) error {
	f.images++
	return nil
}

func TestSketch(t *testing.T) {
	s := &fakeSurface{}
	k, err := NewSketch(s, Yellow)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 240, 320), s.rects[0])

	require.NoError(t, k.Release())
	assert.Zero(t, s.images, "no banner before any touch")

	require.NoError(t, k.Touch(touch.Point{X: 100, Y: 200}))
	assert.Equal(t, image.Rect(98, 198, 103, 203), s.rects[1])
	assert.Equal(t, Yellow, s.colors[1])
	assert.Equal(t, 1, s.images)

	require.NoError(t, k.Release())
	require.NoError(t, k.Release())
	assert.Equal(t, 2, s.images, "one banner per lift")
}

func TestRenderText(t *testing.T) {
	img := RenderText("Released", color.White, color.Black)
	assert.Equal(t, image.Pt(56, 13), img.Bounds().Size())

	lit := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0xFF {
			lit++
		}
	}
	assert.Greater(t, lit, 20)
}

func TestRenderStatus(t *testing.T) {
	blank := RenderStatus()
	for _, b := range blank.Pix {
		require.Zero(t, b)
	}

	img := RenderStatus("tracking", "x=120 y=160", "ok=12 rej=1", "resets=0", "dropped")
	on := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 128; x++ {
			if img.BitAt(x, y) == image1bit.On {
				on++
			}
		}
	}
	assert.Greater(t, on, 50)
}
