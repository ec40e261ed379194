package render_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/layout"
	"github.com/pkordes/dayplanner/internal/render"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func timeline() []domain.TimelineEntry {
	park := domain.Stop{Name: "Park", Time: "09:00", Description: "Off-leash area · bring water"}
	cafe := domain.Stop{Name: "Café Olé", Time: "11:00"}
	return []domain.TimelineEntry{
		{Kind: domain.EntryStop, Stop: &park, After: 0},
		{Kind: domain.EntryLeg, Leg: &domain.Leg{Transport: "walking", TravelTime: "20 minutes"}, After: 0},
		{Kind: domain.EntryStop, Stop: &cafe, After: 1},
	}
}

func TestDecodeSnapshot_PNG(t *testing.T) {
	snap, err := render.DecodeSnapshot(pngBytes(t, 64, 32))

	require.NoError(t, err)
	assert.Equal(t, "PNG", snap.Format)
	assert.Equal(t, 64, snap.Width)
	assert.Equal(t, 32, snap.Height)
}

func TestDecodeSnapshot_RejectsNonImage(t *testing.T) {
	_, err := render.DecodeSnapshot([]byte("<svg></svg>"))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPDFRenderer_Render(t *testing.T) {
	snap, err := render.DecodeSnapshot(pngBytes(t, 40, 20))
	require.NoError(t, err)
	engine := layout.NewEngine(layout.DefaultStyle(), nil)
	instrs := engine.LayoutDocument(layout.Header{Title: "Saturday", ImageWidth: snap.Width, ImageHeight: snap.Height},
		timeline(), layout.A4Height, 36)

	var buf bytes.Buffer
	err = render.NewPDFRenderer(layout.A4Width, layout.A4Height).Render(&buf,
		render.Document{Title: "Saturday", Instructions: instrs, Snapshot: &snap})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.True(t, bytes.Contains(buf.Bytes(), utf16be("Saturday")), "metadata title")
}

func TestPDFRenderer_Render_DefaultTitle(t *testing.T) {
	r := render.NewPDFRenderer(layout.A4Width, layout.A4Height).WithTitle("Itinerary")

	var untitled, titled bytes.Buffer
	require.NoError(t, r.Render(&untitled, render.Document{}))
	require.NoError(t, r.Render(&titled, render.Document{Title: "Austin"}))

	assert.True(t, bytes.Contains(untitled.Bytes(), utf16be("Itinerary")))
	assert.True(t, bytes.Contains(titled.Bytes(), utf16be("Austin")))
	assert.False(t, bytes.Contains(titled.Bytes(), utf16be("Itinerary")))
}

// utf16be encodes an ASCII string the way PDF text strings store Unicode
// metadata.
func utf16be(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, 0, s[i])
	}
	return out
}

func TestPDFRenderer_Render_EmptyStillProducesAPage(t *testing.T) {
	var buf bytes.Buffer

	err := render.NewPDFRenderer(layout.A4Width, layout.A4Height).Render(&buf, render.Document{})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFRenderer_Render_ImageWithoutSnapshot(t *testing.T) {
	instrs := []layout.Instruction{
		{Kind: layout.KindPage},
		{Kind: layout.KindImage, X: 10, Y: 10, Payload: layout.Payload{Width: 100, Height: 100}},
	}

	err := render.NewPDFRenderer(layout.A4Width, layout.A4Height).Render(&bytes.Buffer{}, render.Document{Instructions: instrs})

	assert.Error(t, err)
}
