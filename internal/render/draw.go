package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats"
)

// Options controls the size and footer of the rendered image
type Options struct {
	Width   int
	Height  int
	Caption string // drawn under the panels when non-empty
}

// matplotlib's default cycle, so the plot reads like the notebooks it replaces
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
}

const captionHeight = 18

// Render draws both panels stacked vertically and encodes the result as PNG
func (f *Figure) Render(w io.Writer, opts Options) error {
	img, err := f.Image(opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Image draws both panels into a single RGBA image
func (f *Figure) Image(opts Options) (*image.RGBA, error) {
	footer := 0
	if opts.Caption != "" {
		footer = captionHeight
	}
	panelHeight := (opts.Height - footer) / 2
	if opts.Width <= 0 || panelHeight <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for row, p := range []Panel{f.Sync, f.Data} {
		img, err := renderPanel(p, opts.Width, panelHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to render %q panel: %w", p.Title, err)
		}
		dst := image.Rect(0, row*panelHeight, opts.Width, (row+1)*panelHeight)
		draw.Draw(canvas, dst, img, img.Bounds().Min, draw.Src)
	}

	if footer > 0 {
		drawCaption(canvas, opts.Caption)
	}
	return canvas, nil
}

func renderPanel(p Panel, width, height int) (image.Image, error) {
	series := make([]chart.Series, 0, len(p.Lines)+2*len(p.Stems))
	legend := make([]chart.Series, 0, len(p.Lines)+len(p.Stems))

	for k, line := range p.Lines {
		s := chart.ContinuousSeries{
			Name:    line.Name,
			XValues: line.X,
			YValues: line.Y,
			Style: chart.Style{
				StrokeColor: palette[k%len(palette)],
				StrokeWidth: 1,
			},
		}
		series = append(series, s)
		legend = append(legend, s)
	}

	for k, st := range p.Stems {
		col := palette[k%len(palette)]
		xs, ys := stemPath(st)
		stem := chart.ContinuousSeries{
			Name:    st.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col.WithAlpha(160),
				StrokeWidth: 1,
			},
		}
		markers := chart.ContinuousSeries{
			Name:    st.Name,
			XValues: st.X,
			YValues: st.Y,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    col,
				DotWidth:    3,
			},
		}
		series = append(series, stem, markers)
		legend = append(legend, stem)
	}

	xr, yr := ranges(p)
	ch := chart.Chart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 8}},
		XAxis: chart.XAxis{
			Name:           p.XLabel,
			Range:          xr,
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: yr,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&chart.Chart{Series: legend})}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// stemPath flattens the stems into one polyline that walks the zero baseline
// and rises to each marker, so a single series draws baseline and stems.
func stemPath(st Stems) ([]float64, []float64) {
	xs := make([]float64, 0, 3*len(st.X))
	ys := make([]float64, 0, 3*len(st.X))
	for k := range st.X {
		xs = append(xs, st.X[k], st.X[k], st.X[k])
		ys = append(ys, 0, st.Y[k], 0)
	}
	return xs, ys
}

// ranges returns explicit axis ranges covering every line and stem, plus the
// zero baseline when stems are present. Degenerate spans are widened so the
// chart never sees an empty range.
func ranges(p Panel) (*chart.ContinuousRange, *chart.ContinuousRange) {
	var xs, ys []float64
	for _, l := range p.Lines {
		xs = append(xs, l.X...)
		ys = append(ys, l.Y...)
	}
	for _, s := range p.Stems {
		xs = append(xs, s.X...)
		ys = append(ys, s.Y...)
		ys = append(ys, 0)
	}
	if len(xs) == 0 || len(ys) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}, &chart.ContinuousRange{Min: -1, Max: 1}
	}

	xMin, xMax := floats.Min(xs), floats.Max(xs)
	if xMax <= xMin {
		xMax = xMin + 1
	}

	yMin, yMax := floats.Min(ys), floats.Max(ys)
	pad := 0.05 * (yMax - yMin)
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: xMin, Max: xMax},
		&chart.ContinuousRange{Min: yMin - pad, Max: yMax + pad}
}

func drawCaption(img *image.RGBA, text string) {
	b := img.Bounds()
	face := basicfont.Face7x13
	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 80, G: 80, B: 80, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(b.Min.X + 8), Y: fixed.I(b.Max.Y - 5)},
	}
	dr.DrawString(text)
}
