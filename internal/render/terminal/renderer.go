package terminal

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/awmpietro/quantum-dilemma/internal/particles"
	"github.com/awmpietro/quantum-dilemma/internal/timeline"
)

const (
	endpointBanner = "Timeline endpoint reached. This universe has reached its conclusion."
	separator      = "│"
)

type Option func(*Renderer)

// WithWidth fixes the drawing width instead of asking the terminal.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithColor enables 24-bit ANSI colors taken from each timeline's color.
func WithColor(enabled bool) Option {
	return func(r *Renderer) { r.color = enabled }
}

// WithStripRows sets the height of the particle strip; zero hides it.
func WithStripRows(rows int) Option {
	return func(r *Renderer) {
		if rows >= 0 {
			r.stripRows = rows
		}
	}
}

// Renderer turns a snapshot into text. It never mutates the snapshot or
// calls back into an engine.
type Renderer struct {
	width     int
	color     bool
	stripRows int
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{stripRows: 3}
	for _, opt := range opts {
		opt(r)
	}
	if r.width == 0 {
		r.width = Width()
	}
	return r
}

// ResetOffered reports whether the reset action is shown for n timelines.
func ResetOffered(n int) bool { return n > 1 }

func (r *Renderer) Width() int { return r.width }

// Render draws the header, the particle strip when field is not nil, and
// one panel per timeline in display order.
func (r *Renderer) Render(w io.Writer, s timeline.Snapshot, field *particles.Field) error {
	bw := bufio.NewWriter(w)

	header := fmt.Sprintf("Active Timelines: %d", len(s.Timelines))
	if ResetOffered(len(s.Timelines)) {
		header += "   [r] Reset Reality"
	}
	fmt.Fprintln(bw, r.style(header, bold))

	if field != nil && r.stripRows > 0 {
		for _, row := range r.strip(field) {
			fmt.Fprintln(bw, r.style(row, dim))
		}
	}

	widths := r.panelWidths(len(s.Timelines))
	panels := make([][]string, len(s.Timelines))
	height := 0
	for i, v := range s.Timelines {
		inner := widths[i]
		if i < len(widths)-1 {
			inner--
		}
		panels[i] = r.panel(i, v, inner)
		height = max(height, len(panels[i]))
	}

	for row := 0; row < height; row++ {
		var line strings.Builder
		for i, v := range s.Timelines {
			inner := widths[i]
			last := i == len(widths)-1
			if !last {
				inner--
			}
			cell := ""
			if row < len(panels[i]) {
				cell = panels[i][row]
			}
			cell = pad(cell, inner)
			if row == 0 {
				cell = r.paint(cell, v.Color)
			}
			line.WriteString(cell)
			if !last {
				line.WriteString(r.paint(separator, v.Color))
			}
		}
		fmt.Fprintln(bw, strings.TrimRight(line.String(), " "))
	}

	fmt.Fprintln(bw, r.style(r.help(len(s.Timelines)), dim))
	return bw.Flush()
}

func (r *Renderer) panelWidths(n int) []int {
	total := r.width
	if total < n*minPanel {
		total = n * minPanel
	}
	return Layout(n, total)
}

// panel returns the unpadded lines of one timeline panel.
func (r *Renderer) panel(index int, v timeline.View, width int) []string {
	lines := []string{fmt.Sprintf("UNIVERSE %s • DEPTH %d", timeline.Label(index), v.Depth)}
	for _, h := range v.History {
		lines = append(lines, wrap("→ "+h, width)...)
	}
	lines = append(lines, strings.Repeat("─", width), "")

	lines = append(lines, wrap(v.Dilemma.Question, width)...)
	lines = append(lines, wrap(v.Dilemma.Context, width)...)
	lines = append(lines, "")

	for i, c := range v.Dilemma.Choices {
		marker := fmt.Sprintf("[%d] ", i+1)
		text := c.Text + " →"
		if !c.HasNext {
			marker = "[ ] "
			text = c.Text
		}
		lines = append(lines, wrap(marker+text, width)...)
		for _, l := range wrap(c.Consequence, width-4) {
			lines = append(lines, "    "+l)
		}
	}

	if v.Endpoint {
		lines = append(lines, "")
		lines = append(lines, wrap(endpointBanner, width)...)
	}
	return lines
}

// strip draws the particle field squeezed into the renderer width.
func (r *Renderer) strip(field *particles.Field) []string {
	fw, fh := field.Size()
	rows := make([][]rune, r.stripRows)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(" ", r.width))
	}
	if fw <= 0 || fh <= 0 || r.width <= 0 {
		return toStrings(rows)
	}

	cell := func(x, y float64) (int, int) {
		col := min(int(x/fw*float64(r.width)), r.width-1)
		row := min(int(y/fh*float64(r.stripRows)), r.stripRows-1)
		return max(col, 0), max(row, 0)
	}

	ps := field.Particles()
	for _, l := range field.Links(particles.DefaultLinkDistance) {
		if l.Opacity < 0.15 {
			continue
		}
		a, b := ps[l.From], ps[l.To]
		col, row := cell((a.X+b.X)/2, (a.Y+b.Y)/2)
		rows[row][col] = '·'
	}
	for _, p := range ps {
		col, row := cell(p.X, p.Y)
		rows[row][col] = '*'
	}
	return toStrings(rows)
}

func (r *Renderer) help(n int) string {
	last := timeline.Label(max(n-1, 0))
	msg := fmt.Sprintf("choose: <panel A-%s><1|2>  q quit", last)
	if ResetOffered(n) {
		msg = fmt.Sprintf("choose: <panel A-%s><1|2>  r reset  q quit", last)
	}
	if runewidth.StringWidth(msg) > r.width {
		msg = runewidth.Truncate(msg, r.width, "…")
	}
	return msg
}

func (r *Renderer) style(s string, fn func(string) string) string {
	if !r.color {
		return s
	}
	return fn(s)
}

func (r *Renderer) paint(s, hex string) string {
	if !r.color {
		return s
	}
	return paint(s, hex)
}

func toStrings(rows [][]rune) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = strings.TrimRight(string(row), " ")
	}
	return out
}
