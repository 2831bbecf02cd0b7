package render

import (
	"image"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: fb.Flatten(col, topY),
					Bg: fb.Flatten(col, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// Display is a terminal screen that can flush its buffered cells.
type Display interface {
	uv.Screen
	Display() error
}

// TerminalRenderer presents a framebuffer on a terminal display.
type TerminalRenderer struct {
	display Display
	cols    int
	rows    int
}

// NewTerminalRenderer creates a renderer for a cols x rows terminal.
func NewTerminalRenderer(display Display, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{display: display, cols: cols, rows: rows}
}

// Resize updates the terminal size in cells.
func (t *TerminalRenderer) Resize(cols, rows int) {
	t.cols, t.rows = cols, rows
}

// FramebufferSize returns the pixel size matching the terminal: one column
// per pixel, two pixel rows per cell.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Render draws fb onto the display buffer.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.display, image.Rect(0, 0, t.cols, t.rows))
}

// Flush pushes the display buffer to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.display.Display()
}
