// Package segment splits a document into independent text blocks so that
// multi-column layouts and side-by-side fields are matched separately.
package segment

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Default margins of the whitespace splitter.
const (
	DefaultMarginColumns = 2
	DefaultMarginRows    = 1
)

// ErrInvalidMargin is returned for margins smaller than one.
var ErrInvalidMargin = errors.New("margin must be at least 1")

// Block is a rectangular piece of a document. Line and Column locate its
// top-left corner in the original text.
type Block struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// Splitter divides a document into blocks.
type Splitter interface {
	Split(text string) []Block
}

// Single returns the whole document as one block. Use it to disable
// splitting.
type Single struct{}

// Split implements Splitter.
func (Single) Split(text string) []Block {
	return []Block{{Text: text}}
}

// WhitespaceSplitter separates text regions that are divided by enough
// whitespace. Two characters belong to the same block when they are
// connected through characters that are closer than MarginColumns
// horizontally and MarginRows vertically.
type WhitespaceSplitter struct {
	MarginColumns int
	MarginRows    int
}

// NewWhitespaceSplitter validates the margins and returns a splitter.
func NewWhitespaceSplitter(cols, rows int) (*WhitespaceSplitter, error) {
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("%w: columns=%d rows=%d", ErrInvalidMargin, cols, rows)
	}
	return &WhitespaceSplitter{MarginColumns: cols, MarginRows: rows}, nil
}

// Split implements Splitter. Blocks are returned in the raster order of
// their first character, which is not necessarily reading order.
func (s *WhitespaceSplitter) Split(text string) []Block {
	g := newGrid(text)
	if g.empty() {
		return nil
	}

	mask := g.foreground()
	cols, rows := max(s.MarginColumns, 1), max(s.MarginRows, 1)
	if cols != 1 || rows != 1 {
		mask = dilate(mask, g.width, g.height, cols, rows)
	}

	labels, n := label(mask, g.width, g.height)
	return g.blocks(labels, n)
}

// grid is the document as a rectangle of runes padded with spaces.
type grid struct {
	cells         [][]rune
	width, height int
}

func newGrid(text string) *grid {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	g := &grid{cells: make([][]rune, len(lines)), height: len(lines)}
	for i, line := range lines {
		g.cells[i] = []rune(line)
		g.width = max(g.width, len(g.cells[i]))
	}
	for i, row := range g.cells {
		for len(row) < g.width {
			row = append(row, ' ')
		}
		g.cells[i] = row
	}
	return g
}

func (g *grid) empty() bool {
	for _, row := range g.cells {
		for _, r := range row {
			if !unicode.IsSpace(r) {
				return false
			}
		}
	}
	return true
}

func (g *grid) foreground() []bool {
	mask := make([]bool, g.width*g.height)
	for y, row := range g.cells {
		for x, r := range row {
			mask[y*g.width+x] = !unicode.IsSpace(r)
		}
	}
	return mask
}

// dilate grows every set cell by cols-1 cells to the right and rows-1 cells
// downwards.
func dilate(mask []bool, width, height, cols, rows int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y*width+x] {
				continue
			}
			for dy := 0; dy < rows && y+dy < height; dy++ {
				for dx := 0; dx < cols && x+dx < width; dx++ {
					out[(y+dy)*width+x+dx] = true
				}
			}
		}
	}
	return out
}

// label assigns connected components of mask (8-connectivity) the labels
// 1..n in raster order of their first cell. Unset cells get label 0.
func label(mask []bool, width, height int) ([]int, int) {
	labels := make([]int, len(mask))
	n := 0
	stack := make([]int, 0, 64)

	for start := range mask {
		if !mask[start] || labels[start] != 0 {
			continue
		}
		n++
		labels[start] = n
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			y, x := idx/width, idx%width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= height || nx < 0 || nx >= width {
						continue
					}
					nidx := ny*width + nx
					if mask[nidx] && labels[nidx] == 0 {
						labels[nidx] = n
						stack = append(stack, nidx)
					}
				}
			}
		}
	}
	return labels, n
}

// blocks cuts the bounding box of every label out of the grid. Characters
// of other labels inside the box are blanked.
func (g *grid) blocks(labels []int, n int) []Block {
	type box struct{ minX, minY, maxX, maxY int }
	boxes := make([]box, n+1)
	for i := range boxes {
		boxes[i] = box{minX: g.width, minY: g.height, maxX: -1, maxY: -1}
	}
	for idx, l := range labels {
		if l == 0 {
			continue
		}
		y, x := idx/g.width, idx%g.width
		b := &boxes[l]
		b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
		b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
	}

	out := make([]Block, 0, n)
	for l := 1; l <= n; l++ {
		b := boxes[l]
		rows := make([]string, 0, b.maxY-b.minY+1)
		blank := true
		for y := b.minY; y <= b.maxY; y++ {
			row := make([]rune, 0, b.maxX-b.minX+1)
			for x := b.minX; x <= b.maxX; x++ {
				r := g.cells[y][x]
				if labels[y*g.width+x] != l || unicode.IsSpace(r) {
					r = ' '
				} else {
					blank = false
				}
				row = append(row, r)
			}
			rows = append(rows, string(row))
		}
		if blank {
			continue
		}
		out = append(out, Block{Line: b.minY, Column: b.minX, Text: strings.Join(rows, "\n")})
	}
	return out
}
