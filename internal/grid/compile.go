package grid

// Shape is a set of cells addressed with 1-indexed, inclusive coordinates.
type Shape interface {
	Cells() []Position
}

// WallShape is a shape that may be painted as wall: Rect, HLine or VLine.
type WallShape interface {
	Shape
	wall()
}

// OpeningShape is a shape that may be carved to floor: Point, HLine or VLine.
type OpeningShape interface {
	Shape
	opening()
}

// Rect is a filled rectangle with its top-left corner at (Top, Left).
type Rect struct {
	Top, Left, Height, Width int
}

func (r Rect) Cells() []Position {
	var cells []Position
	for row := r.Top; row < r.Top+r.Height; row++ {
		for col := r.Left; col < r.Left+r.Width; col++ {
			cells = append(cells, Pos(row, col))
		}
	}
	return cells
}

func (Rect) wall() {}

// HLine covers Row from ColStart to ColEnd inclusive.
type HLine struct {
	Row, ColStart, ColEnd int
}

func (l HLine) Cells() []Position {
	var cells []Position
	for col := l.ColStart; col <= l.ColEnd; col++ {
		cells = append(cells, Pos(l.Row, col))
	}
	return cells
}

func (HLine) wall()    {}
func (HLine) opening() {}

// VLine covers Col from RowStart to RowEnd inclusive.
type VLine struct {
	Col, RowStart, RowEnd int
}

func (l VLine) Cells() []Position {
	var cells []Position
	for row := l.RowStart; row <= l.RowEnd; row++ {
		cells = append(cells, Pos(row, l.Col))
	}
	return cells
}

func (VLine) wall()    {}
func (VLine) opening() {}

// Point is a single cell.
type Point struct {
	Pos Position
}

func (p Point) Cells() []Position { return []Position{p.Pos} }

func (Point) opening() {}

// Spec describes a grid to compile.
type Spec struct {
	Rows, Cols int
	Walls      []WallShape
	Openings   []OpeningShape
	Exit       *Position
}

// Compile builds the grid described by spec. Layers are applied in a fixed
// order: floor, border walls, walls, openings, exit. Cells of a shape that
// fall outside the grid are skipped.
func Compile(spec Spec) (*Grid, error) {
	if spec.Rows < 1 || spec.Cols < 1 {
		return nil, ErrBadDimensions
	}

	g := newFilled(spec.Rows, spec.Cols, Floor)
	for col := 1; col <= g.cols; col++ {
		g.set(Pos(1, col), Wall)
		g.set(Pos(g.rows, col), Wall)
	}
	for row := 1; row <= g.rows; row++ {
		g.set(Pos(row, 1), Wall)
		g.set(Pos(row, g.cols), Wall)
	}

	for _, w := range spec.Walls {
		for _, p := range w.Cells() {
			g.set(p, Wall)
		}
	}
	for _, o := range spec.Openings {
		for _, p := range o.Cells() {
			g.set(p, Floor)
		}
	}
	if spec.Exit != nil {
		g.set(*spec.Exit, Exit)
	}
	return g, nil
}
