package graph

// DefaultPalette is the 16 colour graph palette of the desktop client.
var DefaultPalette = []string{
	"#3584e4", // blue
	"#2ec27e", // green
	"#f5c211", // yellow
	"#e01b24", // red
	"#9141ac", // purple
	"#ff7800", // orange
	"#00b8d4", // cyan
	"#e91e63", // pink
	"#4fc3f7", // light blue
	"#81c784", // light green
	"#ffb74d", // light orange
	"#f06292", // light pink
	"#ba68c8", // light purple
	"#4db6ac", // teal
	"#aed581", // lime
	"#90a4ae", // blue grey
}

// ColorAssigner hands out palette indices to new lanes in cyclic order.
// A freed colour is not handed out again before the counter wraps, so
// lanes created close together always differ.
type ColorAssigner struct {
	size       int
	next       int
	inUse      []int
	collisions int
}

// NewColorAssigner returns an assigner over a palette of size colours.
func NewColorAssigner(size int) *ColorAssigner {
	if size < 1 {
		size = 1
	}
	return &ColorAssigner{size: size, inUse: make([]int, size)}
}

// Acquire returns the colour for a newly created lane.
func (a *ColorAssigner) Acquire() int {
	color := a.next % a.size
	a.next++
	if a.inUse[color] > 0 {
		a.collisions++
	}
	a.inUse[color]++
	return color
}

// Release marks a lane's colour as no longer held.
func (a *ColorAssigner) Release(color int) {
	if color >= 0 && color < a.size && a.inUse[color] > 0 {
		a.inUse[color]--
	}
}

// Collisions counts colours handed out while another live lane held them.
func (a *ColorAssigner) Collisions() int {
	return a.collisions
}
