package geometry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolygon(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Polygon4
		wantOK bool
	}{
		{
			name:   "eight tokens",
			raw:    "10,20,30,20,30,40,10,40",
			want:   Polygon4{X1: 10, Y1: 20, X2: 30, Y2: 20, X3: 30, Y3: 40, X4: 10, Y4: 40},
			wantOK: true,
		},
		{
			name:   "whitespace around tokens",
			raw:    " 1.5, 2 ,3,4, 5,6,7 ,8 ",
			want:   Polygon4{X1: 1.5, Y1: 2, X2: 3, Y2: 4, X3: 5, Y3: 6, X4: 7, Y4: 8},
			wantOK: true,
		},
		{
			name:   "extra tokens ignored",
			raw:    "1,2,3,4,5,6,7,8,9,10",
			want:   Polygon4{X1: 1, Y1: 2, X2: 3, Y2: 4, X3: 5, Y3: 6, X4: 7, Y4: 8},
			wantOK: true,
		},
		{
			name:   "junk after the eighth token ignored",
			raw:    "1,2,3,4,5,6,7,8,abc",
			want:   Polygon4{X1: 1, Y1: 2, X2: 3, Y2: 4, X3: 5, Y3: 6, X4: 7, Y4: 8},
			wantOK: true,
		},
		{name: "too few tokens", raw: "1,2,3"},
		{name: "empty", raw: ""},
		{name: "blank", raw: "   "},
		{name: "non numeric token", raw: "1,2,3,x,5,6,7,8"},
		{name: "empty token", raw: "1,2,,4,5,6,7,8"},
		{name: "infinity", raw: "1,2,3,Inf,5,6,7,8"},
		{name: "nan", raw: "1,2,3,NaN,5,6,7,8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePolygon(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabelAnchor(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon4
		want Anchor
	}{
		{
			name: "mid range height",
			poly: Polygon4{X1: 10, Y1: 20, X2: 30, Y2: 20, X3: 30, Y3: 40, X4: 10, Y4: 40},
			want: Anchor{X: 12, Y: 35, FontSize: 14},
		},
		{
			name: "small box clamps to minimum",
			poly: FromRect(0, 0, 10, 5),
			want: Anchor{X: 2, Y: 3.75, FontSize: MinFontSize},
		},
		{
			name: "tall box clamps to maximum",
			poly: FromRect(0, 0, 10, 100),
			want: Anchor{X: 2, Y: 75, FontSize: MaxFontSize},
		},
		{
			name: "uses leftmost and topmost points",
			poly: Polygon4{X1: 15, Y1: 12, X2: 40, Y2: 10, X3: 40, Y3: 32, X4: 11, Y4: 34},
			want: Anchor{X: 13, Y: 10 + 20*0.75, FontSize: 14},
		},
		{
			name: "inverted polygon uses absolute height",
			poly: Polygon4{X1: 0, Y1: 40, X2: 10, Y2: 40, X3: 10, Y3: 20, X4: 0, Y4: 20},
			want: Anchor{X: 2, Y: 55, FontSize: 14},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.poly.LabelAnchor()
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.FontSize, got.FontSize, 1e-9)
		})
	}
}

func TestShapePointsReuseX1(t *testing.T) {
	p := Polygon4{X1: 1, Y1: 2, X2: 3, Y2: 4, X3: 5, Y3: 6, X4: 7, Y4: 8}
	pts := p.ShapePoints()

	assert.Equal(t, [4]Point{{1, 2}, {3, 4}, {5, 6}, {1, 8}}, pts)
	assert.Equal(t, "1,2 3,4 5,6 1,8", p.ShapePointsAttr())
}

func TestFromRect(t *testing.T) {
	p := FromRect(10, 20, 30, 40)
	assert.Equal(t, Polygon4{X1: 10, Y1: 20, X2: 30, Y2: 20, X3: 30, Y3: 40, X4: 10, Y4: 40}, p)

	r := p.Bounds()
	assert.Equal(t, Rect{Left: 10, Top: 20, Right: 30, Bottom: 40}, r)
	assert.Equal(t, 20.0, r.Width())
	assert.Equal(t, 20.0, r.Height())
}

func TestBoundsSkewed(t *testing.T) {
	p := Polygon4{X1: 5, Y1: 3, X2: 20, Y2: 1, X3: 22, Y3: 12, X4: 4, Y4: 14}
	assert.Equal(t, Rect{Left: 4, Top: 1, Right: 22, Bottom: 14}, p.Bounds())
}

func TestExtentString(t *testing.T) {
	p := Polygon4{X1: 10.04, Y1: 20.25, X2: 30, Y2: 20.96, X3: 30, Y3: 40, X4: 10, Y4: 40}
	assert.Equal(t, "10,20.3 to 30,21", p.ExtentString())
}

func TestFormatCoord(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{12.34, "12.3"},
		{12.36, "12.4"},
		{-3.06, "-3.1"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCoord(tt.in))
		})
	}
}

func TestFormatFixed1(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{14, "14.0"},
		{8.04, "8.0"},
		{12.36, "12.4"},
		{-0.04, "0.0"},
		{-3.06, "-3.1"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFixed1(tt.in))
		})
	}
}

func TestParsePolygonRoundTrip(t *testing.T) {
	p := Polygon4{X1: 1.5, Y1: 2.5, X2: 10, Y2: 2.5, X3: 10, Y3: 9, X4: 1.5, Y4: 9}
	raw := fmt.Sprintf("%g,%g,%g,%g,%g,%g,%g,%g", p.X1, p.Y1, p.X2, p.Y2, p.X3, p.Y3, p.X4, p.Y4)

	got, ok := ParsePolygon(raw)
	require.True(t, ok)
	assert.Equal(t, p, got)
}
