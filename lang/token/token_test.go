package token

import (
	"fmt"
	"testing"
)

func TestMakePos(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{1, 10},
		{42, 7},
		{MaxLines, MaxCols},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d:%d", c.line, c.col), func(t *testing.T) {
			p := MakePos(c.line, c.col)
			gotLine, gotCol := p.LineCol()
			if gotLine != c.line || gotCol != c.col {
				t.Errorf("want %d:%d, got %d:%d", c.line, c.col, gotLine, gotCol)
			}
		})
	}
}

func TestPosUnknown(t *testing.T) {
	cases := []struct {
		name string
		pos  Pos
		want bool
	}{
		{"zero value", Pos(0), true},
		{"zero line", MakePos(0, 1), true},
		{"zero col", MakePos(1, 0), true},
		{"known", MakePos(1, 1), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.pos.Unknown(); got != c.want {
				t.Errorf("want %t, got %t", c.want, got)
			}
		})
	}
}

func TestFilePosition(t *testing.T) {
	f := NewFile("test.jq")
	pos := MakePos(3, 5)
	got := f.Position(pos)
	want := Position{Filename: "test.jq", Line: 3, Col: 5}
	if got != want {
		t.Errorf("want %+v, got %+v", want, got)
	}
	if got.String() != "test.jq:3:5" {
		t.Errorf("unexpected String(): %s", got.String())
	}
}

func TestPositionUnknown(t *testing.T) {
	f := NewFile("test.jq")
	got := f.Position(Pos(0))
	if got.IsValid() {
		t.Errorf("expected unknown position to be invalid")
	}
	if got.String() != "test.jq" {
		t.Errorf("unexpected String() for unknown position: %s", got.String())
	}
}
