package turtle

import (
	"testing"

	"github.com/vango-dev/rcanvas/pkg/geom"
	"github.com/vango-dev/rcanvas/pkg/protocol"
)

func wire(ops []protocol.Op) string {
	cmds := make([]string, len(ops))
	for i, op := range ops {
		cmds[i] = protocol.MustEncode(op)
	}
	return protocol.JoinFrame(cmds)
}

func TestTurtleOps(t *testing.T) {
	canvas := geom.Size{Width: 200, Height: 200}

	tests := []struct {
		name  string
		build func(t *Turtle)
		want  string
	}{
		{
			name:  "empty",
			build: func(*Turtle) {},
			want:  "beginPath||moveTo|100|100||stroke",
		},
		{
			name: "square",
			build: func(t *Turtle) {
				for i := 0; i < 4; i++ {
					t.Forward(50)
					t.Right(90)
				}
			},
			want: "beginPath||moveTo|100|100||lineTo|100|50||lineTo|150|50||lineTo|150|100||lineTo|100|100||stroke",
		},
		{
			name: "push_pop",
			build: func(t *Turtle) {
				t.PenColor("red")
				t.PenWidth(3)
				t.Push()
				t.Forward(20)
				t.PenColor("blue")
				t.Pop()
				t.Right(90)
				t.PenUp()
				t.Forward(10)
				t.PenDown()
				t.Forward(10)
			},
			want: "beginPath||moveTo|100|100||stroke||strokeStyleSolidColor|red||beginPath||moveTo|100|100" +
				"||stroke||lineWidth|3||beginPath||moveTo|100|100" +
				"||lineTo|100|80" +
				"||stroke||strokeStyleSolidColor|blue||beginPath||moveTo|100|80" +
				"||moveTo|100|100" +
				"||stroke||strokeStyleSolidColor|red||beginPath||moveTo|100|100" +
				"||stroke||lineWidth|3||beginPath||moveTo|100|100" +
				"||moveTo|110|100||lineTo|120|100||stroke",
		},
		{
			name: "backward_left_home",
			build: func(t *Turtle) {
				t.Backward(30)
				t.Left(90)
				t.Forward(10)
				t.Home()
				t.Forward(5)
			},
			want: "beginPath||moveTo|100|100||lineTo|100|130||lineTo|90|130||lineTo|100|100||lineTo|100|95||stroke",
		},
		{
			name: "diagonal_rounds",
			build: func(t *Turtle) {
				t.Left(45)
				t.Forward(10)
			},
			want: "beginPath||moveTo|100|100||lineTo|93|93||stroke",
		},
		{
			name: "pop_without_push",
			build: func(t *Turtle) {
				t.Pop()
				t.Forward(10)
			},
			want: "beginPath||moveTo|100|100||lineTo|100|90||stroke",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := New(canvas)
			tc.build(tt)
			if got := wire(tt.Ops()); got != tc.want {
				t.Fatalf("wire:\n got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestTurtleOpsRepeatable(t *testing.T) {
	tt := New(geom.Size{Width: 100, Height: 100})
	tt.Forward(10)
	tt.Right(90)
	tt.Forward(10)

	first, second := wire(tt.Ops()), wire(tt.Ops())
	if first != second {
		t.Fatalf("Ops changed between calls:\n%s\n%s", first, second)
	}
	if tt.Len() != 3 {
		t.Fatalf("Len=%d, want 3", tt.Len())
	}
}
