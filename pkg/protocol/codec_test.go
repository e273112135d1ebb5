package protocol

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/rcanvas/pkg/geom"
)

func TestOperationRoundTrip(t *testing.T) {
	stops := []ColorStop{{Position: 0, Color: "red"}, {Position: 0.5, Color: "#00ff00"}, {Position: 1, Color: "rgba(0,0,255,0.5)"}}

	tests := []struct {
		name string
		op   Op
	}{
		{"beginPath", BeginPath{}},
		{"closePath", ClosePath{}},
		{"moveTo", MoveTo{To: geom.Pt(10, 20)}},
		{"lineTo_negative", LineTo{To: geom.Pt(-5, -7)}},
		{"arc", Arc{Center: geom.Pt(50, 60), Radius: 25, StartAngle: 0, EndAngle: 3.141592653589793, AntiClockwise: true}},
		{"arcTo", ArcTo{Control1: geom.Pt(1, 2), Control2: geom.Pt(3, 4), Radius: 5}},
		{"quadraticCurveTo", QuadraticCurveTo{Control: geom.Pt(1, 2), End: geom.Pt(3, 4)}},
		{"bezierCurveTo", BezierCurveTo{Control1: geom.Pt(1, 2), Control2: geom.Pt(3, 4), End: geom.Pt(5, 6)}},
		{"ellipse", Ellipse{Center: geom.Pt(100, 100), RadiusX: 40, RadiusY: 20, Rotation: 0.25, StartAngle: 0, EndAngle: 6.28, AntiClockwise: false}},
		{"rect", Rect{Rect: geom.NewRect(1, 2, 3, 4)}},
		{"fill", Fill{}},
		{"stroke", Stroke{}},
		{"clip", Clip{Rule: EvenOdd}},

		{"fillRect", FillRect{Rect: geom.NewRect(0, 0, 640, 480)}},
		{"strokeRect", StrokeRect{Rect: geom.NewRect(10, 10, 20, 20)}},
		{"clearRect", ClearRect{Rect: geom.NewRect(0, 0, 1, 1)}},
		{"fillText", FillText{Text: "Hello, world", At: geom.Pt(5, 15)}},
		{"fillText_empty", FillText{Text: "", At: geom.Pt(0, 0)}},
		{"createImage_empty_url", CreateImage{ID: "img", URL: ""}},
		{"textMetric_empty", TextMetric{ID: "tm", Text: ""}},
		{"strokeText", StrokeText{Text: "outline", At: geom.Pt(0, 0)}},

		{"fillStyleSolidColor", FillStyleColor{Color: "rgb(10, 20, 30)"}},
		{"strokeStyleSolidColor", StrokeStyleColor{Color: "#abcdef"}},
		{"fillStyleGradient", FillStyleGradient{GradientID: "g1"}},
		{"strokeStyleGradient", StrokeStyleGradient{GradientID: "g2"}},
		{"fillStylePattern", FillStylePattern{PatternID: "p1"}},
		{"lineWidth", LineWidth{Width: 3}},
		{"globalAlpha", GlobalAlpha{Alpha: 0.75}},
		{"cursorStyle", CursorStyle{Cursor: CursorCrosshair}},
		{"font", Font{Font: "bold 16px sans-serif"}},
		{"textAlign", TextAlign{Align: AlignCenter}},
		{"textBaseline", TextBaseline{Baseline: BaselineMiddle}},
		{"save", Save{}},
		{"restore", Restore{}},

		{"setTransform", SetTransform{Matrix: geom.Identity()}},
		{"transform", Transform{Matrix: geom.Matrix{1.5, 0.1, -0.2, 2, 30, -40}}},

		{"createImage", CreateImage{ID: "img", URL: "images/ball.png"}},
		{"drawImage_point", DrawImage{ID: "img", Mode: DrawAtPoint, At: geom.Pt(10, 20)}},
		{"drawImage_rect", DrawImage{ID: "img", Mode: DrawInRect, Dest: geom.NewRect(1, 2, 30, 40)}},
		{"drawImage_source", DrawImage{ID: "img", Mode: DrawSourceInRect, Source: geom.NewRect(0, 0, 8, 8), Dest: geom.NewRect(10, 10, 80, 80)}},
		{"createAudio", CreateAudio{ID: "snd", URL: "audio/beep.mp3", Loop: true}},
		{"setAudioMode", SetAudioMode{ID: "snd", Mode: AudioPause}},
		{"createLinearGradient", CreateLinearGradient{ID: "lg", Start: geom.Pt(0, 0), End: geom.Pt(100, 0), Stops: stops}},
		{"createRadialGradient", CreateRadialGradient{ID: "rg", Center1: geom.Pt(50, 50), Radius1: 0, Center2: geom.Pt(50, 50), Radius2: 49.5, Stops: stops[:1]}},
		{"createPattern", CreatePattern{ID: "pat", ImageID: "img", Repetition: RepeatedX}},
		{"createTextMetric", CreateTextMetric{ID: "tm"}},
		{"textMetric", TextMetric{ID: "tm", Text: "measure me"}},

		{"canvasSetSize", CanvasSetSize{Size: geom.Size{Width: 800, Height: 600}}},
		{"displayStatistics", DisplayStatistics{Enabled: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wire := MustEncode(tc.op)
			if strings.Contains(wire, CommandSeparator) {
				t.Fatalf("encoded %q contains command separator", wire)
			}
			if got := SplitCommand(wire).Name(); got != tc.op.OpName() {
				t.Fatalf("name=%q, want %q", got, tc.op.OpName())
			}

			got, err := ParseString(wire)
			if err != nil {
				t.Fatalf("ParseString(%q) error: %v", wire, err)
			}
			if !reflect.DeepEqual(got, tc.op) {
				t.Errorf("round trip mismatch\nwire: %s\ngot:  %#v\nwant: %#v", wire, got, tc.op)
			}
		})
	}
}

func TestEncodeExactWire(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{MoveTo{To: geom.Pt(10, 20)}, "moveTo|10|20"},
		{Arc{Center: geom.Pt(1, 2), Radius: 3, StartAngle: 0, EndAngle: 1.5, AntiClockwise: false}, "arc|1|2|3|0|1.5|false"},
		{FillRect{Rect: geom.NewRect(1, 2, 3, 4)}, "fillRect|1|2|3|4"},
		{DrawImage{ID: "a", Mode: DrawAtPoint, At: geom.Pt(5, 6)}, "drawImage|a|5|6"},
		{DrawImage{ID: "a", Mode: DrawInRect, Dest: geom.NewRect(1, 2, 3, 4)}, "drawImage|a|1|2|3|4"},
		{DrawImage{ID: "a", Mode: DrawSourceInRect, Source: geom.NewRect(1, 2, 3, 4), Dest: geom.NewRect(5, 6, 7, 8)}, "drawImage|a|1|2|3|4|5|6|7|8"},
		{CreateLinearGradient{ID: "g", Start: geom.Pt(0, 0), End: geom.Pt(10, 0), Stops: []ColorStop{{0, "red"}, {1, "blue"}}}, "createLinearGradient|g|0|0|10|0|2|0|red|1|blue"},
		{CreateRadialGradient{ID: "r", Center1: geom.Pt(1, 1), Radius1: 0.5, Center2: geom.Pt(2, 2), Radius2: 4}, "createRadialGradient|r|1|1|0.5|2|2|4|0"},
		{CreateAudio{ID: "s", URL: "a.mp3", Loop: false}, "createAudio|s|a.mp3|false"},
		{SetAudioMode{ID: "s", Mode: AudioPlay}, "setAudioMode|s|play"},
		{CreatePattern{ID: "p", ImageID: "i"}, "createPattern|p|i|repeated"},
		{Clip{}, "clip|nonzero"},
		{SetTransform{Matrix: geom.Identity()}, "setTransform|1|0|0|1|0|0"},
		{CanvasSetSize{Size: geom.Size{Width: 640, Height: 480}}, "canvasSetSize|640|480"},
		{CursorStyle{Cursor: CursorPointer}, "cursorStyle|pointer"},
		{GlobalAlpha{Alpha: 0.5}, "globalAlpha|0.5"},
		{LineWidth{Width: 2}, "lineWidth|2"},
		{DisplayStatistics{Enabled: false}, "displayStatistics|false"},
	}

	for _, tc := range tests {
		if got := MustEncode(tc.op); got != tc.want {
			t.Errorf("Encode(%#v)=%q, want %q", tc.op, got, tc.want)
		}
	}
}

func TestEncodeSanitizesSeparators(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		want string
	}{
		{"text_not_final", FillText{Text: "a|b", At: geom.Pt(1, 2)}, "fillText|a¦b|1|2"},
		{"final_single_interior", Font{Font: "a|b"}, "font|a|b"},
		{"final_double", Font{Font: "a||b"}, "font|a¦¦b"},
		{"final_leading", Font{Font: "|x"}, "font|¦x"},
		{"final_trailing", TextMetric{ID: "t", Text: "x|"}, "textMetric|t|x¦"},
		{"audio_url_not_final", CreateAudio{ID: "s", URL: "a|b", Loop: true}, "createAudio|s|a¦b|true"},
		{"empty_final", Font{Font: ""}, "font| "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MustEncode(tc.op)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
			frame := JoinFrame([]string{got, got})
			if n := len(SplitFrame(frame)); n != 2 {
				t.Fatalf("frame %q split into %d commands, want 2", frame, n)
			}
		})
	}
}

func TestEncodeRejectsInvalidDrawMode(t *testing.T) {
	_, err := Encode(DrawImage{ID: "a", Mode: ImageMode(42)})
	if !errors.Is(err, ErrUnsupportedOp) {
		t.Fatalf("err=%v, want ErrUnsupportedOp", err)
	}
}

func TestMustEncodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustEncode did not panic")
		}
	}()
	MustEncode(DrawImage{ID: "a", Mode: ImageMode(9)})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Command
		want error
	}{
		{"empty", Command{}, ErrEmptyCommand},
		{"unknown", Command{"teleport", "1"}, ErrUnknownOperation},
		{"too_few", Command{"moveTo", "1"}, ErrArgumentCount},
		{"too_many", Command{"lineWidth", "1", "2"}, ErrArgumentCount},
		{"bad_int", Command{"moveTo", "x", "2"}, ErrInvalidArgument},
		{"bad_bool", Command{"createAudio", "s", "u", "maybe"}, ErrInvalidArgument},
		{"draw_image_shape", Command{"drawImage", "a", "1", "2", "3"}, ErrArgumentCount},
		{"stop_count_mismatch", Command{"createLinearGradient", "g", "0", "0", "1", "1", "2", "0", "red"}, ErrArgumentCount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
			var de *DecodeError
			if tc.want != ErrEmptyCommand && !errors.As(err, &de) {
				t.Fatalf("err=%T, want *DecodeError", err)
			}
		})
	}
}

func TestParseTruncatesFloatingPointIntegers(t *testing.T) {
	op, err := Parse(Command{"moveTo", "10.9", "-3.2"})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := op.(MoveTo).To; got != geom.Pt(10, -3) {
		t.Fatalf("To=%+v, want (10,-3)", got)
	}
}

func TestJoinFrame(t *testing.T) {
	frame := JoinFrame([]string{"beginPath", "moveTo|10|20", "lineTo|30|40", "stroke"})
	want := "beginPath||moveTo|10|20||lineTo|30|40||stroke"
	if frame != want {
		t.Fatalf("frame=%q, want %q", frame, want)
	}
}
