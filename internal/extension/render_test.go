package extension

import (
	"testing"

	"github.com/just-cli/just/internal/errors"
)

func TestRender_PositionalDefaults(t *testing.T) {
	c := compile(t, `just echo MSG[msg:str="Hello World"#Message] N[n:int]`, "echo MSG x N")
	out, err := c.Render(Invocation{Values: map[string]any{"n": int64(3)}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "echo Hello World x 3" {
		t.Fatalf("render=%q", out)
	}
}

func TestRender_ReplaceStyleBool(t *testing.T) {
	c := compile(t, "just ll -v[verbose:bool#help]", "ls -v /tmp")

	out, err := c.Render(Invocation{Values: map[string]any{"verbose": true}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ls -v /tmp" {
		t.Fatalf("verbose=true render=%q", out)
	}

	out, err = c.Render(Invocation{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ls -v /tmp" {
		t.Fatalf("default render=%q", out)
	}

	out, err = c.Render(Invocation{Values: map[string]any{"verbose": false}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "ls  /tmp" {
		t.Fatalf("verbose=false render=%q", out)
	}
}

func TestRender_SelfReferentialRequired(t *testing.T) {
	c := compile(t, "just build -o/--output", "go build")
	out, err := c.Render(Invocation{Values: map[string]any{"output": "bin/app"}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "go build --output bin/app" {
		t.Fatalf("render=%q", out)
	}

	_, err = c.Render(Invocation{})
	if !errors.HasCode(err, errors.CodeCfgInvalid) {
		t.Fatalf("expected missing parameter error, got %v", err)
	}
}

func TestRender_AppendIfPresent(t *testing.T) {
	c := compile(t, "just build --tags [tags:str=dev]", "go build ")

	out, err := c.Render(Invocation{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "go build " {
		t.Fatalf("unset render=%q", out)
	}

	out, err = c.Render(Invocation{Values: map[string]any{"tags": "prod linux"}, Set: map[string]bool{"tags": true}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "go build --tags 'prod linux'" {
		t.Fatalf("set render=%q", out)
	}
}

func TestRender_AppendIfTrue(t *testing.T) {
	c := compile(t, "just test --race [race:bool#enable race detector]", "go test ./...")
	out, err := c.Render(Invocation{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "go test ./..." {
		t.Fatalf("default render=%q", out)
	}
	out, err = c.Render(Invocation{Values: map[string]any{"race": true}, Set: map[string]bool{"race": true}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "go test ./... --race" {
		t.Fatalf("race render=%q", out)
	}
}

func TestRender_OptionAlias(t *testing.T) {
	c := compile(t, `just say --text[-m/--messages:str="Hi"#h]`, "echo --text")
	out, err := c.Render(Invocation{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "echo Hi" {
		t.Fatalf("default render=%q", out)
	}
	out, err = c.Render(Invocation{Values: map[string]any{"messages": "Bye"}, Set: map[string]bool{"messages": true}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "echo Bye" {
		t.Fatalf("render=%q", out)
	}
}

func TestRender_Varargs(t *testing.T) {
	c := compile(t, "just py ARGS[...#rest]", "python main.py ARGS")
	out, err := c.Render(Invocation{Rest: []string{"a", "b c", "--d"}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "python main.py a b c --d" {
		t.Fatalf("render=%q", out)
	}

	out, err = c.Render(Invocation{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "python main.py " {
		t.Fatalf("empty rest render=%q", out)
	}
}

func TestRender_VarargsWithoutPlaceholderAppends(t *testing.T) {
	c := compile(t, "just g [...]", "git")
	out, err := c.Render(Invocation{Rest: []string{"log", "-1"}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "git log -1" {
		t.Fatalf("render=%q", out)
	}
}

func TestRender_TypedValues(t *testing.T) {
	c := compile(t, "just x F[f:float=1.5] B[b:bool=true]", "x F B")
	out, err := c.Render(Invocation{})
	if err != nil {
		t.Fatal(err)
	}
	if out != "x 1.5 true" {
		t.Fatalf("render=%q", out)
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		typ  ValueType
		in   string
		want any
		err  bool
	}{
		{TypeInt, "42", int64(42), false},
		{TypeInt, "x", nil, true},
		{TypeFloat, "2.5", 2.5, false},
		{TypeFloat, "y", nil, true},
		{TypeBool, "true", true, false},
		{TypeBool, "yes", true, false},
		{TypeBool, "nope", false, false},
		{TypeStr, "s", "s", false},
	}
	for _, tc := range cases {
		got, err := ParseValue(tc.typ, tc.in)
		if (err != nil) != tc.err {
			t.Errorf("ParseValue(%s,%q) err=%v", tc.typ, tc.in, err)
			continue
		}
		if !tc.err && got != tc.want {
			t.Errorf("ParseValue(%s,%q)=%#v want %#v", tc.typ, tc.in, got, tc.want)
		}
	}
}
