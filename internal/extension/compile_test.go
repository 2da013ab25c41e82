package extension

import (
	"reflect"
	"testing"

	"github.com/just-cli/just/internal/errors"
)

func compile(t *testing.T, decl, template string) *Compiled {
	t.Helper()
	c, err := Compile(analyze(t, decl), template)
	if err != nil {
		t.Fatalf("Compile(%q): %v", decl, err)
	}
	return c
}

func paramNames(c *Compiled) []string {
	var names []string
	for _, p := range c.Parameters {
		names = append(names, p.Name)
	}
	return names
}

func TestCompile_RequiredBeforeDefaulted(t *testing.T) {
	c := compile(t, "just x A[a:str=1] B[b] --c C[c:int=2] --d D[d]", "x A B C D")
	if got := paramNames(c); !reflect.DeepEqual(got, []string{"b", "d", "a", "c"}) {
		t.Fatalf("order=%v", got)
	}
	d, _ := c.Param("d")
	if d.Kind != KindOption || d.Flag != "d" || !d.Required {
		t.Fatalf("unexpected param: %+v", d)
	}
	a, _ := c.Param("a")
	if a.Kind != KindPositional || a.Required || a.Default != "1" {
		t.Fatalf("unexpected param: %+v", a)
	}
}

func TestCompile_NameCollision(t *testing.T) {
	c := compile(t, "just cp SRC[path] DST[path] EXTRA[path]", "cp SRC DST EXTRA")
	if got := paramNames(c); !reflect.DeepEqual(got, []string{"path", "path_1", "path_2"}) {
		t.Fatalf("names=%v", got)
	}
	out, err := c.Render(Invocation{Values: map[string]any{"path": "a", "path_1": "b", "path_2": "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if out != "cp a b c" {
		t.Fatalf("render=%q", out)
	}
}

func TestCompile_AliasCollidesWithPositional(t *testing.T) {
	c := compile(t, "just say P[messages] --text[-m/--messages:str]", "say P --text")
	if got := paramNames(c); !reflect.DeepEqual(got, []string{"messages", "messages_1"}) {
		t.Fatalf("names=%v", got)
	}
	p, _ := c.Param("messages_1")
	if p.Flag != "messages" || p.Short != "m" {
		t.Fatalf("alias param lost its flags: %+v", p)
	}
}

func TestCompile_DuplicateShortFlag(t *testing.T) {
	_, err := Compile(analyze(t, "just x -o/--out -o/--other"), "x")
	if !errors.HasCode(err, errors.CodeDeclSyntax) {
		t.Fatalf("expected JUST_DECL_SYNTAX, got %v", err)
	}
}

func TestCompile_BoolDefaults(t *testing.T) {
	c := compile(t, "just ll -v[verbose:bool] --all [all:bool] P[flag:bool]", "ls -v P")
	v, _ := c.Param("verbose")
	if v.Default != true || v.Required {
		t.Fatalf("replace-style bool should default to true: %+v", v)
	}
	all, _ := c.Param("all")
	if all.Default != false || all.Required {
		t.Fatalf("append-style bool should default to false: %+v", all)
	}
	p, _ := c.Param("flag")
	if !p.Required {
		t.Fatalf("positional bool without default is required: %+v", p)
	}
}

func TestCompile_Plan(t *testing.T) {
	c := compile(t, "just ll -v[verbose:bool] -o/--output --all [all:bool] P[path] ARGS[...]", "ls -v P ARGS")
	want := []Substitution{
		{Op: OpReplace, Identifier: "P", Variable: "path"},
		{Op: OpReplaceIfTrue, Identifier: "-v", Variable: "verbose"},
		{Op: OpRemoveIfFalse, Identifier: "-v", Variable: "verbose"},
		{Op: OpAppendIfPresent, Identifier: "--output", Variable: "output"},
		{Op: OpAppendIfTrue, Identifier: "--all", Variable: "all"},
		{Op: OpReplaceVarargs, Identifier: "ARGS", Variable: "args"},
	}
	if !reflect.DeepEqual(c.Plan, want) {
		t.Fatalf("plan=%+v\nwant %+v", c.Plan, want)
	}
	if c.Varargs == nil || c.Varargs.Name != "args" || c.Varargs.Kind != KindVarargs {
		t.Fatalf("varargs=%+v", c.Varargs)
	}
	for _, p := range c.Parameters {
		if p.Kind == KindVarargs {
			t.Fatal("varargs must be excluded from parameters")
		}
	}
}

func TestCompile_Positionals(t *testing.T) {
	c := compile(t, "just x A[a=1] --o O[o] B[b]", "x A O B")
	var names []string
	for _, p := range c.Positionals() {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"b", "a"}) {
		t.Fatalf("positionals=%v", names)
	}
}

func TestCompiled_Normalize(t *testing.T) {
	c := &Compiled{Parameters: []Parameter{
		{Name: "i", Type: TypeInt, Default: 3},
		{Name: "f", Type: TypeFloat, Default: 2},
		{Name: "j", Type: TypeInt, Default: float64(4)},
		{Name: "s", Type: TypeStr, Default: "x"},
		{Name: "r", Type: TypeStr},
	}}
	c.Normalize()
	want := []any{int64(3), float64(2), int64(4), "x", nil}
	for i, p := range c.Parameters {
		if p.Default != want[i] {
			t.Errorf("%s default=%#v want %#v", p.Name, p.Default, want[i])
		}
	}
}
