package syntax

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Unit {
	t.Helper()
	unit, err := NewParser().Parse(context.Background(), "test.js", []byte(src))
	require.NoError(t, err)
	return unit
}

func find(unit *Unit, nodeType string) Node {
	var found Node
	Inspect(unit.Root(), func(n Node) bool {
		if found.IsNil() && n.Type() == nodeType {
			found = n
		}
		return found.IsNil()
	})
	return found
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), "broken.js", []byte("for (let i = 0; i <"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		src  string
		want float64
		ok   bool
	}{
		{"x = 0;", 0, true},
		{"x = 1;", 1, true},
		{"x = 0.0;", 0, true},
		{"x = 0x1;", 1, true},
		{"x = 1n;", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			unit := parse(t, tt.src)
			got, ok := NumberValue(find(unit, "number"))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsSimpleReference(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"use(a);", true},
		{"use(a.b.c);", true},
		{"use('x');", true},
		{"use(a[b]);", false},
		{"use(a.b());", false},
		{"use(a?.b);", false},
		{"use(this);", false},
		{"use(this.x);", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			unit := parse(t, tt.src)
			arg := find(unit, "arguments").FirstNamedChild()
			assert.Equal(t, tt.want, IsSimpleReference(arg))
		})
	}
}

func TestIsSequenceReference(t *testing.T) {
	unit := parse(t, "use(this.items);")
	arg := find(unit, "arguments").FirstNamedChild()
	assert.True(t, IsSequenceReference(arg))
	assert.Equal(t, "this", RootObject(arg).Text())
}

func TestForLoopFields(t *testing.T) {
	unit := parse(t, "for (let i = 0; i < arr.length; i++) {}")
	loop := find(unit, "for_statement")
	require.False(t, loop.IsNil())

	cond := ForCondition(loop)
	assert.Equal(t, "binary_expression", cond.Type())
	assert.Equal(t, "<", cond.Operator())
	assert.Equal(t, "i++", ForIncrement(loop).Text())

	obj, ok := LengthObject(cond.Field("right"))
	require.True(t, ok)
	assert.Equal(t, "arr", obj.Text())

	init := loop.Field("initializer")
	assert.Equal(t, "let", DeclarationKind(init))
	assert.Len(t, Declarators(init), 1)
}

func TestIsForIn(t *testing.T) {
	unit := parse(t, "for (const k in obj) {}\nfor (const v of arr) {}")
	var loops []Node
	Inspect(unit.Root(), func(n Node) bool {
		if n.Kind() == KindForInLoop {
			loops = append(loops, n)
		}
		return true
	})
	require.Len(t, loops, 2)
	assert.True(t, IsForIn(loops[0]))
	assert.False(t, IsForIn(loops[1]))
}

func TestIsAssignee(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"arr[i] = 0;", true},
		{"arr[i] += 1;", true},
		{"arr[i]++;", true},
		{"[arr[i]] = x;", true},
		{"use(arr[i]);", false},
		{"const x = arr[i];", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			unit := parse(t, tt.src)
			assert.Equal(t, tt.want, IsAssignee(find(unit, "subscript_expression")))
		})
	}
}

func TestDispatcher(t *testing.T) {
	unit := parse(t, "function f() { return this; }\nconst g = () => 1;")
	var events []string
	d := &Dispatcher{
		OnEnter: map[Kind]Handler{
			KindFunction: func(n Node) { events = append(events, "enter:"+n.Type()) },
			KindArrow:    func(n Node) { events = append(events, "enter:arrow") },
			KindThis:     func(n Node) { events = append(events, "this") },
		},
		OnExit: map[Kind]Handler{
			KindFunction: func(n Node) { events = append(events, "exit:"+n.Type()) },
			KindArrow:    func(n Node) { events = append(events, "exit:arrow") },
		},
	}
	Walk(unit.Root(), d)

	assert.Equal(t, []string{
		"enter:function_declaration", "this", "exit:function_declaration",
		"enter:arrow", "exit:arrow",
	}, events)
}

func TestNodeContains(t *testing.T) {
	unit := parse(t, "if (a) { b(); }")
	stmt := find(unit, "if_statement")
	call := find(unit, "call_expression")
	assert.True(t, stmt.Contains(call))
	assert.False(t, call.Contains(stmt))
	assert.True(t, call.Equal(find(unit, "call_expression")))
}

func TestFirstLeaf(t *testing.T) {
	unit := parse(t, "run(function () {}.call(y), async () => 1);")

	args := find(unit, "arguments").NamedChildren()
	require.Len(t, args, 2)
	assert.Equal(t, "function", FirstLeaf(args[0]).Type())
	assert.Equal(t, "async", FirstLeaf(args[1]).Type())
	assert.True(t, args[1].HasToken("async"))
	assert.True(t, IsFunctionLike(args[1]))
}
