package forof

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscheck/internal/scope"
	"jscheck/internal/syntax"
)

func run(t *testing.T, src string, opts Options) []Finding {
	t.Helper()
	unit, err := syntax.NewParser().Parse(context.Background(), "test.js", []byte(src))
	require.NoError(t, err)
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return Run(unit, scope.Resolve(unit), opts)
}

func apply(src string, p *Proposal) string {
	return src[:p.Start] + p.Text + src[p.End:]
}

func single(t *testing.T, src string) Finding {
	t.Helper()
	findings := run(t, src, Options{})
	require.Len(t, findings, 1)
	return findings[0]
}

func TestCountingLoop_Fixable(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "element declaration",
			src:  "for (let i = 0; i < arr.length; i++) { const x = arr[i]; use(x); }",
			want: "for (let x of arr) { use(x); }",
		},
		{
			name: "cached length",
			src:  "for (let i = 0, len = arr.length; i < len; i++) { const x = arr[i]; use(x); }",
			want: "for (let x of arr) { use(x); }",
		},
		{
			name: "live length with push",
			src:  "for (let i = 0; i < arr.length; i++) { const x = arr[i]; if (x > 0) arr.push(x - 1); }",
			want: "for (let x of arr) { if (x > 0) arr.push(x - 1); }",
		},
		{
			name: "member sequence",
			src:  "for (let i = 0; i < this.items.length; i++) { let item = this.items[i]; use(item); }",
			want: "for (let item of this.items) { use(item); }",
		},
		{
			name: "destructured element",
			src:  "for (let i = 0; i < pairs.length; i++) { const [k, v] = pairs[i]; set(k, v); }",
			want: "for (let [k, v] of pairs) { set(k, v); }",
		},
		{
			name: "plus equals",
			src:  "for (let i = 0; i < arr.length; i += 1) { const x = arr[i]; use(x); }",
			want: "for (let x of arr) { use(x); }",
		},
		{
			name: "prefix increment",
			src:  "for (let i = 0; i < arr.length; ++i) {\n  const x = arr[i];\n  use(x);\n}",
			want: "for (let x of arr) {\n  use(x);\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := single(t, tt.src)
			assert.Equal(t, PatternCountingLoop, f.Pattern)
			require.NotNil(t, f.Fix, f.Reason)
			assert.Equal(t, tt.want, apply(tt.src, f.Fix))
		})
	}
}

func TestCountingLoop_ReportOnly(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason string
	}{
		{
			name:   "index write",
			src:    "for (let i = 0, len = arr.length; i < len; i++) { arr[i] = 0; }",
			reason: reasonIndexWritten,
		},
		{
			name:   "no element declaration",
			src:    "for (let i = 0; i < arr.length; i++) { use(arr[i]); }",
			reason: reasonNoElementDecl,
		},
		{
			name:   "second element read",
			src:    "for (let i = 0; i < arr.length; i++) { const x = arr[i]; use(x, arr[i]); }",
			reason: reasonIndexReused,
		},
		{
			name:   "bound used in body",
			src:    "for (let i = 0, n = arr.length; i < n; i++) { const x = arr[i]; use(x, n); }",
			reason: reasonBoundEscapes,
		},
		{
			name:   "sequence reassigned",
			src:    "for (let i = 0; i < arr.length; i++) { const x = arr[i]; arr = next(x); }",
			reason: reasonSequenceWritten,
		},
		{
			name:   "cached bound with push",
			src:    "for (let i = 0, n = arr.length; i < n; i++) { const x = arr[i]; arr.push(x); }",
			reason: reasonSequenceResized,
		},
		{
			name:   "cached bound with length write",
			src:    "for (let i = 0, n = arr.length; i < n; i++) { const x = arr[i]; if (x) arr.length = 0; }",
			reason: reasonSequenceResized,
		},
		{
			name:   "cached bound with sequence passed on",
			src:    "for (let i = 0, n = arr.length; i < n; i++) { const x = arr[i]; drain(arr, x); }",
			reason: reasonSequenceResized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := single(t, tt.src)
			assert.Nil(t, f.Fix)
			assert.Equal(t, tt.reason, f.Reason)
		})
	}
}

func TestCountingLoop_NotReported(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index used directly", "for (let i = 0; i < arr.length; i++) { const x = arr[i]; use(x, i); }"},
		{"index into other sequence", "for (let i = 0; i < arr.length; i++) { use(other[i]); }"},
		{"var index", "for (var i = 0; i < arr.length; i++) { use(arr[i]); }"},
		{"non-zero start", "for (let i = 1; i < arr.length; i++) { use(arr[i]); }"},
		{"inclusive bound", "for (let i = 0; i <= arr.length; i++) { use(arr[i]); }"},
		{"step of two", "for (let i = 0; i < arr.length; i += 2) { use(arr[i]); }"},
		{"decrement", "for (let i = 0; i < arr.length; i--) { use(arr[i]); }"},
		{"computed sequence", "for (let i = 0; i < get().length; i++) { use(get()[i]); }"},
		{"while loop", "let i = 0; while (i < arr.length) { use(arr[i]); i++; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, run(t, tt.src, Options{}))
		})
	}
}

func TestIsIncrementByOne(t *testing.T) {
	for _, update := range []string{"i++", "++i", "i += 1", "i = i + 1", "i = 1 + i"} {
		src := "for (let i = 0; i < arr.length; " + update + ") { const x = arr[i]; use(x); }"
		findings := run(t, src, Options{})
		require.Len(t, findings, 1, update)
		assert.NotNil(t, findings[0].Fix, update)
	}
}

func TestForIn_ReportedWithoutFix(t *testing.T) {
	f := single(t, "for (const k in obj) { use(obj[k]); }")
	assert.Equal(t, PatternForIn, f.Pattern)
	assert.Nil(t, f.Fix)
	assert.Equal(t, reasonForIn, f.Reason)

	assert.Empty(t, run(t, "for (const v of list) { use(v); }", Options{}))
}

func TestCallback_Fixable(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		opts Options
	}{
		{
			name: "arrow block",
			src:  "arr.forEach(x => { use(x); });",
			want: "for (let x of arr) { use(x); }",
		},
		{
			name: "arrow expression",
			src:  "arr.forEach(x => use(x));",
			want: "for (let x of arr) use(x);",
		},
		{
			name: "return becomes continue",
			src:  "arr.forEach(function (x) { if (!x) return; use(x); });",
			want: "for (let x of arr) { if (!x) continue; use(x); }",
		},
		{
			name: "lexical this in arrow",
			src:  "arr.forEach(x => this.add(x));",
			want: "for (let x of arr) this.add(x);",
		},
		{
			name: "this replaced by thisArg",
			src:  "function f(self) { items.forEach(function (x) { this.add(x); }, self); }",
			want: "function f(self) { for (let x of items) { self.add(x); } }",
		},
		{
			name: "this replaced by receiver",
			src:  "const items = []; items.forEach(function (x) { this.add(x); });",
			want: "const items = []; for (let x of items) { items.add(x); }",
			opts: Options{ReceiverAsContext: true},
		},
		{
			name: "this in nested arrow",
			src:  "function f(self) { items.forEach(function (x) { run(() => this.add(x)); }, self); }",
			want: "function f(self) { for (let x of items) { run(() => self.add(x)); } }",
		},
		{
			name: "this in nested function kept",
			src:  "function f(self) { items.forEach(function (x) { run(function () { this.a(); }); use(x); }, self); }",
			want: "function f(self) { for (let x of items) { run(function () { this.a(); }); use(x); } }",
		},
		{
			name: "function expression body",
			src:  "arr.forEach(x => function () {}.call(x));",
			want: "for (let x of arr) (function () {}.call(x));",
		},
		{
			name: "class expression body",
			src:  "arr.forEach(x => class {}.name + x);",
			want: "for (let x of arr) (class {}.name + x);",
		},
		{
			name: "member receiver",
			src:  "this.rows.forEach(row => { render(row); });",
			want: "for (let row of this.rows) { render(row); }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := run(t, tt.src, tt.opts)
			require.Len(t, findings, 1)
			f := findings[0]
			assert.Equal(t, PatternCallback, f.Pattern)
			require.NotNil(t, f.Fix, f.Reason)
			assert.Equal(t, tt.want, apply(tt.src, f.Fix))
		})
	}
}

func TestCallback_ReportOnly(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason string
	}{
		{"this without context", "items.forEach(function (x) { this.add(x); });", reasonContextUnsafe},
		{
			"shadowed context",
			"function f(self) { items.forEach(function (x) { const self = 1; this.add(x, self); }, self); }",
			reasonContextUnsafe,
		},
		{"async callback", "arr.forEach(async x => { await use(x); });", reasonAsyncCallback},
		{"arguments", "arr.forEach(function (x) { use(arguments); });", reasonArguments},
		{"var declaration", "arr.forEach(x => { var y = x; use(y); });", reasonVarDeclaration},
		{"return in nested loop", "arr.forEach(x => { for (const k of x) { return; } });", reasonReturnInLoop},
		{"return value", "arr.forEach(x => { return use(x); });", reasonReturnValue},
		{"param in receiver", "x.forEach(x => use(x));", reasonNameCollision},
		{"multi-line callee", "arr\n  .forEach(x => use(x));", reasonMultilineCallee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := single(t, tt.src)
			assert.Equal(t, PatternCallback, f.Pattern)
			assert.Nil(t, f.Fix)
			assert.Equal(t, tt.reason, f.Reason)
		})
	}
}

func TestCallback_NotReported(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bound callback", "arr.forEach(function (x) { this.add(x); }.bind(this));"},
		{
			"bound callback with nested function",
			"items.forEach(function (item) { if (!item) return; total += item; setTimeout(function () { this.flush(); }); }.bind(this));",
		},
		{"result used", "const r = arr.forEach(x => use(x));"},
		{"index parameter", "arr.forEach((x, i) => use(x, i));"},
		{"no parameter", "arr.forEach(() => tick());"},
		{"default parameter", "arr.forEach((x = 1) => use(x));"},
		{"rest parameter", "arr.forEach((...xs) => use(xs));"},
		{"optional call", "arr?.forEach(x => use(x));"},
		{"recursive", "arr.forEach(function walk(x) { x.children.forEach(walk); });"},
		{"other method", "arr.map(x => use(x));"},
		{"named reference", "arr.forEach(handle);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range run(t, tt.src, Options{}) {
				assert.NotEqual(t, PatternCallback, f.Pattern, f.Node.Text())
			}
		})
	}
}

func TestCallback_ThisInsideReturnNotRecorded(t *testing.T) {
	src := "function f(self) { items.forEach(function (x) { if (x) return this; this.add(x); }, self); }"
	f := single(t, src)
	require.NotNil(t, f.Fix, f.Reason)
	assert.Equal(t,
		"function f(self) { for (let x of items) { if (x) continue; self.add(x); } }",
		apply(src, f.Fix))
}

func TestCallback_NestedFunctionOwnsThis(t *testing.T) {
	src := "arr.forEach(x => { const o = { get() { return this.v; } }; use(o, x); });"
	f := single(t, src)
	require.NotNil(t, f.Fix, f.Reason)
	assert.Equal(t, "for (let x of arr) { const o = { get() { return this.v; } }; use(o, x); }", apply(src, f.Fix))
}

func TestRun_FindingsOrdered(t *testing.T) {
	src := `
for (const k in obj) { use(k); }
arr.forEach(x => use(x));
for (let i = 0; i < arr.length; i++) { const x = arr[i]; use(x); }
`
	findings := run(t, src, Options{})
	require.Len(t, findings, 3)
	assert.Equal(t, PatternForIn, findings[0].Pattern)
	assert.Equal(t, PatternCallback, findings[1].Pattern)
	assert.Equal(t, PatternCountingLoop, findings[2].Pattern)
}

func TestRun_Idempotent(t *testing.T) {
	sources := []string{
		"for (let i = 0; i < arr.length; i++) { const x = arr[i]; use(x); }",
		"arr.forEach(function (x) { if (!x) return; use(x); });",
		"arr.forEach(x => use(x));",
	}

	for _, src := range sources {
		findings := run(t, src, Options{})
		require.Len(t, findings, 1, src)
		require.NotNil(t, findings[0].Fix, src)

		fixed := apply(src, findings[0].Fix)
		assert.Empty(t, run(t, fixed, Options{}), fixed)
	}
}

func TestContextState(t *testing.T) {
	s := contextNone
	assert.Equal(t, "none", s.String())

	s = s.observe(true)
	assert.Equal(t, contextSafe, s)

	s = s.observe(false)
	assert.Equal(t, contextUnsafe, s)

	s = s.observe(true)
	assert.Equal(t, contextUnsafe, s, "unsafe is absorbing")
}
