// Package forof recognizes iteration over indexable sequences and proposes
// rewrites into for...of loops.
//
// Two surface patterns are matched: the counting loop
//
//	for (let i = 0; i < arr.length; i++) { const x = arr[i]; ... }
//
// and a discarded forEach call with a single-parameter callback
//
//	arr.forEach(function (x) { ... });
//
// Every match passes a safety analysis built on the scope index before a fix
// is proposed. The analysis is total: one disqualifying reference is enough
// to drop the fix, and some disqualifications drop the report as well.
// for...in loops are always reported and never fixed.
//
// The engine walks the tree once. Function-like nodes push a frame on an
// explicit stack; return statements, this expressions, arguments uses and
// var declarations are attributed to the frame that owns them, and a target
// callback is evaluated when its frame is popped.
package forof
