package syntax

// Visitor receives depth-first enter and exit events. Returning false from
// Enter skips the node's children; Exit is still called.
type Visitor interface {
	Enter(n Node) bool
	Exit(n Node)
}

// Walk traverses the named children of root depth-first.
func Walk(root Node, v Visitor) {
	if root.IsNil() {
		return
	}
	if v.Enter(root) {
		for _, c := range root.NamedChildren() {
			Walk(c, v)
		}
	}
	v.Exit(root)
}

// Inspect calls f for root and every named descendant in depth-first order.
// If f returns false the node's children are skipped.
func Inspect(root Node, f func(Node) bool) {
	if root.IsNil() || !f(root) {
		return
	}
	for _, c := range root.NamedChildren() {
		Inspect(c, f)
	}
}

// Handler reacts to a node of a given Kind.
type Handler func(n Node)

// Dispatcher is a Visitor backed by enter and exit tables keyed by Kind.
type Dispatcher struct {
	OnEnter map[Kind]Handler
	OnExit  map[Kind]Handler
}

// Enter implements Visitor.
func (d *Dispatcher) Enter(n Node) bool {
	if h, ok := d.OnEnter[n.Kind()]; ok {
		h(n)
	}
	return true
}

// Exit implements Visitor.
func (d *Dispatcher) Exit(n Node) {
	if h, ok := d.OnExit[n.Kind()]; ok {
		h(n)
	}
}
