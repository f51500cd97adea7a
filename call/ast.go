package call

// Node is an element of a parsed call expression.
type Node interface {
	node()
}

// Literal is an argument token, kept as raw text until evaluation.
type Literal struct {
	Raw string
}

// FunctionCall invokes Name with the evaluated Args.
type FunctionCall struct {
	Name string
	Args []Node
}

func (*Literal) node()      {}
func (*FunctionCall) node() {}
