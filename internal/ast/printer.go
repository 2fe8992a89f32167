package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sprint renders node as an S-expression, one top-level statement per line
// for modules.
func Sprint(node Node) string {
	var sb strings.Builder
	Fprint(&sb, node)
	return sb.String()
}

func Fprint(w io.Writer, node Node) {
	p := printer{w: w}
	p.node(node)
}

type printer struct {
	w io.Writer
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) list(nodes []Node) {
	for _, node := range nodes {
		p.printf(" ")
		p.node(node)
	}
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case nil:
		p.printf("nil")
	case *Module:
		p.printf("(module %s", n.Path)
		for _, stmt := range n.Statements {
			p.printf("\n  ")
			p.node(stmt)
		}
		p.printf(")")
	case *FunctionDecl:
		p.fnDecl(n)
	case *Import:
		p.printf("(import %s)", strconv.Quote(n.Path.Name()))
	case *Block:
		p.printf("(block")
		p.list(n.Statements)
		p.printf(")")
	case *If:
		p.printf("(if ")
		p.node(n.Cond)
		p.printf(" ")
		p.node(n.Then)
		if n.Else != nil {
			p.printf(" ")
			p.node(n.Else)
		}
		p.printf(")")
	case *While:
		p.printf("(while ")
		p.node(n.Cond)
		p.printf(" ")
		p.node(n.Body)
		p.printf(")")
	case *Return:
		if n.Value == nil {
			p.printf("(return)")
			return
		}
		p.printf("(return ")
		p.node(n.Value)
		p.printf(")")
	case *Assignment:
		p.printf("(= %s ", n.Name.Name())
		p.node(n.Value)
		p.printf(")")
	case *NumberLiteral:
		p.printf("%d", n.Value)
	case *StringLiteral:
		p.printf("%s", strconv.Quote(n.Value))
	case *Variable:
		p.printf("%s", n.Name.Name())
	case *Accessor:
		p.printf("%s::%s", n.Left.Name.Name(), n.Right.Name.Name())
	case *Call:
		p.printf("(call ")
		p.node(n.Callee)
		p.list(n.Args)
		p.printf(")")
	case *BinaryOp:
		p.printf("(%s ", n.Op.Kind)
		p.node(n.Left)
		p.printf(" ")
		p.node(n.Right)
		p.printf(")")
	case *ArrayLiteral:
		p.printf("(array")
		p.list(n.Items)
		p.printf(")")
	case *IndexAccess:
		p.printf("(index ")
		p.node(n.Base)
		p.printf(" ")
		p.node(n.Index)
		p.printf(")")
	default:
		p.printf("(unknown %s)", node.Kind())
	}
}

func (p *printer) fnDecl(fn *FunctionDecl) {
	if fn.External {
		p.printf("(extern ")
	} else {
		p.printf("(")
	}
	p.printf("fn %s (", fn.Name.Name())
	for i, param := range fn.Params {
		if i > 0 {
			p.printf(" ")
		}
		if param.Rest {
			p.printf("...")
		}
		p.printf("%s: %s", param.Name.Name(), param.Type)
	}
	if fn.Vararg {
		if len(fn.Params) > 0 {
			p.printf(" ")
		}
		p.printf("...")
	}
	p.printf(")")
	if fn.RetType != nil {
		p.printf(": %s", fn.RetType)
	}
	if fn.HasBody() {
		p.printf(" ")
		p.node(fn.Body)
	}
	p.printf(")")
}
