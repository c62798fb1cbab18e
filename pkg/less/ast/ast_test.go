package ast

import "testing"

func TestLitAndVarRef(t *testing.T) {
	v := Value{Pieces: []ValuePiece{Lit("1px solid "), VarRef("base")}}

	if v.Pieces[0].IsVariable {
		t.Fatalf("expected literal piece, got variable")
	}
	if v.Pieces[0].Literal != "1px solid " {
		t.Fatalf("unexpected literal text: %q", v.Pieces[0].Literal)
	}
	if !v.Pieces[1].IsVariable || v.Pieces[1].VariableName != "base" {
		t.Fatalf("unexpected variable piece: %+v", v.Pieces[1])
	}
}

func TestStatementInterfaceImplementations(t *testing.T) {
	var stmts []Statement
	stmts = append(stmts,
		&Import{Raw: `@import "x.less";`},
		&VariableDeclaration{Name: "base"},
		&RuleSet{},
		&AtRule{Name: "media"},
		&MixinDefinition{Name: ".pad"},
		&MixinCall{Name: ".pad"},
	)
	if len(stmts) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(stmts))
	}
}
