package main

import (
	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/astiface/astfixture"
)

// demoUnit builds a small fixed design in place of a real SystemVerilog
// front end (spec.md §1 puts lexing/parsing/name-binding/type-checking
// out of scope for this core). It exercises a register write, a
// combinational adder, and an instance connection, enough to drive
// Elaborator -> PassManager -> Emitter end to end.
//
// leaf: y = a + b (combinational)
// top:  clk-synchronous accumulator instancing leaf, registering its sum
func demoUnit() astfixture.Unit {
	leaf := astfixture.Module{
		ModName: "adder",
		ModPorts: []astiface.PortDecl{
			{Name: "a", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
			{Name: "b", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
			{Name: "y", Direction: astiface.DirOutput, Type: astfixture.Scalar{W: 8}},
		},
		ModItems: []astiface.Item{
			astiface.ContinuousAssign{
				LHS: astiface.IdentExpr{Name: "y"},
				RHS: astiface.BinaryExpr{
					Op:  astiface.OpAdd,
					LHS: astiface.IdentExpr{Name: "a"},
					RHS: astiface.IdentExpr{Name: "b"},
				},
			},
		},
	}

	top := astfixture.Module{
		ModName: "accumulator",
		ModPorts: []astiface.PortDecl{
			{Name: "clk", Direction: astiface.DirInput, Type: astfixture.Bit},
			{Name: "rst", Direction: astiface.DirInput, Type: astfixture.Bit},
			{Name: "din", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
			{Name: "sum", Direction: astiface.DirOutput, Type: astfixture.Scalar{W: 8}},
		},
		ModItems: []astiface.Item{
			astiface.InstanceItem{
				InstanceName: "u_adder",
				ModuleName:   "adder",
				PortConns: []astiface.PortConn{
					{FormalName: "a", Actual: astiface.IdentExpr{Name: "sum"}},
					{FormalName: "b", Actual: astiface.IdentExpr{Name: "din"}},
					{FormalName: "y", Actual: astiface.IdentExpr{Name: "__adder_sum"}},
				},
			},
			astiface.ProceduralBlock{
				Kind: astiface.ProcAlwaysFF,
				Sensitivity: []astiface.EdgeSignal{
					{Edge: astiface.EdgePos, Signal: astiface.IdentExpr{Name: "clk"}},
				},
				Body: []astiface.Stmt{
					astiface.IfStmt{
						Cond: astiface.IdentExpr{Name: "rst"},
						Then: []astiface.Stmt{
							astiface.NonBlockingAssignStmt{
								LHS: astiface.IdentExpr{Name: "sum"},
								RHS: astiface.ConstExpr{Literal: "8'd0"},
							},
						},
						Else: []astiface.Stmt{
							astiface.NonBlockingAssignStmt{
								LHS: astiface.IdentExpr{Name: "sum"},
								RHS: astiface.IdentExpr{Name: "__adder_sum"},
							},
						},
					},
				},
			},
		},
	}

	return astfixture.Unit{Mods: []astiface.Module{top, leaf}}
}
