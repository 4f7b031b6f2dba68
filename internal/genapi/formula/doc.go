// Package formula implements the arithmetic expression language
// embedded in GenICam SwissKnife and Converter nodes.
//
// A formula is parsed once into an AST and evaluated many times against
// an Env supplying the current values of its named variables. Evaluation
// is pure: the only side effects are whatever the Env performs while
// resolving a variable (typically device register reads). Evaluation
// order across variables is deterministic (sub-expressions evaluate
// left to right) but carries no semantic weight; the model forbids
// inter-variable side effects.
//
// Values are integers or IEEE-754 doubles. Mixed arithmetic promotes to
// float; integer division stays integral only when exact. The special
// literals INF, -INF and NaN parse and propagate with IEEE semantics:
// NaN compares unequal to itself, INF is a legal bound.
//
//	expr, err := formula.Parse("Var1 + Var2 + ConstBy2")
//	v, err := expr.Eval(env)
package formula
