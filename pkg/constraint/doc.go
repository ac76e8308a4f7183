// Package constraint parses and compiles the relation mini-language used to
// bind cell coordinates.
//
// A constraint string is a comma-separated list of relations. Each relation
// is two linear expressions joined by one of the operators <=, >=, <, > or =.
// The operator is found by trying those spellings in that order, so "<=" is
// never mistaken for "<".
//
//	x1=0, y1=0, width=100, height=100
//	sx2 + 5 = ox1
//	2*(sy2 - sy1) <= oheight / 2
//
// # Coordinate Tokens
//
// Self and absolute constraints bind one cell and accept x1, y1, x2, y2,
// width and height, optionally with an "s" prefix (sx1, swidth, ...).
// Relative constraints bind two cells: the subject with the "s" prefix and
// the other cell with the "o" prefix (ox1, owidth, ...).
//
// # Expressions
//
// Expressions support + and -, multiplication and division by constants,
// unary signs and parentheses. Coefficients are exact rationals; decimal
// literals are allowed. A product of two non-constant factors, or division
// by anything other than a non-zero constant, is rejected.
//
// # Compilation
//
// [Compile] moves every relation into the normal form
//
//	sum(coef * coordinate) OP rhs
//
// with integer coefficients (the relation is scaled by the least common
// multiple of its denominators) and OP one of <=, >= or =. Strict operators
// use integer semantics: a < b becomes a <= b-1.
//
// Parse failures are reported as [*SyntaxError] values wrapped in an
// INVALID_GRAMMAR coded error.
package constraint
