// Package expression evaluates small infix expressions.
//
// Expressions combine numbers, booleans and quoted strings with arithmetic,
// comparison, logical and ternary operators:
//
//	(4 / 0 == Infinity)          -> true
//	1 - -2 + 4 / 6 * (1.7 + 200) -> 135.9666...
//	(5 == 5) ? 'yes' : 'no'      -> "yes"
//
// Evaluation converts the infix tokens to postfix with the shunting-yard
// algorithm, extended for the ternary operator, then reduces the postfix
// sequence on a value stack.
//
// # Operators
//
// Lower rank binds tighter:
//
//	!  ^          rank 2, right associative (! is unary, ^ is power)
//	*  /          rank 3
//	+  -          rank 4
//	< > <= >=     rank 6
//	== !=         rank 7 (operands must share a type)
//	&&            rank 11
//	||            rank 12
//	cond ? a : b  loosest, right associative
//
// Strings have no escapes and must be quoted at both ends. A "-" directly
// after an operand or ")" is always subtraction, so "1-2" is -1.
package expression
