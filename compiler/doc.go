/*
Package compiler turns a parsed description into a mapper.

GrammarBuilder checks the description and produces a Spec: the symbol table, the lowered
grammar, the scanner rules and the mappings. Compile runs the pipeline over a Spec: the
LR(k) automaton and its table (package grammar/lr), the scanner modes and the packed
scanner (package grammar/lexical) and the attribute schedule (package semantics).
*/
package compiler
