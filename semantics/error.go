package semantics

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrUnknownSymbol    = newSemanticError("a mapping refers to an unknown symbol")
	semErrDuplicateMapping = newSemanticError("a symbol can be mapped only once")
	semErrUnknownFunction  = newSemanticError("unknown function")
	semErrUnmappedSource   = newSemanticError("the source of an argument must be a mapped symbol")
	semErrUpSources        = newSemanticError("an upward argument takes exactly one source")
	semErrTerminalArgs     = newSemanticError("a terminal mapping takes the lexeme and no arguments")
	semErrNotAssignable    = newSemanticError("argument not assignable")
	semErrNoDownPath       = newSemanticError("no source of the argument can occur below the symbol")
	semErrNoUpPath         = newSemanticError("the source of an upward argument can be missing above the symbol")
	semErrCyclic           = newSemanticError("cyclic attribute dependency")
)
