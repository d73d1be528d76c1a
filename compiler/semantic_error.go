package compiler

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
	semErrNoGrammarName    = newSemanticError("name is missing")
	semErrDirInvalidName   = newSemanticError("invalid directive name")
	semErrDirInvalidParam  = newSemanticError("invalid parameter")
	semErrUndefinedSym     = newSemanticError("undefined symbol")
	semErrUnusedProduction = newSemanticError("unused production")
	semErrUnusedTerminal   = newSemanticError("unused terminal")
	semErrUnusedHelper     = newSemanticError("unused scanner rule")
	semErrDuplicateRule    = newSemanticError("duplicate rule")
	semErrDuplicateName    = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrSpelling         = newSemanticError("symbol names differ only in spelling")
	semErrRangeInParser    = newSemanticError("a character range cannot appear in the parser section")
	semErrWithoutInParser  = newSemanticError("a difference cannot appear in the parser section")
	semErrNonTermInScanner = newSemanticError("a scanner rule cannot refer to a parser rule")
	semErrWhiteNotScanner  = newSemanticError("a white symbol must be a scanner rule")
	semErrWhiteUsed        = newSemanticError("a white symbol cannot be used in the parser section")
	semErrUnknownMapping   = newSemanticError("a mapping refers to an unknown symbol")
	semErrInvalidLookahead = newSemanticError("lookahead length must be between 1 and 4")
	semErrInvalidThreads   = newSemanticError("thread count must be at least 1")
	semErrTooManySymbols   = newSemanticError("too many symbols")
)
