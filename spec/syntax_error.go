package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken  = newSyntaxError("invalid token")
	synErrInvalidEscSeq = newSyntaxError("invalid escape sequence")
	synErrEmptyString   = newSyntaxError("a string literal cannot be empty")
	synErrCharLength    = newSyntaxError("a character literal holds exactly one character")

	// syntax errors
	synErrNoParserRule     = newSyntaxError("a description needs at least one parser rule")
	synErrNoSection        = newSyntaxError("a rule must follow a section marker")
	synErrUnknownSection   = newSyntaxError("unknown section; expected %parser, %scanner or %mapping")
	synErrSectionOrder     = newSyntaxError("sections must appear once each in the order %parser, %scanner, %mapping")
	synErrNoColon          = newSyntaxError("the colon must follow the rule name")
	synErrNoSemicolon      = newSyntaxError("a semicolon is missing")
	synErrNoArrow          = newSyntaxError("=> must follow the mapped symbol")
	synErrNoFunction       = newSyntaxError("a mapping needs a function name")
	synErrNoSource         = newSyntaxError("an argument needs a source symbol")
	synErrUnclosedArgs     = newSyntaxError("unclosed argument list")
	synErrUnclosedGroup    = newSyntaxError("unclosed group")
	synErrNoPrimary        = newSyntaxError("an expression is missing")
	synErrRangeNoChar      = newSyntaxError("a range needs a character literal on both sides")
	synErrInvalidRange     = newSyntaxError("the lower bound of a range exceeds the upper bound")
	synErrDirParamNotID    = newSyntaxError("a directive parameter must be an identifier")
	synErrDirNoSemicolon   = newSyntaxError("a directive must end with a semicolon")
	synErrUnexpectedToken  = newSyntaxError("unexpected token")
	synErrMappingInGrammar = newSyntaxError("a mapping can appear only in the %mapping section")
)
