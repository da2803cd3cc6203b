package binding

import "github.com/ardnew/yapp/lang"

var (
	ErrDecode          = lang.NewError("decode environment document")
	ErrInvalidName     = lang.NewError("invalid identifier")
	ErrInvalidVar      = lang.NewError("invalid variable")
	ErrInvalidFunc     = lang.NewError("invalid function")
	ErrInvalidBinding  = lang.NewError("invalid binding (expected name=literal)")
	ErrUnsupportedType = lang.NewError("unsupported result type")
	ErrUnboundName     = lang.NewError("unbound name in function body")
)
