package errorhandler

import (
	error2 "github.com/nyan233/littledelegate/core/protocol/error"
)

var (
	Success                = DefaultErrHandler.LNewErrorDesc(error2.Success, "OK")
	ErrDelegateNotBound    = DefaultErrHandler.LNewErrorDesc(error2.DelegateNotBound, "delegate not bound to any target")
	ErrNotCallable         = DefaultErrHandler.LNewErrorDesc(error2.NotCallable, "bind target is not callable")
	ErrBadArguments        = DefaultErrHandler.LNewErrorDesc(error2.BadArguments, "delegate called with the following bad signature")
	ErrSignatureMismatch   = DefaultErrHandler.LNewErrorDesc(error2.SignatureMismatch, "signature fingerprint mismatch")
	ErrParseSignature      = DefaultErrHandler.LNewErrorDesc(error2.ParseSignatureErr, "signature text decoding invalid")
	ErrMethodNotFound      = DefaultErrHandler.LNewErrorDesc(error2.MethodNotFound, "method no register")
	ErrSourceAlreadyExists = DefaultErrHandler.LNewErrorDesc(error2.SourceAlreadyExists, "source already register")
	ErrBadRegisterName     = DefaultErrHandler.LNewErrorDesc(error2.BadRegisterName, "register name not conform to Source.Method")
	ErrRegistryClosed      = DefaultErrHandler.LNewErrorDesc(error2.RegistryClosed, "registry already stopped")
	ErrCallPanicked        = DefaultErrHandler.LNewErrorDesc(error2.CallPanicked, "call target panicked")
	ErrUnknown             = DefaultErrHandler.LNewErrorDesc(error2.Unknown, "unknown error")
	ErrPlugin              = DefaultErrHandler.LNewErrorDesc(error2.PluginError, "plugin error")
)
