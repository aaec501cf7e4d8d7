package capture

import "errors"

// ErrorCode is the closed taxonomy platform error codes are mapped onto.
type ErrorCode string

const (
	CodeCapabilityUnavailable ErrorCode = "capability_unavailable"
	CodePermissionDenied      ErrorCode = "permission_denied"
	CodeNoSpeechDetected      ErrorCode = "no_speech_detected"
	CodeAudioCaptureFailed    ErrorCode = "audio_capture_failed"
	CodeNetworkFailure        ErrorCode = "network_failure"
	CodeAborted               ErrorCode = "aborted"
	CodeUnknown               ErrorCode = "unknown"
)

// Error is a capture failure carrying a taxonomy code and a user-facing
// message. The messages are in the product locale because they are shown
// to the user as-is.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Session misuse errors. These are programming-intent guards, not part of
// the user-visible taxonomy.
var (
	ErrAlreadyListening = errors.New("capture: session already listening")
	ErrNotListening     = errors.New("capture: session not listening")
	ErrClosed           = errors.New("capture: session closed")
)

// mapPlatformCode maps a raw platform error code (Web Speech API style)
// onto the closed taxonomy.
func mapPlatformCode(code string) *Error {
	switch code {
	case "not-allowed", "service-not-allowed":
		return &Error{Code: CodePermissionDenied, Message: "Permissão de microfone negada pelo navegador."}
	case "no-speech":
		return &Error{Code: CodeNoSpeechDetected, Message: "Não ouvimos nada. Tente falar novamente."}
	case "audio-capture":
		return &Error{Code: CodeAudioCaptureFailed, Message: "Não foi possível capturar o áudio. Verifique o seu microfone."}
	case "network":
		return &Error{Code: CodeNetworkFailure, Message: "Erro de rede ao processar a voz."}
	case "aborted":
		return &Error{Code: CodeAborted, Message: "Captura interrompida."}
	default:
		return &Error{Code: CodeUnknown, Message: "Ocorreu um erro ao tentar ouvir. Tente novamente."}
	}
}
