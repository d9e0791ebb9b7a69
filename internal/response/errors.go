package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrUnauthorized       ErrCode = "UNAUTHORIZED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrConflict     ErrCode = "CONFLICT"
	ErrQuizNotFound ErrCode = "QUIZ_NOT_FOUND"

	// ─── Generation ────────────────────────────────────────────────────
	ErrGenerationFormat ErrCode = "GENERATION_FORMAT"
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"
	ErrPersistence      ErrCode = "PERSISTENCE_FAILED"

	// ─── Editor ────────────────────────────────────────────────────────
	ErrEditorNotOpen      ErrCode = "EDITOR_NOT_OPEN"
	ErrEditorSaving       ErrCode = "EDITOR_SAVE_IN_PROGRESS"
	ErrEditorIndex        ErrCode = "EDITOR_INDEX_OUT_OF_RANGE"
	ErrEditorNoOptions    ErrCode = "EDITOR_NOT_MULTIPLE_CHOICE"
	ErrEditorUnknownKey   ErrCode = "EDITOR_UNKNOWN_OPTION"
	ErrEditorWrongType    ErrCode = "EDITOR_WRONG_DOCUMENT_TYPE"
	ErrEditorInvalidState ErrCode = "EDITOR_INVALID_CONTENT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrSessionInvalidated:
		return "Sesi Anda telah berakhir. Silakan login kembali."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrUnauthorized:
		return "Silakan login terlebih dahulu."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Dokumen tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."
	case ErrQuizNotFound:
		return "Kuis tidak ditemukan."

	// ─── Generation ────────────────────────────────────────────────────
	case ErrGenerationFormat:
		return "Format hasil AI tidak valid. Silakan coba generate ulang."
	case ErrGenerationFailed:
		return "Gagal menghubungi layanan AI. Silakan coba lagi."
	case ErrPersistence:
		return "Gagal menyimpan dokumen. Silakan coba lagi."

	// ─── Editor ────────────────────────────────────────────────────────
	case ErrEditorNotOpen:
		return "Dokumen belum dibuka di editor."
	case ErrEditorSaving:
		return "Dokumen sedang disimpan."
	case ErrEditorIndex:
		return "Nomor soal tidak ditemukan."
	case ErrEditorNoOptions:
		return "Soal uraian tidak memiliki pilihan jawaban."
	case ErrEditorUnknownKey:
		return "Pilihan jawaban tidak ditemukan."
	case ErrEditorWrongType:
		return "Bagian ini tidak tersedia untuk jenis dokumen ini."
	case ErrEditorInvalidState:
		return "Isi dokumen tidak valid dan belum dapat disimpan."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
