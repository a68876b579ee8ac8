package material

import (
	"net/http"

	"github.com/Abraxas-365/deckgen/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("MATERIAL")

// Error codes
var (
	CodeMaterialNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Material not found")
	CodeInvalidFileType  = ErrRegistry.Register("INVALID_FILE_TYPE", errx.TypeValidation, http.StatusBadRequest, "Unsupported file type")
	CodeFileTooLarge     = ErrRegistry.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "File exceeds the 20MB limit")
	CodeUploadFailed     = ErrRegistry.Register("UPLOAD_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to store uploaded file")
	CodeProcessingFailed = ErrRegistry.Register("PROCESSING_FAILED", errx.TypeInternal, http.StatusUnprocessableEntity, "Failed to process uploaded file")
)

// Helper functions
func ErrMaterialNotFound() *errx.Error {
	return ErrRegistry.New(CodeMaterialNotFound)
}

func ErrInvalidFileType() *errx.Error {
	return ErrRegistry.New(CodeInvalidFileType)
}

func ErrFileTooLarge() *errx.Error {
	return ErrRegistry.New(CodeFileTooLarge)
}

func ErrUploadFailed() *errx.Error {
	return ErrRegistry.New(CodeUploadFailed)
}

func ErrProcessingFailed() *errx.Error {
	return ErrRegistry.New(CodeProcessingFailed)
}
