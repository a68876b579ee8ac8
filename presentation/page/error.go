package page

import (
	"net/http"

	"github.com/Abraxas-365/deckgen/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("PAGE")

// Error codes
var (
	CodePageNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Page not found")
	CodeInvalidReorder    = ErrRegistry.Register("INVALID_REORDER", errx.TypeValidation, http.StatusBadRequest, "Reorder request does not cover the project's pages exactly")
	CodeGenerationFailed  = ErrRegistry.Register("GENERATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Slide image generation failed")
	CodeNoImageToEdit     = ErrRegistry.Register("NO_IMAGE_TO_EDIT", errx.TypeBusiness, http.StatusBadRequest, "Page has no image to regenerate from")
	CodeAlreadyGenerating = ErrRegistry.Register("ALREADY_GENERATING", errx.TypeConflict, http.StatusConflict, "Page image is already being generated")
)

// Helper functions
func ErrPageNotFound() *errx.Error {
	return ErrRegistry.New(CodePageNotFound)
}

func ErrInvalidReorder() *errx.Error {
	return ErrRegistry.New(CodeInvalidReorder)
}

func ErrGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeGenerationFailed)
}

func ErrNoImageToEdit() *errx.Error {
	return ErrRegistry.New(CodeNoImageToEdit)
}

func ErrAlreadyGenerating() *errx.Error {
	return ErrRegistry.New(CodeAlreadyGenerating)
}
