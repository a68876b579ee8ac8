package project

import (
	"net/http"

	"github.com/Abraxas-365/deckgen/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("PROJECT")

// Error codes
var (
	CodeProjectNotFound  = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Project not found")
	CodeAlreadyExists    = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Project already exists")
	CodeNoOutline        = ErrRegistry.Register("NO_OUTLINE", errx.TypeBusiness, http.StatusBadRequest, "Project has no outline")
	CodeEmptyOutline     = ErrRegistry.Register("EMPTY_OUTLINE", errx.TypeBusiness, http.StatusBadRequest, "Generated outline is empty")
	CodeOutlineMismatch  = ErrRegistry.Register("OUTLINE_MISMATCH", errx.TypeBusiness, http.StatusConflict, "Descriptions do not match outline items")
	CodeAlreadyRealized  = ErrRegistry.Register("ALREADY_MATERIALIZED", errx.TypeConflict, http.StatusConflict, "Pages already materialized for this project")
	CodeGenerationFailed = ErrRegistry.Register("GENERATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Content generation failed")
	CodeInvalidShareLink = ErrRegistry.Register("INVALID_SHARE_LINK", errx.TypeAuthentication, http.StatusUnauthorized, "Share link is invalid or expired")
)

// Helper functions
func ErrProjectNotFound() *errx.Error {
	return ErrRegistry.New(CodeProjectNotFound)
}

func ErrProjectAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeAlreadyExists)
}

func ErrNoOutline() *errx.Error {
	return ErrRegistry.New(CodeNoOutline)
}

func ErrEmptyOutline() *errx.Error {
	return ErrRegistry.New(CodeEmptyOutline)
}

func ErrOutlineMismatch() *errx.Error {
	return ErrRegistry.New(CodeOutlineMismatch)
}

func ErrAlreadyMaterialized() *errx.Error {
	return ErrRegistry.New(CodeAlreadyRealized)
}

func ErrGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeGenerationFailed)
}

func ErrInvalidShareLink() *errx.Error {
	return ErrRegistry.New(CodeInvalidShareLink)
}
