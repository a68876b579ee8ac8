package template

import (
	"net/http"

	"github.com/Abraxas-365/deckgen/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("TEMPLATE")

// Error codes
var (
	CodeTemplateNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Template not found")
	CodeEmbeddingFailed  = ErrRegistry.Register("EMBEDDING_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to generate template embedding")
	CodeSearchFailed     = ErrRegistry.Register("SEARCH_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Template search failed")
	CodeInvalidThumbnail = ErrRegistry.Register("INVALID_THUMBNAIL", errx.TypeValidation, http.StatusBadRequest, "Thumbnail is not a decodable image")
)

// Helper functions
func ErrTemplateNotFound() *errx.Error {
	return ErrRegistry.New(CodeTemplateNotFound)
}

func ErrEmbeddingFailed() *errx.Error {
	return ErrRegistry.New(CodeEmbeddingFailed)
}

func ErrSearchFailed() *errx.Error {
	return ErrRegistry.New(CodeSearchFailed)
}

func ErrInvalidThumbnail() *errx.Error {
	return ErrRegistry.New(CodeInvalidThumbnail)
}
