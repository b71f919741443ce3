package handlers

import (
	"errors"
	"net/http"

	"github.com/mkataria09/sealdrop/internal/errs"
	"github.com/mkataria09/sealdrop/internal/utils"
)

// writeError maps domain errors onto HTTP statuses. Authentication failures
// collapse into one generic message so a caller cannot probe which factor
// failed.
func writeError(w http.ResponseWriter, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, errs.ErrInvalidCredential),
		errors.Is(err, errs.ErrInvalidKey),
		errors.Is(err, errs.ErrDecryption):
		status, message = http.StatusUnauthorized, "Invalid credentials"

	case errors.Is(err, errs.ErrAccessDenied):
		status, message = http.StatusForbidden, "You do not have access to this document"

	case errors.Is(err, errs.ErrNotOwner):
		status, message = http.StatusForbidden, "Only the document owner can do this"

	case errors.Is(err, errs.ErrUserNotFound):
		status, message = http.StatusNotFound, "User not found"

	case errors.Is(err, errs.ErrOwnerNotFound):
		status, message = http.StatusNotFound, "Owner not found"

	case errors.Is(err, errs.ErrDocumentNotFound):
		status, message = http.StatusNotFound, "Document not found"

	case errors.Is(err, errs.ErrBlobNotFound):
		status, message = http.StatusNotFound, "Document content not found"

	case errors.Is(err, errs.ErrCannotRevokeOwner):
		status, message = http.StatusConflict, "Cannot revoke the owner's access"

	case errors.Is(err, errs.ErrUserExists):
		status, message = http.StatusConflict, "User already exists"

	case errors.Is(err, errs.ErrIntegrity):
		status, message = http.StatusInternalServerError, "Stored content failed its integrity check"

	default:
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	utils.RespondError(w, status, message)
}
