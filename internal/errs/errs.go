package errs

import "errors"

// Authentication errors indicate the presented credential or private key is wrong.
// Handlers surface these as a generic "invalid credentials" so a caller cannot
// probe which factor failed.
var (
	// ErrInvalidCredential indicates the credential could not unlock the user's key material.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidKey indicates a private key that does not match the wrapped key it was used on.
	ErrInvalidKey = errors.New("private key does not unwrap this document key")

	// ErrDecryption indicates an asymmetric decryption that failed outright.
	// RSA-OAEP gives no detail beyond "decryption error", so neither do we.
	ErrDecryption = errors.New("decryption failed")
)

// Authorization errors indicate a valid identity with insufficient rights.
var (
	// ErrAccessDenied indicates the user holds no wrapped key for the document.
	ErrAccessDenied = errors.New("user does not have access to this document")

	// ErrNotOwner indicates a share or revoke attempt by someone other than the document owner.
	ErrNotOwner = errors.New("user is not the owner of this document")
)

// Not-found errors.
var (
	// ErrUserNotFound indicates the user id does not resolve to a known user.
	ErrUserNotFound = errors.New("user not found")

	// ErrOwnerNotFound indicates an upload for an owner id with no provisioned identity.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrDocumentNotFound indicates the document id does not resolve to a stored document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrBlobNotFound indicates the byte store holds nothing under the requested key.
	ErrBlobNotFound = errors.New("blob not found")
)

// Integrity and conflict errors.
var (
	// ErrIntegrity indicates an authentication-tag failure: the ciphertext was
	// tampered with or decrypted under the wrong key. Decryption fails closed,
	// it never yields partial plaintext.
	ErrIntegrity = errors.New("ciphertext integrity check failed")

	// ErrCannotRevokeOwner indicates an attempt to revoke the document owner's own access.
	ErrCannotRevokeOwner = errors.New("cannot revoke the owner's access")

	// ErrUserExists indicates an identity was already provisioned under this id or email.
	ErrUserExists = errors.New("user already exists")

	// ErrDocumentExists indicates a document row already holds this deterministic id.
	// Upload treats it as the signal to return the existing state instead of failing.
	ErrDocumentExists = errors.New("document already exists")

	// ErrInvalidKeyLength indicates a symmetric key that is not 16, 24, or 32 bytes.
	ErrInvalidKeyLength = errors.New("key length must be 16, 24, or 32 bytes")
)
