// Package gid encodes and decodes the opaque identifiers exposed to
// clients: base64 of "<TypeTag>:<uuid>". The tag keeps identifiers for
// different record types from being interchangeable.
package gid

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// TypeUser is the tag carried by account identifiers.
const TypeUser = "User"

var (
	ErrUndecodable = errors.New("gid: value is not a decodable global identifier")
	ErrInvalidUUID = errors.New("gid: payload is not a valid UUID")
)

// Encode builds the opaque identifier for a record.
func Encode(typeTag string, id uuid.UUID) string {
	return base64.StdEncoding.EncodeToString([]byte(typeTag + ":" + id.String()))
}

// Decode splits an opaque identifier into its type tag and UUID.
func Decode(value string) (typeTag string, id uuid.UUID, err error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", uuid.Nil, ErrUndecodable
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", uuid.Nil, ErrUndecodable
	}
	id, err = uuid.Parse(parts[1])
	if err != nil {
		return parts[0], uuid.Nil, ErrInvalidUUID
	}
	return parts[0], id, nil
}
