package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateReviewRef produces the short human-readable code shown to
// participants of a review session, e.g. RV-7KQ2M9XA.
func GenerateReviewRef() string {
	code, err := gonanoid.Generate("0123456789ABCDEFGHJKMNPQRSTVWXYZ", 8)
	if err != nil {
		return ""
	}
	return "RV-" + code
}
