package common

import (
	"github.com/google/uuid"
)

// NewAnalysisID generates a unique analysis ID with the "an_" prefix
func NewAnalysisID() string {
	return "an_" + uuid.New().String()
}
