package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateDocumentNumber produces the human-readable RSVP identifier printed
// on invitations, e.g. "RSVP-1748851494-048213".
func GenerateDocumentNumber() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("RSVP-%d-%06d", timestamp, randomNum.Int64())
}

// GenerateTicketTypeID produces organizer-facing ticket type IDs.
func GenerateTicketTypeID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("tt_%d_%06d", timestamp, randomNum.Int64())
}
