package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-reservations/internal/utils"
)

func TestGenerateDocumentNumber(t *testing.T) {
	doc := utils.GenerateDocumentNumber()
	assert.True(t, strings.HasPrefix(doc, "RSVP-"))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[utils.GenerateDocumentNumber()] = true
	}
	assert.Greater(t, len(seen), 90, "document numbers should almost never collide")
}

func TestGenerateTicketTypeID(t *testing.T) {
	id := utils.GenerateTicketTypeID()
	assert.True(t, strings.HasPrefix(id, "tt_"))
	assert.NotEqual(t, id, utils.GenerateTicketTypeID())
}
