package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndMessage(t *testing.T) {
	err := fmt.Errorf("assign: %w", Conflict("voice already assigned to company"))

	assert.Equal(t, http.StatusConflict, Status(err))
	assert.Equal(t, "voice already assigned to company", Message(err))
}

func TestUnclassified(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, http.StatusInternalServerError, Status(err))
	assert.Equal(t, "internal server error", Message(err))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to list agents", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list agents", Message(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUpstream(t *testing.T) {
	err := Upstream(http.StatusUnprocessableEntity, "invalid voice", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, Status(err))
	assert.Equal(t, "upstream request failed: invalid voice", Message(err))

	err = Upstream(http.StatusInternalServerError, "", errors.New("eof"))
	assert.Equal(t, http.StatusBadGateway, Status(err))
	assert.Equal(t, "upstream request failed", Message(err))

	assert.Equal(t, http.StatusBadGateway, Status(Upstream(0, "dial tcp", nil)))

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		err = Upstream(status, "invalid api key", nil)
		assert.Equal(t, http.StatusBadGateway, Status(err))
		assert.Equal(t, "upstream request failed: invalid api key", Message(err))
	}
}
