package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	usr := user.User{ID: "u1", Name: "Jane", Email: "jane@example.com"}
	logger.Warn("malformed list response", errors.New("unrecognized shape"), map[string]interface{}{"endpoint": "/courses"}, usr, user.User{ID: "u2"})

	assert.Equal(t, "API : WARN: malformed list response\n"+
		"API : unrecognized shape\n"+
		"API : map[endpoint:/courses]\n"+
		"API : user: u1 <jane@example.com>\n", buf.String())
}

func TestSplit(t *testing.T) {
	usr, rest := split([]interface{}{"a", user.User{ID: "u1"}, 1, user.User{ID: "u2"}})
	if assert.NotNil(t, usr) {
		assert.Equal(t, "u1", usr.ID)
	}
	assert.Equal(t, []interface{}{"a", 1}, rest)

	usr, rest = split(nil)
	assert.Nil(t, usr)
	assert.Empty(t, rest)
}
