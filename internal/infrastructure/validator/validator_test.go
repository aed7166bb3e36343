package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	ID       int64  `json:"id" binding:"required,gt=0"`
	Password string `json:"password" binding:"required"`
}

func TestValidateAndTranslate(t *testing.T) {
	require.NoError(t, InitTrans("en"))

	err := ValidateStruct(&loginForm{})
	require.Error(t, err)
	msg := Translate(err)
	assert.Contains(t, msg, "id is a required field")
	assert.Contains(t, msg, "password is a required field")

	assert.NoError(t, ValidateStruct(&loginForm{ID: 1, Password: "pw"}))
	assert.Equal(t, "plain", Translate(errors.New("plain")))
}

func TestRemoveTopStruct(t *testing.T) {
	got := RemoveTopStruct(map[string]string{"loginForm.id": "bad"})
	assert.Equal(t, map[string]string{"id": "bad"}, got)
}
