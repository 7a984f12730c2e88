package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAuthKey = []byte("test-auth-key-0123456789abcdefgh")
	testEncKey  = []byte("test-enc-key-0123456789abcdefghi")
)

func TestBrowserID_IssuedOnceThenStable(t *testing.T) {
	c := NewCookies(testAuthKey, testEncKey, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	id, err := c.BrowserID(rec, req)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	id2, err := c.BrowserID(rec2, req2)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.Empty(t, rec2.Result().Cookies(), "no new cookie for a known browser")
	assert.Equal(t, id, c.Peek(req2))
}

func TestBrowserID_TamperedCookieReissued(t *testing.T) {
	c := NewCookies(testAuthKey, testEncKey, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})
	rec := httptest.NewRecorder()

	id, err := c.BrowserID(rec, req)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, rec.Result().Cookies(), 1)
	assert.Empty(t, c.Peek(req))
}

func TestIsDecodeError(t *testing.T) {
	codec := securecookie.New(testAuthKey, testEncKey)
	var v map[string]string
	err := codec.Decode(cookieName, "garbage", &v)
	require.Error(t, err)
	assert.True(t, isDecodeError(err))
	assert.False(t, isDecodeError(errors.New("other")))
}
