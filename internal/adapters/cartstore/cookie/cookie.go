// Package cookie persists the guest cart in one reserved, HMAC-signed
// browser cookie. A missing cookie, a bad signature or an unparsable payload
// all load as an empty cart: corrupt state is recovered, never surfaced.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/shirtso/shirtso/internal/cart"
)

const Name = "cart"

type Store struct {
	secret []byte
	maxAge int
}

func New(secret []byte) *Store {
	return &Store{secret: secret, maxAge: 60 * 60 * 24 * 30}
}

func (s *Store) sign(payload []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(payload)
	return h.Sum(nil)
}

// Load returns the cart from the request cookie, or an empty cart when the
// cookie is absent, tampered with or malformed.
func (s *Store) Load(r *http.Request) cart.Cart {
	c, err := r.Cookie(Name)
	if err != nil {
		return cart.Cart{}
	}
	sigPart, payloadPart, ok := splitValue(c.Value)
	if !ok {
		return cart.Cart{}
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return cart.Cart{}
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return cart.Cart{}
	}
	if !hmac.Equal(sig, s.sign(payload)) {
		return cart.Cart{}
	}
	var out cart.Cart
	if err := json.Unmarshal(payload, &out); err != nil {
		return cart.Cart{}
	}
	return out
}

// Save re-serializes the whole cart into the cookie. Fire and forget: there
// is no retry and no size-limit handling.
func (s *Store) Save(w http.ResponseWriter, c cart.Cart) {
	b, _ := json.Marshal(c)
	sig := base64.RawURLEncoding.EncodeToString(s.sign(b))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: Name, Value: val, Path: "/", MaxAge: s.maxAge, HttpOnly: true})
}

// Drop expires the cart cookie.
func (s *Store) Drop(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: Name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func splitValue(v string) (sig, payload string, ok bool) {
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			return v[:i], v[i+1:], true
		}
	}
	return "", "", false
}
