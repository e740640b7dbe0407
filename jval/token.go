package jval

// TokenKind identifies a structural event in a JSON token stream.
type TokenKind int

const (
	TokenInvalid TokenKind = iota
	TokenStartObject
	TokenEndObject
	TokenStartArray
	TokenEndArray
	TokenName
	TokenValue
)

var tokenNames = [...]string{
	"invalid",
	"start-object",
	"end-object",
	"start-array",
	"end-array",
	"name",
	"value",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "invalid"
	}

	return tokenNames[k]
}

// Token is one structural event produced by a [Parser]. Name is set for
// [TokenName] events; Value is set for [TokenValue] events and is always a
// scalar.
type Token struct {
	Value Value
	Name  string
	Kind  TokenKind
}
