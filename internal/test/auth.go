package test

// TokenParserStub implements middleware.TokenParser.
type TokenParserStub struct {
	ID      string
	Err     error
	ParseFn func(string) (string, error)
}

// ParseToken returns the configured identifier or error.
func (s TokenParserStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return "", s.Err
	}
	if s.ID == "" {
		return "user", nil
	}
	return s.ID, nil
}
