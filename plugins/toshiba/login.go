package toshiba

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned when the cloud rejects the username or password.
var ErrInvalidCredentials = errors.New("toshiba: invalid username or password")

// ParseLoginMessage decodes a login response, dispatching on StatusCode.
func ParseLoginMessage(data []byte) (LoginSuccess, error) {
	var envelope loginEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return LoginSuccess{}, fmt.Errorf("decode login response: %w", err)
	}

	switch envelope.StatusCode {
	case statusSuccess:
		var body struct {
			ResObj LoginSuccess `json:"ResObj"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return LoginSuccess{}, fmt.Errorf("decode login response: %w", err)
		}
		if body.ResObj.AccessToken == "" {
			return LoginSuccess{}, fmt.Errorf("login response missing access_token")
		}
		return body.ResObj, nil
	case statusInvalidUserPass:
		var body struct {
			ResObj loginError `json:"ResObj"`
		}
		_ = json.Unmarshal(data, &body)
		if body.ResObj.Error != "" {
			return LoginSuccess{}, fmt.Errorf("%w (%s)", ErrInvalidCredentials, body.ResObj.Error)
		}
		return LoginSuccess{}, ErrInvalidCredentials
	default:
		return LoginSuccess{}, fmt.Errorf("unexpected login status %q: %s", envelope.StatusCode, envelope.Message)
	}
}
