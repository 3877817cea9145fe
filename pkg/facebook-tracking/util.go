package facebook_tracking

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"fb-s2s/dto"
)

// CredentialSource tells the sender where the access token lives.
type CredentialSource string

const (
	// CredentialSourceAuthField reads the token from the separate credential bundle.
	CredentialSourceAuthField CredentialSource = "authField"
	// CredentialSourceInputField reads the token from the accessToken input field.
	CredentialSourceInputField CredentialSource = "inputField"
)

func ParseCredentialSource(s string) (CredentialSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "authfield":
		return CredentialSourceAuthField, nil
	case "inputfield":
		return CredentialSourceInputField, nil
	}
	return "", fmt.Errorf("unknown credential source %q", s)
}

// ResolveAccessToken picks the token according to source. A missing token resolves to "".
func ResolveAccessToken(source CredentialSource, raw dto.RawInput, creds dto.Credentials) string {
	if source == CredentialSourceInputField {
		token, _ := raw.Lookup(dto.FieldAccessToken)
		return token
	}
	return creds.AccessToken
}

// GetPixelByCode returns the pixels configured under tracking.<code>.
func GetPixelByCode(code string) []*dto.Pixel {
	pixelWithToken := viper.GetString(fmt.Sprintf("tracking.%v", code))
	if len(pixelWithToken) < 1 {
		return nil
	}
	return ParseFacebookTracking(pixelWithToken)
}

// ParseFacebookTracking parses "pixel/token-testcode-code" entries separated by commas or newlines.
func ParseFacebookTracking(raw string) []*dto.Pixel {
	lines := strings.Split(raw, "\n")

	result := make([]*dto.Pixel, 0)
	for _, line := range lines {
		for _, pixelWithToken := range strings.Split(line, ",") {
			if pixel := parsePixel(pixelWithToken); pixel != nil {
				result = append(result, pixel)
			}
		}
	}

	return result
}

func parsePixel(pixelWithToken string) *dto.Pixel {
	pixels := strings.Split(pixelWithToken, "/")

	pixelId := strings.Trim(pixels[0], " \t")
	if len(pixelId) == 0 {
		return nil
	}

	// Only pixel_id
	pixel := &dto.Pixel{Id: pixelId}
	if len(pixels) == 1 {
		return pixel
	}

	tokens := strings.Split(pixels[1], "-testcode-")
	pixel.Token = strings.Trim(tokens[0], " \t")
	if len(tokens) == 1 {
		return pixel
	}

	pixel.TestCode = strings.Trim(tokens[1], " \t")
	return pixel
}
