// Utilities for parsing cURL commands.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

var (
	headerFlagRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieFlagRe = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// ParseCurlFile reads a file containing a cURL command and extracts headers,
// typically a request captured from a browser's network inspector.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts -H headers and the cookie from a cURL command.
// A Cookie header is folded into the cookie field; an explicit -b flag wins
// over it.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := strings.ReplaceAll(string(data), "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookie string

	for _, match := range headerFlagRe.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			cookie = value
		} else {
			headers[key] = value
		}
	}

	if match := cookieFlagRe.FindStringSubmatch(curlCmd); match != nil {
		cookie = firstGroup(match)
	}

	if len(headers) == 0 && cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}

	return &CurlHeaders{Headers: headers, Cookie: cookie}, nil
}

// firstGroup returns whichever quoting alternative matched.
func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}

// BearerToken extracts the bearer credential from an Authorization header,
// if one was present in the parsed command.
func (c *CurlHeaders) BearerToken() string {
	for key, value := range c.Headers {
		if !strings.EqualFold(key, "authorization") {
			continue
		}
		if after, ok := strings.CutPrefix(value, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
		return strings.TrimSpace(value)
	}
	return ""
}
