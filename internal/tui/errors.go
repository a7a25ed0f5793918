package tui

import "strings"

const unknownError = "An unknown error occurred during processing."

// friendlyErrors maps fragments of stored error text to user-facing hints.
// Order matters: the first match wins.
var friendlyErrors = []struct {
	fragment string
	message  string
}{
	{"failed to process", "The file could not be processed. Please check the file format and try again."},
	{"network error", "Unable to connect to the server. Please check your network connection."},
	{"failed to fetch", "Unable to connect to the server. Please ensure the backend is running."},
	{"timed out", "The request timed out. The file may be too large or the server is busy."},
	{"timeout", "The request timed out. The file may be too large or the server is busy."},
	{"unsupported", "This file format is not supported. Please use MP3, WAV, M4A, or MP4."},
	{"too large", "The file exceeds the maximum size limit of 100MB."},
}

// FriendlyError turns a stored item error into a hint for the user. Unknown
// errors are returned unchanged.
func FriendlyError(err string) string {
	if err == "" {
		return unknownError
	}

	lower := strings.ToLower(err)
	for _, fe := range friendlyErrors {
		if strings.Contains(lower, fe.fragment) {
			return fe.message
		}
	}
	return err
}
