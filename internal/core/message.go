package core

import "fmt"

const (
	commentPreviewRunes = 30
	ellipsis            = "..."
)

// truncate keeps the first n runes of s, appending an ellipsis when it cut anything.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + ellipsis
}

func likeMessage(username string) string {
	return username + " liked your pin"
}

func commentMessage(username, comment string) string {
	return fmt.Sprintf("%s commented on your pin: \"%s\"", username, truncate(comment, commentPreviewRunes))
}

func saveMessage(username, collectionName string) string {
	if collectionName != "" {
		return fmt.Sprintf("%s saved your pin to \"%s\"", username, collectionName)
	}
	return username + " saved your pin"
}

func followMessage(username string) string {
	return username + " started following you"
}
