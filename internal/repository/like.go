package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike lowercases s and escapes LIKE wildcards so user input matches
// literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(strings.ToLower(s))
}
